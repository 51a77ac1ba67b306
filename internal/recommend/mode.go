package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/p-n-ai/pai-pathways/internal/learner"
)

// Mode selects the strategy that serves a request.
type Mode string

const (
	ModeRule Mode = "rule"
	ModeLLM  Mode = "llm"
)

// ErrUnknownMode is returned for modes other than rule and llm.
var ErrUnknownMode = errors.New("unknown recommendation mode")

// ParseMode accepts "rule" or "llm" in any case. Empty means rule.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRule:
		return ModeRule, nil
	case ModeLLM:
		return ModeLLM, nil
	default:
		return "", fmt.Errorf("%w %q (want rule or llm)", ErrUnknownMode, s)
	}
}

// Strategy produces a recommendation result for a profile.
type Strategy interface {
	Mode() Mode
	Recommend(ctx context.Context, p learner.Profile) (Result, error)
}

// RuleStrategy serves requests from the rule engine.
type RuleStrategy struct {
	engine *Engine
}

// NewRuleStrategy wraps an engine.
func NewRuleStrategy(e *Engine) *RuleStrategy {
	return &RuleStrategy{engine: e}
}

func (s *RuleStrategy) Mode() Mode { return ModeRule }

func (s *RuleStrategy) Recommend(ctx context.Context, p learner.Profile) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return s.engine.Recommend(p), nil
}

// LLMStrategy is a placeholder for model-generated recommendations. It has no
// model behind it yet and answers with the rule engine's ranking.
type LLMStrategy struct {
	fallback *RuleStrategy
	logger   *slog.Logger
}

// NewLLMStrategy returns the placeholder strategy.
func NewLLMStrategy(e *Engine) *LLMStrategy {
	return &LLMStrategy{fallback: NewRuleStrategy(e), logger: e.logger}
}

func (s *LLMStrategy) Mode() Mode { return ModeLLM }

func (s *LLMStrategy) Recommend(ctx context.Context, p learner.Profile) (Result, error) {
	s.logger.Debug("llm mode has no model configured, using rule engine", "student_id", p.ID)
	res, err := s.fallback.Recommend(ctx, p)
	if err != nil {
		return Result{}, err
	}
	res.Meta.Mode = ModeLLM
	return res, nil
}
