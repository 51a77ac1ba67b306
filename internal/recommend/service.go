package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/p-n-ai/pai-pathways/internal/learner"
)

// ErrStudentNotFound is returned for ids the profile store does not know.
var ErrStudentNotFound = errors.New("student not found")

// Service resolves student ids to profiles and dispatches them to the
// strategy selected per call.
type Service struct {
	profiles   learner.Store
	engine     *Engine
	strategies map[Mode]Strategy
}

// NewService creates a service serving both modes from one engine.
func NewService(profiles learner.Store, engine *Engine) *Service {
	return &Service{
		profiles: profiles,
		engine:   engine,
		strategies: map[Mode]Strategy{
			ModeRule: NewRuleStrategy(engine),
			ModeLLM:  NewLLMStrategy(engine),
		},
	}
}

// Engine returns the underlying rule engine.
func (s *Service) Engine() *Engine { return s.engine }

// Profiles returns the profile store.
func (s *Service) Profiles() learner.Store { return s.profiles }

// Profile looks up a student. Unknown ids fail with ErrStudentNotFound.
func (s *Service) Profile(ctx context.Context, id string) (learner.Profile, error) {
	p, err := s.profiles.Get(ctx, id)
	if errors.Is(err, learner.ErrNotFound) {
		return learner.Profile{}, fmt.Errorf("%w: %s: %w", ErrStudentNotFound, id, err)
	}
	if err != nil {
		return learner.Profile{}, fmt.Errorf("loading student %s: %w", id, err)
	}
	return p, nil
}

// ForStudent recommends for a known student.
func (s *Service) ForStudent(ctx context.Context, id string, mode Mode) (Result, error) {
	p, err := s.Profile(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return s.ForProfile(ctx, p, mode)
}

// ForProfile recommends for an ad-hoc profile.
func (s *Service) ForProfile(ctx context.Context, p learner.Profile, mode Mode) (Result, error) {
	strategy, ok := s.strategies[mode]
	if !ok {
		return Result{}, fmt.Errorf("%w %q", ErrUnknownMode, mode)
	}
	return strategy.Recommend(ctx, p)
}

// NextStepsReport is the next-step list, plus a comparison with reviewer
// expectations when debugging.
type NextStepsReport struct {
	Items   []NextStep     `json:"items"`
	Compare *CompareResult `json:"compare,omitempty"`
}

// NextSteps suggests follow-ups after the student completes a node.
func (s *Service) NextSteps(ctx context.Context, id, completed string, debug bool) (NextStepsReport, error) {
	p, err := s.Profile(ctx, id)
	if err != nil {
		return NextStepsReport{}, err
	}
	report := NextStepsReport{Items: s.engine.NextSteps(p, completed)}
	if debug {
		if cmp, ok := CompareExpected(s.engine.Catalog(), id, completed, report.Items); ok {
			report.Compare = &cmp
		}
	}
	return report, nil
}
