// Package recommend ranks curriculum units, careers and videos for a student.
//
// The engine is a pure function of a profile, the catalog and its Config: it
// performs no I/O, never mutates its inputs and is safe for concurrent use.
// Ties are broken with a deterministic string hash so results are stable
// across calls; only Meta.GeneratedAt differs between two identical requests.
package recommend

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-pathways/internal/catalog"
	"github.com/p-n-ai/pai-pathways/internal/learner"
)

// EngineConfig holds dependencies for the rule engine.
type EngineConfig struct {
	Catalog *catalog.Catalog
	Config  Config           // zero value means DefaultConfig()
	Now     func() time.Time // defaults to time.Now
	Logger  *slog.Logger     // defaults to slog.Default()
}

// Engine is the rule-based recommender.
type Engine struct {
	cat    *catalog.Catalog
	cfg    Config
	now    func() time.Time
	logger *slog.Logger
}

// NewEngine creates a rule engine over an immutable catalog.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	tun := cfg.Config
	if tun == (Config{}) {
		tun = DefaultConfig()
	}
	if err := tun.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cat:    cfg.Catalog,
		cfg:    tun,
		now:    now,
		logger: logger,
	}, nil
}

// Config returns the tunables the engine runs with.
func (e *Engine) Config() Config { return e.cfg }

// Catalog returns the catalog the engine ranks.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Recommend computes units, careers and videos for a profile. Careers are
// ranked before videos because videos linked to a recommended career score
// higher.
func (e *Engine) Recommend(p learner.Profile) Result {
	units := e.recommendUnits(p)
	careers := e.recommendCareers(p)
	videos := e.recommendVideos(p, careers)

	echo := p.Clone()
	res := Result{
		User: UserSummary{
			ID:            echo.ID,
			Grade:         echo.Grade,
			IsColdStart:   p.IsColdStart(),
			Knowledge:     echo.Knowledge,
			InquirySkills: echo.InquirySkills,
		},
		Recommendations: Recommendations{
			Units:   units,
			Videos:  videos,
			Careers: careers,
		},
		Meta: Meta{
			GeneratedAt: e.now().UTC(),
			Mode:        ModeRule,
		},
	}

	e.logger.Debug("recommendations generated",
		"student_id", p.ID,
		"cold_start", res.User.IsColdStart,
		"units", len(units),
		"careers", len(careers),
		"videos", len(videos),
	)
	return res
}
