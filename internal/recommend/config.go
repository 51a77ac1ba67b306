package recommend

import "fmt"

// Config holds the engine's tunables. The defaults reproduce the behaviour
// the recommendation fixtures were written against; change them with care.
type Config struct {
	TopK                   int     // units and careers returned (default 3)
	VideoLimit             int     // videos returned (default 5)
	VideosPerDiscipline    int     // first-pass cap per discipline (default 2)
	MaxDifficulty          int     // units above this are ignored; 0 disables (default 3)
	NextLevelOnly          bool    // keep only the next unit per node (default true)
	HideCareersOnColdStart bool    // no careers for students with no progress (default false)
	ThresholdRelax         float64 // fraction of a career threshold that passes (default 0.4)
	GateFailFactor         float64 // score multiplier when skills are short (default 0.6)
	ThresholdFailFactor    float64 // score multiplier when knowledge is short (default 0.3)
	MinCareerScore         float64 // blended scores below this snap to 0 (default 0.1)
	JitterScale            float64 // upper bound of the tie-break offset (default 0.03)
	HardUnitFactor         float64 // multiplier for difficulty-3 units (default 0.95)
}

// Tunables are the settings operators may change at deploy time.
type Tunables struct {
	TopK                   int
	VideoLimit             int
	VideosPerDiscipline    int
	HideCareersOnColdStart bool
	ThresholdRelax         float64
}

// With returns c with the operator tunables applied.
func (c Config) With(t Tunables) Config {
	c.TopK = t.TopK
	c.VideoLimit = t.VideoLimit
	c.VideosPerDiscipline = t.VideosPerDiscipline
	c.HideCareersOnColdStart = t.HideCareersOnColdStart
	c.ThresholdRelax = t.ThresholdRelax
	return c
}

// DefaultConfig returns the standard tunables.
func DefaultConfig() Config {
	return Config{
		TopK:                3,
		VideoLimit:          5,
		VideosPerDiscipline: 2,
		MaxDifficulty:       3,
		NextLevelOnly:       true,
		ThresholdRelax:      0.4,
		GateFailFactor:      0.6,
		ThresholdFailFactor: 0.3,
		MinCareerScore:      0.1,
		JitterScale:         0.03,
		HardUnitFactor:      0.95,
	}
}

// Validate rejects tunables outside their meaningful range.
func (c Config) Validate() error {
	if c.TopK < 1 {
		return fmt.Errorf("top k must be at least 1, got %d", c.TopK)
	}
	if c.VideoLimit < 0 {
		return fmt.Errorf("video limit must not be negative, got %d", c.VideoLimit)
	}
	if c.VideosPerDiscipline < 1 {
		return fmt.Errorf("videos per discipline must be at least 1, got %d", c.VideosPerDiscipline)
	}
	if c.MaxDifficulty < 0 {
		return fmt.Errorf("max difficulty must not be negative, got %d", c.MaxDifficulty)
	}
	for name, v := range map[string]float64{
		"threshold relax":       c.ThresholdRelax,
		"gate fail factor":      c.GateFailFactor,
		"threshold fail factor": c.ThresholdFailFactor,
		"min career score":      c.MinCareerScore,
		"hard unit factor":      c.HardUnitFactor,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, v)
		}
	}
	if c.JitterScale < 0 || c.JitterScale >= 0.1 {
		return fmt.Errorf("jitter scale must be within [0, 0.1), got %v", c.JitterScale)
	}
	return nil
}
