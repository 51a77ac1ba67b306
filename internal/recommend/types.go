package recommend

import (
	"time"

	"github.com/p-n-ai/pai-pathways/internal/learner"
)

// Kind discriminates recommendation items.
type Kind string

const (
	KindUnit   Kind = "unit"
	KindVideo  Kind = "video"
	KindCareer Kind = "career"
)

// Item holds the fields every recommendation carries.
type Item struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	WhyThis    string     `json:"whyThis"`
	Confidence Confidence `json:"confidence"`
}

// Recommendation is implemented by UnitItem, VideoItem and CareerItem.
type Recommendation interface {
	Kind() Kind
	Common() Item
}

// UnitItem is a recommended curriculum activity.
type UnitItem struct {
	Item
}

func (UnitItem) Kind() Kind { return KindUnit }
func (u UnitItem) Common() Item { return u.Item }

// VideoItem is a recommended video.
type VideoItem struct {
	Item
}

func (VideoItem) Kind() Kind { return KindVideo }
func (v VideoItem) Common() Item { return v.Item }

// CareerItem is a recommended career with its scoring evidence.
type CareerItem struct {
	Item
	Evidence []string `json:"evidence"`

	Scores CareerScores `json:"-"`
}

func (CareerItem) Kind() Kind { return KindCareer }
func (c CareerItem) Common() Item { return c.Item }

// CareerScores are the numeric terms behind a career's rank.
type CareerScores struct {
	Base          float64 // blended score after gate and threshold
	Interest      float64
	Grade         float64
	Jitter        float64
	Final         float64
	Covered       float64 // weight of required nodes the student meets
	TotalWeight   float64
	GatePass      bool
	ThresholdPass bool
}

// UserSummary echoes the profile the result was computed for.
type UserSummary struct {
	ID            string                    `json:"id"`
	Grade         *float64                  `json:"grade,omitempty"`
	IsColdStart   bool                      `json:"isColdStart"`
	Knowledge     map[string]int            `json:"knowledge"`
	InquirySkills map[learner.SkillCode]int `json:"inquiry_skills"`
}

// Recommendations are the three ranked lists.
type Recommendations struct {
	Units   []UnitItem   `json:"units"`
	Videos  []VideoItem  `json:"videos"`
	Careers []CareerItem `json:"careers"`
}

// All returns every item in units, videos, careers order.
func (r Recommendations) All() []Recommendation {
	out := make([]Recommendation, 0, len(r.Units)+len(r.Videos)+len(r.Careers))
	for _, u := range r.Units {
		out = append(out, u)
	}
	for _, v := range r.Videos {
		out = append(out, v)
	}
	for _, c := range r.Careers {
		out = append(out, c)
	}
	return out
}

// Meta describes how the result was produced.
type Meta struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Mode        Mode      `json:"mode"`
}

// Result is the full recommendation output for one student.
type Result struct {
	User            UserSummary     `json:"user"`
	Recommendations Recommendations `json:"recommendations"`
	Meta            Meta            `json:"meta"`
}
