// Package learner holds student progress profiles and the stores that supply them.
package learner

import (
	"maps"
	"slices"
)

// SkillCode identifies one of the five inquiry-skill strands.
type SkillCode string

const (
	SkillQuestioning SkillCode = "QP"
	SkillPlanning    SkillCode = "PC"
	SkillProcessing  SkillCode = "PAD"
	SkillEvaluating  SkillCode = "EVAL"
	SkillComm        SkillCode = "COMM"
)

// Skills lists every inquiry-skill strand in display order.
var Skills = []SkillCode{SkillQuestioning, SkillPlanning, SkillProcessing, SkillEvaluating, SkillComm}

// FriendlyName returns the student-facing name of a skill strand.
// Unknown codes are returned as-is.
func (c SkillCode) FriendlyName() string {
	switch c {
	case SkillQuestioning:
		return "questioning & predicting"
	case SkillPlanning:
		return "planning & conducting"
	case SkillProcessing:
		return "processing & analysing data"
	case SkillEvaluating:
		return "evaluating"
	case SkillComm:
		return "communicating"
	default:
		return string(c)
	}
}

// Profile is a student's tracked progress. It is built once per request and
// treated as read-only while recommendations are scored.
type Profile struct {
	ID              string            `json:"id"`
	Grade           *float64          `json:"grade,omitempty"`
	Knowledge       map[string]int    `json:"knowledge"`
	InquirySkills   map[SkillCode]int `json:"inquiry_skills"`
	CareerInterests []string          `json:"career_interests"`
}

// NewProfile returns a profile with non-nil maps.
func NewProfile(id string) Profile {
	return Profile{
		ID:              id,
		Knowledge:       map[string]int{},
		InquirySkills:   map[SkillCode]int{},
		CareerInterests: []string{},
	}
}

// GradeOf is a convenience for building a grade pointer.
func GradeOf(g float64) *float64 {
	return &g
}

// IsColdStart reports whether the student has no recorded knowledge and no
// recorded skill progress at all.
func (p Profile) IsColdStart() bool {
	kn, sk := 0, 0
	for _, v := range p.Knowledge {
		kn += v
	}
	for _, v := range p.InquirySkills {
		sk += v
	}
	return kn == 0 && sk == 0
}

// Level returns the mastery level for a knowledge node (0 when unknown).
func (p Profile) Level(node string) int {
	return p.Knowledge[node]
}

// Skill returns the level of an inquiry skill (0 when unknown).
func (p Profile) Skill(code SkillCode) int {
	return p.InquirySkills[code]
}

// Clone returns a deep copy so callers can hand the profile out without
// exposing the original maps.
func (p Profile) Clone() Profile {
	out := p
	if p.Grade != nil {
		out.Grade = GradeOf(*p.Grade)
	}
	out.Knowledge = maps.Clone(p.Knowledge)
	if out.Knowledge == nil {
		out.Knowledge = map[string]int{}
	}
	out.InquirySkills = maps.Clone(p.InquirySkills)
	if out.InquirySkills == nil {
		out.InquirySkills = map[SkillCode]int{}
	}
	out.CareerInterests = slices.Clone(p.CareerInterests)
	if out.CareerInterests == nil {
		out.CareerInterests = []string{}
	}
	return out
}
