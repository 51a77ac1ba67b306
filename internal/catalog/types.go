package catalog

import "github.com/p-n-ai/pai-pathways/internal/learner"

// KnowledgeNode is a leaf curriculum topic from the knowledge taxonomy,
// e.g. "BIO.Y3.AC9S3U01".
type KnowledgeNode struct {
	ID            string
	Year          int
	Discipline    string
	Code          string
	Title         string
	Description   string
	Levels        []NodeLevel
	ProgressionTo string   // next-year node id
	SimilarTo     []string // related node ids
	ReinforcedBy  []string // inquiry strands, e.g. "INQ.Y3.PAD"
}

// NodeLevel lists the outcomes expected at one mastery level of a node.
type NodeLevel struct {
	Level    int
	Outcomes []string
}

// NodeWeight is one knowledge node a unit contributes to.
type NodeWeight struct {
	ID     string
	Weight float64
}

// Unit is a curriculum activity (a game) that advances one or more nodes.
type Unit struct {
	ID         string
	Title      string
	Kind       string
	Difficulty int // 1..3 after parsing
	Discipline string
	Nodes      []NodeWeight
}

// PrimaryNode returns the first knowledge node the unit targets.
func (u Unit) PrimaryNode() (string, bool) {
	if len(u.Nodes) == 0 {
		return "", false
	}
	return u.Nodes[0].ID, true
}

// RequiredNode is a weighted knowledge requirement of a career.
type RequiredNode struct {
	Node     string
	MinLevel int
	Weight   float64
}

// Career is a STEM career with skill gates and knowledge requirements.
type Career struct {
	ID                string
	Title             string
	Discipline        string
	Disciplines       []string
	MinSkillLevels    map[learner.SkillCode]int
	RequiredKnowledge []RequiredNode
	Threshold         float64
	RelatedNodes      []string // from required_skills_knowledge blocks
}

// Video is a short educational video, optionally tied to a career.
type Video struct {
	ID         string
	Title      string
	Discipline string
	CareerID   string
	URL        string
}

// ExpectedItem is one recommendation a reviewer expects to see.
type ExpectedItem struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// ExpectedCase holds reviewer expectations for a student after completing a node.
type ExpectedCase struct {
	UserID          string
	CompletedNodeID string
	Expected        []ExpectedItem
}

// Catalog is the full set of static reference data. It is built once and
// must not be mutated afterwards.
type Catalog struct {
	Taxonomy *Taxonomy
	Units    []Unit
	Careers  []Career
	Videos   []Video
	Students []learner.Profile
	Expected []ExpectedCase
}

// Career returns the career with the given id.
func (c *Catalog) Career(id string) (Career, bool) {
	for _, career := range c.Careers {
		if career.ID == id {
			return career, true
		}
	}
	return Career{}, false
}

// ExpectedFor returns the expectations recorded for a student and completed node.
func (c *Catalog) ExpectedFor(userID, completedNodeID string) (ExpectedCase, bool) {
	for _, ec := range c.Expected {
		if ec.UserID == userID && ec.CompletedNodeID == completedNodeID {
			return ec, true
		}
	}
	return ExpectedCase{}, false
}
