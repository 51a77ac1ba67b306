package recommend

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/p-n-ai/pai-pathways/internal/catalog"
	"github.com/p-n-ai/pai-pathways/internal/learner"
)

// StepKind discriminates next-step items.
type StepKind string

const (
	StepKnowledge   StepKind = "knowledge"
	StepSkillStrand StepKind = "skill_strand"
	StepCareerGap   StepKind = "career_gap"
)

// NextStep is a knowledge-graph suggestion made after a student completes a
// node. At most one of the detail fields is set.
type NextStep struct {
	ID         string   `json:"id"`
	Kind       StepKind `json:"kind"`
	Title      string   `json:"title"`
	Reason     string   `json:"reason"`
	Confidence float64  `json:"confidence"`

	Similar *SimilarDetail   `json:"similar,omitempty"`
	Strand  *StrandDetail    `json:"strand,omitempty"`
	Gap     *CareerGapDetail `json:"gap,omitempty"`
}

// SimilarDetail accompanies a similar-node suggestion.
type SimilarDetail struct {
	CurrentLevel int `json:"currentLevel"`
}

// StrandDetail accompanies an inquiry-strand suggestion.
type StrandDetail struct {
	Strand  learner.SkillCode `json:"strand"`
	Current int               `json:"current"`
}

// CareerGapDetail explains why an interesting career is not yet met.
type CareerGapDetail struct {
	Career         string        `json:"career"`
	Threshold      float64       `json:"threshold"`
	KnowledgeScore float64       `json:"kscore"`
	SkillsOK       bool          `json:"skillOK"`
	Missing        []MissingNode `json:"missing"`
}

// MissingNode is a required node the student has not reached.
type MissingNode struct {
	Node     string  `json:"node"`
	MinLevel int     `json:"min_level"`
	Weight   float64 `json:"weight"`
}

// Hit returns the comparison key of the step.
func (s NextStep) Hit() Hit {
	return Hit{ID: s.ID, Kind: string(s.Kind)}
}

// NextSteps suggests what to study after completing a node: its progression
// target, similar nodes the student has barely started, the inquiry strands
// it reinforces, and the biggest gap for each career the student named by id.
// Duplicates keep their first occurrence; the list is sorted by confidence.
func (e *Engine) NextSteps(p learner.Profile, completed string) []NextStep {
	tax := e.cat.Taxonomy
	var items []NextStep

	for _, n := range tax.NextProgression(completed) {
		items = append(items, NextStep{
			ID:         n.ID,
			Kind:       StepKnowledge,
			Title:      nodeTitle(n),
			Reason:     fmt.Sprintf("Progression from %s → %s", completed, n.ID),
			Confidence: 0.85,
		})
	}

	for _, n := range tax.Similar(completed) {
		learned := p.Level(n.ID)
		if learned >= 2 {
			continue
		}
		items = append(items, NextStep{
			ID:         n.ID,
			Kind:       StepKnowledge,
			Title:      nodeTitle(n),
			Reason:     fmt.Sprintf("Similar to %s, current level=%d", completed, learned),
			Confidence: 0.7,
			Similar:    &SimilarDetail{CurrentLevel: learned},
		})
	}

	for _, strand := range tax.ReinforcedBy(completed) {
		abbr := learner.SkillCode(strand[strings.LastIndex(strand, ".")+1:])
		cur := p.Skill(abbr)
		conf := 0.6
		if cur < 4 {
			conf += 0.15
		}
		items = append(items, NextStep{
			ID:         strand,
			Kind:       StepSkillStrand,
			Title:      "Improve " + string(abbr),
			Reason:     fmt.Sprintf("This node reinforces %s. Your current %s=%d", abbr, abbr, cur),
			Confidence: clamp01(conf),
			Strand:     &StrandDetail{Strand: abbr, Current: cur},
		})
	}

	for _, c := range e.cat.Careers {
		if !slices.Contains(p.CareerInterests, c.ID) {
			continue
		}
		if step, ok := careerGap(p, c, tax); ok {
			items = append(items, step)
		}
	}

	seen := map[string]bool{}
	out := make([]NextStep, 0, len(items))
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	slices.SortStableFunc(out, func(a, b NextStep) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	return out
}

// careerGap checks a career without the relaxed threshold and, when it is not
// met, suggests the heaviest missing node.
func careerGap(p learner.Profile, c catalog.Career, tax *catalog.Taxonomy) (NextStep, bool) {
	skillsOK := true
	for _, code := range learner.Skills {
		if p.Skill(code) < c.MinSkillLevels[code] {
			skillsOK = false
			break
		}
	}

	kscore := 0.0
	var missing []MissingNode
	for _, rk := range c.RequiredKnowledge {
		node := catalog.NormalizeNodeID(rk.Node)
		if hasNodeAtLevel(p, node, rk.MinLevel) {
			kscore += rk.Weight
			continue
		}
		missing = append(missing, MissingNode{Node: rk.Node, MinLevel: rk.MinLevel, Weight: rk.Weight})
	}
	if kscore >= c.Threshold && skillsOK {
		return NextStep{}, false
	}
	if len(missing) == 0 {
		return NextStep{}, false
	}
	slices.SortStableFunc(missing, func(a, b MissingNode) int {
		return cmp.Compare(b.Weight, a.Weight)
	})

	top := missing[0]
	id := catalog.NormalizeNodeID(top.Node)
	title := id
	if n, ok := tax.Node(id); ok && n.Title != "" {
		title = n.Title
	}
	return NextStep{
		ID:    id,
		Kind:  StepCareerGap,
		Title: title,
		Reason: fmt.Sprintf("For %s: missing %s (min L%d, w=%s)",
			c.Title, id, top.MinLevel, strconv.FormatFloat(top.Weight, 'f', -1, 64)),
		Confidence: clamp01(0.5 + top.Weight*0.5),
		Gap: &CareerGapDetail{
			Career:         c.ID,
			Threshold:      c.Threshold,
			KnowledgeScore: kscore,
			SkillsOK:       skillsOK,
			Missing:        missing,
		},
	}, true
}

// hasNodeAtLevel is false for nodes the student has no record of, whatever
// the required level.
func hasNodeAtLevel(p learner.Profile, node string, minLevel int) bool {
	lvl, ok := p.Knowledge[node]
	return ok && lvl >= minLevel
}

func nodeTitle(n catalog.KnowledgeNode) string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}
