package recommend

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/p-n-ai/pai-pathways/internal/catalog"
	"github.com/p-n-ai/pai-pathways/internal/learner"
)

// normEpsilon stands in for the max raw score when every candidate scored 0.
const normEpsilon = 1e-6

type scoredUnit struct {
	unit catalog.Unit
	raw  float64
}

func (e *Engine) recommendUnits(p learner.Profile) []UnitItem {
	filtered := filterUnits(e.cat.Units, e.cfg.MaxDifficulty)
	candidates := filtered
	if e.cfg.NextLevelOnly {
		candidates = pickNextLevelUnits(filtered, p)
		if len(candidates) == 0 {
			candidates = filtered
		}
	}
	if len(candidates) == 0 {
		return []UnitItem{}
	}

	scored := make([]scoredUnit, 0, len(candidates))
	maxRaw := 0.0
	for _, u := range candidates {
		raw := e.scoreUnit(u, p)
		maxRaw = max(maxRaw, raw)
		scored = append(scored, scoredUnit{unit: u, raw: raw})
	}
	if maxRaw <= 0 {
		maxRaw = normEpsilon
	}

	slices.SortStableFunc(scored, func(a, b scoredUnit) int {
		return cmp.Compare(b.raw, a.raw)
	})

	n := min(e.cfg.TopK, len(scored))
	out := make([]UnitItem, 0, n)
	for _, s := range scored[:n] {
		title := s.unit.Title
		if title == "" {
			title = s.unit.ID
		}
		out = append(out, UnitItem{Item: Item{
			ID:         s.unit.ID,
			Title:      title,
			WhyThis:    unitWhy(p, s.unit),
			Confidence: ConfidenceFromScore(s.raw / maxRaw),
		}})
	}
	return out
}

func filterUnits(units []catalog.Unit, maxDifficulty int) []catalog.Unit {
	out := make([]catalog.Unit, 0, len(units))
	for _, u := range units {
		if maxDifficulty > 0 && u.Difficulty > maxDifficulty {
			continue
		}
		out = append(out, u)
	}
	return out
}

// pickNextLevelUnits keeps, for every primary node, the unit one step above
// the student's level on it. Without an exact next step the easiest unit that
// is still above the student's level wins. Units at or below the student's
// level are dropped. Nodes keep the order they were first seen in.
func pickNextLevelUnits(units []catalog.Unit, p learner.Profile) []catalog.Unit {
	type pick struct {
		unit  catalog.Unit
		exact bool
	}
	var order []string
	best := map[string]*pick{}

	for _, u := range units {
		node, ok := u.PrimaryNode()
		if !ok {
			continue
		}
		cur := p.Level(node)
		if u.Difficulty <= cur {
			continue
		}
		exact := u.Difficulty == cur+1

		prev, seen := best[node]
		if !seen {
			order = append(order, node)
			best[node] = &pick{unit: u, exact: exact}
			continue
		}
		if better := exact && !prev.exact || exact == prev.exact && u.Difficulty < prev.unit.Difficulty; better {
			prev.unit = u
			prev.exact = exact
		}
	}

	out := make([]catalog.Unit, 0, len(order))
	for _, node := range order {
		out = append(out, best[node].unit)
	}
	return out
}

func (e *Engine) scoreUnit(u catalog.Unit, p learner.Profile) float64 {
	raw := 0.0
	for _, kn := range u.Nodes {
		gap := 0.6
		if p.Level(kn.ID) == 0 {
			gap = 1.0
		}
		raw += kn.Weight * gap
	}
	raw += GradeBoostForUnit(p, u)
	if u.Difficulty == 3 {
		raw *= e.cfg.HardUnitFactor
	}
	return max(raw, 0)
}

func unitWhy(p learner.Profile, u catalog.Unit) string {
	node, ok := u.PrimaryNode()
	if !ok {
		return "This activity is a good next step for your science learning."
	}
	subject := SubjectLabel(node)
	if !studiedSubjects(p)[subject] {
		return "This activity introduces " + subject + " at a level that suits you."
	}
	activity := "activity"
	if year := ParseYear(node); year != "" {
		activity = year + " activity"
	}
	return fmt.Sprintf("You’ve already learned some %s, so this %s is the next step to extend it.", subject, activity)
}
