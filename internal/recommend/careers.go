package recommend

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/p-n-ai/pai-pathways/internal/catalog"
	"github.com/p-n-ai/pai-pathways/internal/learner"
)

// unknownDiscipline groups careers and videos that name no discipline.
const unknownDiscipline = "UNKNOWN"

// unmetSkill is a skill gate the student does not reach.
type unmetSkill struct {
	code learner.SkillCode
	need int
}

// unmetNode is a required knowledge node the student has not reached.
type unmetNode struct {
	node   string
	need   int
	have   int
	weight float64
}

// careerFit is the gate and coverage check of one career.
type careerFit struct {
	score         float64
	gatePass      bool
	thresholdPass bool
	unmetSkills   []unmetSkill
	unmetNodes    []unmetNode // heaviest first
	covered       float64
	totalWeight   float64
}

type rankedCareer struct {
	career catalog.Career
	fit    careerFit
	scores CareerScores
	hash   int32
}

func (e *Engine) fitCareer(c catalog.Career, p learner.Profile) careerFit {
	var fit careerFit

	// Iterate skills in a fixed order so the missing-skill sentence is stable.
	codes := make([]learner.SkillCode, 0, len(c.MinSkillLevels))
	for code := range c.MinSkillLevels {
		codes = append(codes, code)
	}
	slices.SortFunc(codes, compareSkillCodes)
	for _, code := range codes {
		need := c.MinSkillLevels[code]
		if p.Skill(code) < need {
			fit.unmetSkills = append(fit.unmetSkills, unmetSkill{code: code, need: need})
		}
	}
	fit.gatePass = len(fit.unmetSkills) == 0

	for _, rk := range c.RequiredKnowledge {
		if rk.Node == "" {
			continue
		}
		fit.totalWeight += rk.Weight
		have := p.Level(rk.Node)
		if have >= rk.MinLevel {
			fit.covered += rk.Weight
			continue
		}
		fit.unmetNodes = append(fit.unmetNodes, unmetNode{node: rk.Node, need: rk.MinLevel, have: have, weight: rk.Weight})
	}
	slices.SortStableFunc(fit.unmetNodes, func(a, b unmetNode) int {
		return cmp.Compare(b.weight, a.weight)
	})

	fit.thresholdPass = c.Threshold <= 0 || fit.covered >= c.Threshold*e.cfg.ThresholdRelax

	base := 0.0
	if fit.totalWeight > 0 {
		base = fit.covered / fit.totalWeight
	}
	switch {
	case fit.gatePass && fit.thresholdPass:
		fit.score = base
	case fit.thresholdPass:
		fit.score = base * e.cfg.GateFailFactor
	default:
		fit.score = base * e.cfg.ThresholdFailFactor
	}
	if fit.score < e.cfg.MinCareerScore {
		fit.score = 0
	}
	return fit
}

// compareSkillCodes orders the known strands first, in display order.
func compareSkillCodes(a, b learner.SkillCode) int {
	ia, ib := slices.Index(learner.Skills, a), slices.Index(learner.Skills, b)
	if ia < 0 {
		ia = len(learner.Skills)
	}
	if ib < 0 {
		ib = len(learner.Skills)
	}
	if ia != ib {
		return cmp.Compare(ia, ib)
	}
	return cmp.Compare(a, b)
}

func (e *Engine) recommendCareers(p learner.Profile) []CareerItem {
	if e.cfg.HideCareersOnColdStart && p.IsColdStart() {
		return []CareerItem{}
	}

	ranked := make([]rankedCareer, 0, len(e.cat.Careers))
	positive := 0
	for _, c := range e.cat.Careers {
		fit := e.fitCareer(c, p)
		s := CareerScores{
			Base:          fit.score,
			Interest:      InterestBoost(p, c),
			Grade:         GradeBoostForCareer(p, c),
			Jitter:        Jitter(p.ID, c.ID, e.cfg.JitterScale),
			Covered:       fit.covered,
			TotalWeight:   fit.totalWeight,
			GatePass:      fit.gatePass,
			ThresholdPass: fit.thresholdPass,
		}
		s.Final = max(s.Base+s.Interest+s.Grade+s.Jitter, 0)
		if fit.score > 0 {
			positive++
		}
		ranked = append(ranked, rankedCareer{
			career: c,
			fit:    fit,
			scores: s,
			hash:   HashString(p.ID + ":" + c.ID),
		})
	}

	if positive >= e.cfg.TopK {
		ranked = slices.DeleteFunc(ranked, func(r rankedCareer) bool { return r.fit.score <= 0 })
	}

	slices.SortStableFunc(ranked, func(a, b rankedCareer) int {
		if c := cmp.Compare(b.scores.Final, a.scores.Final); c != 0 {
			return c
		}
		return cmp.Compare(a.hash, b.hash)
	})

	picked := make([]CareerItem, 0, e.cfg.TopK)
	used := make(map[string]bool, len(ranked))
	disciplines := map[string]bool{}

	for _, r := range ranked {
		if len(picked) >= e.cfg.TopK {
			break
		}
		disc := r.career.Discipline
		if disc == "" {
			disc = unknownDiscipline
		}
		if disciplines[disc] {
			continue
		}
		disciplines[disc] = true
		used[r.career.ID] = true
		picked = append(picked, e.careerItem(p, r))
	}

	for _, r := range ranked {
		if len(picked) >= e.cfg.TopK {
			break
		}
		if used[r.career.ID] {
			continue
		}
		used[r.career.ID] = true
		picked = append(picked, e.careerItem(p, r))
	}
	return picked
}

func (e *Engine) careerItem(p learner.Profile, r rankedCareer) CareerItem {
	return CareerItem{
		Item: Item{
			ID:         r.career.ID,
			Title:      r.career.Title,
			WhyThis:    careerWhy(p, r.career, r.fit),
			Confidence: ConfidenceFromScore(r.scores.Final),
		},
		Evidence: e.careerEvidence(r),
		Scores:   r.scores,
	}
}

func (e *Engine) careerEvidence(r rankedCareer) []string {
	relaxed := strconv.FormatFloat(math.Round(e.cfg.ThresholdRelax*10000)/100, 'f', -1, 64)
	return []string{
		fmt.Sprintf("baseScore=%.2f", r.scores.Base),
		fmt.Sprintf("interestBoost=%.2f", r.scores.Interest),
		fmt.Sprintf("gradeBoost=%.2f", r.scores.Grade),
		fmt.Sprintf("finalScore=%.2f", r.scores.Final),
		fmt.Sprintf("covered=%.2f", r.scores.Covered),
		fmt.Sprintf("required_threshold=%s (relaxed to %s%%)", strconv.FormatFloat(r.career.Threshold, 'f', -1, 64), relaxed),
	}
}

func careerWhy(p learner.Profile, c catalog.Career, fit careerFit) string {
	title := c.Title
	if title == "" {
		title = c.ID
	}
	subjects := subjectSummary(c)

	var parts []string
	if fit.covered > 0 {
		parts = append(parts, fmt.Sprintf("%s uses the %s you’ve already been learning.", title, subjects))
	} else {
		parts = append(parts, fmt.Sprintf("%s will help you build your %s from where you are now.", title, subjects))
	}

	if what, ok := interestHit(p, c); ok {
		parts = append(parts, fmt.Sprintf("You’ve told us you’re interested in %s, so %s is a good career to explore.", what, title))
	}

	if !fit.gatePass && len(fit.unmetSkills) > 0 {
		names := make([]string, 0, 2)
		for _, s := range fit.unmetSkills[:min(2, len(fit.unmetSkills))] {
			names = append(names, s.code.FriendlyName())
		}
		parts = append(parts, fmt.Sprintf("To move towards %s you still need inquiry skills like %s.", title, strings.Join(names, ", ")))
	}

	if !fit.thresholdPass && len(fit.unmetNodes) > 0 {
		parts = append(parts, fmt.Sprintf("You also need a bit more knowledge in %s.", SubjectLabel(fit.unmetNodes[0].node)))
	}

	if p.Grade != nil {
		switch g := *p.Grade; {
		case g <= 6:
			parts = append(parts, fmt.Sprintf("%s is more of a future goal for you over the next few years.", title))
		case g <= 10:
			parts = append(parts, fmt.Sprintf("At your year level it’s a good time to start exploring what %s involves.", title))
		default:
			parts = append(parts, fmt.Sprintf("At your year level you can already start planning the study pathway towards %s.", title))
		}
	}

	if !fit.gatePass || !fit.thresholdPass {
		parts = append(parts, fmt.Sprintf("We slightly relaxed the rules so you can see %s now and understand what to work towards.", title))
	}
	return strings.Join(parts, " ")
}

// interestHit reports whether an interest names the career's discipline
// exactly or appears in its title, and what to call the match.
func interestHit(p learner.Profile, c catalog.Career) (string, bool) {
	interests := foldAll(p.CareerInterests)
	if len(interests) == 0 {
		return "", false
	}
	discipline := fold(c.Discipline)
	title := fold(c.Title)

	hitDiscipline, hitTitle := false, false
	for _, term := range interests {
		if term == "" {
			continue
		}
		if discipline != "" && term == discipline {
			hitDiscipline = true
		}
		if strings.Contains(title, term) {
			hitTitle = true
		}
	}
	switch {
	case hitDiscipline:
		return c.Discipline, true
	case hitTitle:
		if c.Title == "" {
			return c.ID, true
		}
		return c.Title, true
	default:
		return "", false
	}
}
