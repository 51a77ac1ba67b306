package recommend

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/cases"

	"github.com/p-n-ai/pai-pathways/internal/catalog"
	"github.com/p-n-ai/pai-pathways/internal/learner"
)

// Confidence is the tier shown next to a recommendation.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceFromScore maps a normalized or final score to a tier.
func ConfidenceFromScore(score float64) Confidence {
	switch {
	case score >= 0.75:
		return ConfidenceHigh
	case score >= 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// SubjectLabel maps a knowledge node id to the subject it belongs to.
func SubjectLabel(nodeID string) string {
	if nodeID == "" {
		return "this topic"
	}
	up := strings.ToUpper(nodeID)
	switch {
	case strings.HasPrefix(up, "BIO"):
		return "Biological Sciences"
	case strings.HasPrefix(up, "CHEM"):
		return "Chemical Sciences"
	case strings.HasPrefix(up, "PHYS"):
		return "Physical Sciences"
	case strings.HasPrefix(up, "EARTH"):
		return "Earth & Space Sciences"
	default:
		return "Science"
	}
}

// ParseYear returns the year segment of a node id ("Y3" in "BIO.Y3.AC9S3U01"),
// or "" when there is none.
func ParseYear(nodeID string) string {
	for _, part := range strings.Split(nodeID, ".") {
		if strings.HasPrefix(part, "Y") || strings.HasPrefix(part, "y") {
			return part
		}
	}
	return ""
}

var yearNumber = regexp.MustCompile(`[Yy](\d+)`)

// YearLabelToNumber extracts the number following Y in a year label.
func YearLabelToNumber(label string) (int, bool) {
	m := yearNumber.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func nodeYear(nodeID string) (int, bool) {
	return YearLabelToNumber(ParseYear(nodeID))
}

// HashString is the 31-multiplier string hash over UTF-16 code units with
// 32-bit two's-complement wraparound. Changing it reorders exact-score ties.
func HashString(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return h
}

// Jitter returns a stable offset in [0, scale) for a student/item pair.
func Jitter(studentID, itemID string, scale float64) float64 {
	h := int64(HashString(studentID + ":" + itemID))
	if h < 0 {
		h = -h
	}
	return float64(h%1000) / 1000 * scale
}

// GradeBoostForUnit compares the student's grade with the year of the unit's
// first knowledge node.
func GradeBoostForUnit(p learner.Profile, u catalog.Unit) float64 {
	if p.Grade == nil {
		return 0
	}
	node, ok := u.PrimaryNode()
	if !ok {
		return 0
	}
	year, ok := nodeYear(node)
	if !ok {
		return 0
	}
	switch dist := math.Abs(*p.Grade - float64(year)); {
	case dist <= 0.5:
		return 0.3
	case dist <= 1.5:
		return 0.15
	case dist <= 2.5:
		return 0.05
	default:
		return -0.05
	}
}

// CareerGrade is the rounded mean year of a career's required nodes.
func CareerGrade(c catalog.Career) (int, bool) {
	sum, n := 0, 0
	for _, rk := range c.RequiredKnowledge {
		if y, ok := nodeYear(rk.Node); ok {
			sum += y
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return int(math.Floor(float64(sum)/float64(n) + 0.5)), true
}

// GradeBoostForCareer compares the student's grade with the career's typical grade.
func GradeBoostForCareer(p learner.Profile, c catalog.Career) float64 {
	if p.Grade == nil {
		return 0
	}
	cg, ok := CareerGrade(c)
	if !ok {
		return 0
	}
	switch dist := math.Abs(*p.Grade - float64(cg)); {
	case dist <= 0.5:
		return 0.25
	case dist <= 1.5:
		return 0.15
	case dist <= 2.5:
		return 0.05
	default:
		return -0.1
	}
}

// fold lower-cases for caseless matching. Casers are not safe for concurrent
// use, so one is made per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

func foldAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, fold(t))
	}
	return out
}

// InterestBoost rewards careers the student has said they are interested in.
// A term found in the title, or equal to the id, is a strong match; overlap
// with the discipline is a medium one.
func InterestBoost(p learner.Profile, c catalog.Career) float64 {
	interests := foldAll(p.CareerInterests)
	if len(interests) == 0 {
		return 0
	}
	title := fold(c.Title)
	id := fold(c.ID)
	discipline := fold(c.Discipline)

	for _, term := range interests {
		if term != "" && (strings.Contains(title, term) || id == term) {
			return 0.3
		}
	}
	if discipline == "" {
		return 0
	}
	for _, term := range interests {
		if term != "" && (strings.Contains(discipline, term) || strings.Contains(term, discipline)) {
			return 0.15
		}
	}
	return 0
}

// subjectSummary names the subjects a career draws on, for justifications.
func subjectSummary(c catalog.Career) string {
	var subjects []string
	seen := map[string]bool{}
	for _, rk := range c.RequiredKnowledge {
		if rk.Node == "" {
			continue
		}
		label := SubjectLabel(rk.Node)
		if !seen[label] {
			seen[label] = true
			subjects = append(subjects, label)
		}
	}
	if len(subjects) == 0 && c.Discipline != "" {
		subjects = append(subjects, c.Discipline)
	}

	switch len(subjects) {
	case 0:
		return "science"
	case 1:
		return subjects[0]
	case 2:
		return subjects[0] + " and " + subjects[1]
	default:
		return subjects[0] + ", " + subjects[1] + " and other areas of science"
	}
}

// studiedSubjects returns the subject labels of every node in the profile.
func studiedSubjects(p learner.Profile) map[string]bool {
	out := make(map[string]bool, len(p.Knowledge))
	for node := range p.Knowledge {
		out[SubjectLabel(node)] = true
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
