package recommend_test

import (
	"math"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/p-n-ai/pai-pathways/internal/catalog"
	"github.com/p-n-ai/pai-pathways/internal/learner"
	"github.com/p-n-ai/pai-pathways/internal/recommend"
)

func unit(id string, difficulty int, node string) catalog.Unit {
	return catalog.Unit{
		ID:         id,
		Title:      id,
		Kind:       "game",
		Difficulty: difficulty,
		Nodes:      []catalog.NodeWeight{{ID: node, Weight: 1}},
	}
}

func scenarioCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Taxonomy: catalog.NewTaxonomy(nil),
		Units: []catalog.Unit{
			{ID: "g1", Title: "Intro to Cells", Kind: "game", Difficulty: 1, Nodes: []catalog.NodeWeight{{ID: "BIO.Y3.AC9S3U01", Weight: 1}}},
			{ID: "g2", Title: "Planet Explorer", Kind: "game", Difficulty: 2, Nodes: []catalog.NodeWeight{{ID: "EARTH.Y3.AC9S3U02", Weight: 1}}},
			{ID: "g3", Title: "Hard Physics Challenge", Kind: "game", Difficulty: 3, Nodes: []catalog.NodeWeight{{ID: "PHYS.Y6.AC9S6U01", Weight: 1}}},
		},
		Careers: []catalog.Career{
			{
				ID: "c1", Title: "Biologist", Discipline: "Biological Sciences",
				MinSkillLevels:    map[learner.SkillCode]int{learner.SkillQuestioning: 1},
				RequiredKnowledge: []catalog.RequiredNode{{Node: "BIO.Y3.AC9S3U01", MinLevel: 1, Weight: 1}},
				Threshold:         1,
			},
			{
				ID: "c2", Title: "Astronomer", Discipline: "Earth & Space Sciences",
				MinSkillLevels:    map[learner.SkillCode]int{learner.SkillQuestioning: 2},
				RequiredKnowledge: []catalog.RequiredNode{{Node: "EARTH.Y3.AC9S3U02", MinLevel: 1, Weight: 1}},
				Threshold:         1,
			},
		},
		Videos: []catalog.Video{
			{ID: "v1", Title: "Meet a Biologist", Discipline: "Biological Sciences", CareerID: "c1"},
			{ID: "v2", Title: "Explore Space", Discipline: "Earth & Space Sciences", CareerID: "c2"},
		},
	}
}

func scenarioProfile() learner.Profile {
	p := learner.NewProfile("Y3_U1")
	p.Grade = learner.GradeOf(3)
	p.Knowledge["BIO.Y3.AC9S3U01"] = 1
	p.InquirySkills = map[learner.SkillCode]int{
		learner.SkillQuestioning: 1,
		learner.SkillPlanning:    1,
		learner.SkillProcessing:  0,
		learner.SkillEvaluating:  0,
		learner.SkillComm:        1,
	}
	p.CareerInterests = []string{"biology", "doctor"}
	return p
}

func newEngine(t *testing.T, cat *catalog.Catalog, cfg recommend.Config) *recommend.Engine {
	t.Helper()
	e, err := recommend.NewEngine(recommend.EngineConfig{
		Catalog: cat,
		Config:  cfg,
		Now:     func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func ids[T recommend.Recommendation](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Common().ID)
	}
	return out
}

func findCareer(items []recommend.CareerItem, id string) (recommend.CareerItem, bool) {
	for _, c := range items {
		if c.ID == id {
			return c, true
		}
	}
	return recommend.CareerItem{}, false
}

func TestNewEngine(t *testing.T) {
	if _, err := recommend.NewEngine(recommend.EngineConfig{}); err == nil {
		t.Error("expected error without catalog")
	}
	bad := recommend.DefaultConfig()
	bad.TopK = 0
	if _, err := recommend.NewEngine(recommend.EngineConfig{Catalog: scenarioCatalog(), Config: bad}); err == nil {
		t.Error("expected error for invalid config")
	}
	e, err := recommend.NewEngine(recommend.EngineConfig{Catalog: scenarioCatalog()})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if e.Config() != recommend.DefaultConfig() {
		t.Errorf("zero config should mean defaults, got %+v", e.Config())
	}
}

func TestRecommend_ExampleScenario(t *testing.T) {
	e := newEngine(t, scenarioCatalog(), recommend.Config{})
	res := e.Recommend(scenarioProfile())

	if res.User.ID != "Y3_U1" || res.User.IsColdStart {
		t.Errorf("user = %+v", res.User)
	}
	if res.User.Grade == nil || *res.User.Grade != 3 {
		t.Errorf("grade = %v", res.User.Grade)
	}
	if res.Meta.Mode != recommend.ModeRule {
		t.Errorf("mode = %q", res.Meta.Mode)
	}

	units := res.Recommendations.Units
	if got := ids(units); !reflect.DeepEqual(got, []string{"g2", "g3"}) {
		t.Fatalf("units = %v, want [g2 g3]", got)
	}
	// g2: 1 + 0.3 grade boost. g3: (1 - 0.05) * 0.95 = 0.9025, normalized 0.694.
	if units[0].Confidence != recommend.ConfidenceHigh || units[1].Confidence != recommend.ConfidenceMedium {
		t.Errorf("unit confidence = %s, %s", units[0].Confidence, units[1].Confidence)
	}
	if want := "This activity introduces Earth & Space Sciences at a level that suits you."; units[0].WhyThis != want {
		t.Errorf("g2 why = %q", units[0].WhyThis)
	}

	careers := res.Recommendations.Careers
	c1, ok := findCareer(careers, "c1")
	if !ok {
		t.Fatalf("careers %v should include c1", ids(careers))
	}
	if !c1.Scores.GatePass || !c1.Scores.ThresholdPass {
		t.Errorf("c1 should pass gate and threshold: %+v", c1.Scores)
	}
	if c1.WhyThis == "" {
		t.Error("c1 should be explained")
	}
	wantEvidence := []string{
		"baseScore=1.00",
		"interestBoost=0.00",
		"gradeBoost=0.25",
		"finalScore=1.28",
		"covered=1.00",
		"required_threshold=1 (relaxed to 40%)",
	}
	if !reflect.DeepEqual(c1.Evidence, wantEvidence) {
		t.Errorf("c1 evidence = %q\nwant %q", c1.Evidence, wantEvidence)
	}

	if c2, ok := findCareer(careers, "c2"); ok {
		if !strings.Contains(c2.WhyThis, "relaxed the rules") {
			t.Errorf("c2 why = %q", c2.WhyThis)
		}
		if c2.Scores.GatePass {
			t.Error("c2 gate should fail (QP 1 < 2)")
		}
	}

	videos := res.Recommendations.Videos
	if got := ids(videos); !reflect.DeepEqual(got, []string{"v1", "v2"}) {
		t.Fatalf("videos = %v", got)
	}
	if videos[0].Confidence != recommend.ConfidenceHigh || videos[1].Confidence != recommend.ConfidenceMedium {
		t.Errorf("video confidence = %s, %s", videos[0].Confidence, videos[1].Confidence)
	}
	if want := "This video shows what Biologist looks like in real life."; videos[0].WhyThis != want {
		t.Errorf("v1 why = %q", videos[0].WhyThis)
	}
}

func TestRecommend_CareerWhy(t *testing.T) {
	e := newEngine(t, scenarioCatalog(), recommend.Config{})
	res := e.Recommend(scenarioProfile())

	c2, ok := findCareer(res.Recommendations.Careers, "c2")
	if !ok {
		t.Fatal("c2 missing")
	}
	want := "Astronomer will help you build your Earth & Space Sciences from where you are now. " +
		"To move towards Astronomer you still need inquiry skills like questioning & predicting. " +
		"You also need a bit more knowledge in Earth & Space Sciences. " +
		"Astronomer is more of a future goal for you over the next few years. " +
		"We slightly relaxed the rules so you can see Astronomer now and understand what to work towards."
	if c2.WhyThis != want {
		t.Errorf("c2 why =\n%q\nwant\n%q", c2.WhyThis, want)
	}

	p := scenarioProfile()
	p.Grade = learner.GradeOf(11)
	p.CareerInterests = []string{"Biological Sciences"}
	res = e.Recommend(p)
	c1, _ := findCareer(res.Recommendations.Careers, "c1")
	want = "Biologist uses the Biological Sciences you’ve already been learning. " +
		"You’ve told us you’re interested in Biological Sciences, so Biologist is a good career to explore. " +
		"At your year level you can already start planning the study pathway towards Biologist."
	if c1.WhyThis != want {
		t.Errorf("c1 why =\n%q\nwant\n%q", c1.WhyThis, want)
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	e, err := recommend.NewEngine(recommend.EngineConfig{Catalog: scenarioCatalog()})
	if err != nil {
		t.Fatal(err)
	}
	p := scenarioProfile()

	a := e.Recommend(p)
	b := e.Recommend(p)
	if !reflect.DeepEqual(a.Recommendations, b.Recommendations) {
		t.Error("two calls should rank identically")
	}
	if !reflect.DeepEqual(a.User, b.User) {
		t.Error("user echo should be identical")
	}
}

func TestRecommend_DoesNotMutateProfile(t *testing.T) {
	e := newEngine(t, scenarioCatalog(), recommend.Config{})
	p := scenarioProfile()
	before := p.Clone()

	res := e.Recommend(p)
	res.User.Knowledge["BIO.Y3.AC9S3U01"] = 99

	if !reflect.DeepEqual(p, before) {
		t.Error("profile was mutated")
	}
}

func TestRecommend_ColdStart(t *testing.T) {
	e := newEngine(t, scenarioCatalog(), recommend.Config{})
	res := e.Recommend(learner.NewProfile("new-student"))

	if !res.User.IsColdStart {
		t.Error("empty profile should be a cold start")
	}
	if len(res.Recommendations.Units) == 0 {
		t.Error("cold start should still get units")
	}
	if len(res.Recommendations.Videos) == 0 {
		t.Error("cold start should still get videos")
	}
	if len(res.Recommendations.Careers) == 0 {
		t.Error("careers are shown on cold start by default")
	}

	cfg := recommend.DefaultConfig()
	cfg.HideCareersOnColdStart = true
	hidden := newEngine(t, scenarioCatalog(), cfg).Recommend(learner.NewProfile("new-student"))
	if len(hidden.Recommendations.Careers) != 0 {
		t.Errorf("careers = %v, want none", ids(hidden.Recommendations.Careers))
	}
	if hidden.Recommendations.Careers == nil {
		t.Error("careers should be an empty list, not nil")
	}
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	e := newEngine(t, &catalog.Catalog{}, recommend.Config{})
	res := e.Recommend(scenarioProfile())

	r := res.Recommendations
	if len(r.Units) != 0 || len(r.Careers) != 0 || len(r.Videos) != 0 {
		t.Errorf("recommendations = %+v, want all empty", r)
	}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"units":[]`) {
		t.Errorf("empty lists should encode as []: %s", data)
	}
}

func TestRecommend_NextLevelUnits(t *testing.T) {
	cat := &catalog.Catalog{Units: []catalog.Unit{
		unit("n-3", 3, "BIO.Y5.N"),
		unit("n-2", 2, "BIO.Y5.N"),
		unit("n-4", 4, "BIO.Y5.N"),
		unit("m-3", 3, "CHEM.Y5.M"),
		unit("m-2", 2, "CHEM.Y5.M"),
		unit("k-1", 1, "PHYS.Y5.K"),
	}}
	p := learner.NewProfile("s")
	p.Knowledge["BIO.Y5.N"] = 1
	p.Knowledge["PHYS.Y5.K"] = 2

	res := newEngine(t, cat, recommend.Config{}).Recommend(p)
	got := ids(res.Recommendations.Units)
	slices.Sort(got)
	// N: exact next step is difficulty 2. M: no exact step (cur 0), easiest wins.
	// K: already past every unit. n-4 is above the difficulty cap.
	if want := []string{"m-2", "n-2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("units = %v, want %v", got, want)
	}
}

func TestRecommend_UnitsFallBackWhenNothingIsNext(t *testing.T) {
	cat := &catalog.Catalog{Units: []catalog.Unit{
		unit("a", 1, "BIO.Y5.A"),
		unit("b", 2, "BIO.Y5.B"),
		{ID: "nodeless", Title: "Free play", Difficulty: 1},
	}}
	p := learner.NewProfile("s")
	p.Knowledge["BIO.Y5.A"] = 3
	p.Knowledge["BIO.Y5.B"] = 3

	res := newEngine(t, cat, recommend.Config{}).Recommend(p)
	units := res.Recommendations.Units
	if len(units) != 3 {
		t.Fatalf("units = %v, want the whole catalog", ids(units))
	}
	for _, u := range units {
		if u.ID == "nodeless" && u.WhyThis != "This activity is a good next step for your science learning." {
			t.Errorf("nodeless why = %q", u.WhyThis)
		}
		if u.ID == "a" && u.WhyThis != "You’ve already learned some Biological Sciences, so this Y5 activity is the next step to extend it." {
			t.Errorf("a why = %q", u.WhyThis)
		}
	}
}

func TestRecommend_UnitsAllZeroScores(t *testing.T) {
	cat := &catalog.Catalog{Units: []catalog.Unit{
		{ID: "z", Title: "Zero", Difficulty: 1, Nodes: []catalog.NodeWeight{{ID: "BIO.Y3.A", Weight: 0}}},
	}}
	res := newEngine(t, cat, recommend.Config{}).Recommend(learner.NewProfile("s"))
	units := res.Recommendations.Units
	if len(units) != 1 || units[0].Confidence != recommend.ConfidenceLow {
		t.Errorf("units = %+v, want one low-confidence unit", units)
	}
}

// coverageCareer builds a career whose base score is roughly covered, for a
// student who knows KNOWN.Y5.A only.
func coverageCareer(id, discipline string, covered float64) catalog.Career {
	return catalog.Career{
		ID:             id,
		Title:          "Career " + id,
		Discipline:     discipline,
		MinSkillLevels: map[learner.SkillCode]int{},
		RequiredKnowledge: []catalog.RequiredNode{
			{Node: "KNOWN.Y5.A", MinLevel: 1, Weight: covered},
			{Node: "OTHER.Y5.B", MinLevel: 1, Weight: 1 - covered},
		},
	}
}

func coverageStudent() learner.Profile {
	p := learner.NewProfile("student-7")
	p.Knowledge["KNOWN.Y5.A"] = 1
	return p
}

func TestRecommend_CareerDiversity(t *testing.T) {
	t.Run("one per discipline when enough disciplines", func(t *testing.T) {
		cat := &catalog.Catalog{Careers: []catalog.Career{
			coverageCareer("a1", "A", 0.9),
			coverageCareer("a2", "A", 0.8),
			coverageCareer("b", "B", 0.7),
			coverageCareer("c", "C", 0.6),
		}}
		res := newEngine(t, cat, recommend.Config{}).Recommend(coverageStudent())
		if got := ids(res.Recommendations.Careers); !reflect.DeepEqual(got, []string{"a1", "b", "c"}) {
			t.Errorf("careers = %v, want [a1 b c]", got)
		}
	})

	t.Run("fallback fill when too few disciplines", func(t *testing.T) {
		cat := &catalog.Catalog{Careers: []catalog.Career{
			coverageCareer("a1", "A", 0.9),
			coverageCareer("a2", "A", 0.8),
			coverageCareer("b", "B", 0.7),
			coverageCareer("a3", "A", 0.6),
		}}
		res := newEngine(t, cat, recommend.Config{}).Recommend(coverageStudent())
		if got := ids(res.Recommendations.Careers); !reflect.DeepEqual(got, []string{"a1", "b", "a2"}) {
			t.Errorf("careers = %v, want [a1 b a2]", got)
		}
	})

	t.Run("missing discipline counts as one group", func(t *testing.T) {
		cat := &catalog.Catalog{Careers: []catalog.Career{
			coverageCareer("x", "", 0.9),
			coverageCareer("y", "", 0.8),
			coverageCareer("z", "Z", 0.7),
		}}
		res := newEngine(t, cat, recommend.Config{}).Recommend(coverageStudent())
		if got := ids(res.Recommendations.Careers); !reflect.DeepEqual(got, []string{"x", "z", "y"}) {
			t.Errorf("careers = %v, want [x z y]", got)
		}
	})
}

func TestRecommend_CareerSelectionPrefersPositive(t *testing.T) {
	cat := &catalog.Catalog{Careers: []catalog.Career{
		coverageCareer("p1", "A", 0.9),
		coverageCareer("p2", "B", 0.8),
		coverageCareer("p3", "C", 0.7),
		coverageCareer("zero", "D", 0.05), // snaps to 0
	}}
	res := newEngine(t, cat, recommend.Config{}).Recommend(coverageStudent())
	if got := ids(res.Recommendations.Careers); slices.Contains(got, "zero") {
		t.Errorf("careers = %v, zero-score career should be left out", got)
	}

	cat.Careers = cat.Careers[2:]
	res = newEngine(t, cat, recommend.Config{}).Recommend(coverageStudent())
	if got := ids(res.Recommendations.Careers); !slices.Contains(got, "zero") {
		t.Errorf("careers = %v, with too few positive careers all are considered", got)
	}
}

func TestRecommend_CareerOrdering(t *testing.T) {
	cat := &catalog.Catalog{Careers: []catalog.Career{
		coverageCareer("c-1", "A", 0.5),
		coverageCareer("c-2", "B", 0.5),
		coverageCareer("c-3", "C", 0.5),
		coverageCareer("c-4", "D", 0.9),
	}}
	cfg := recommend.DefaultConfig()
	cfg.TopK = 4
	res := newEngine(t, cat, cfg).Recommend(coverageStudent())
	careers := res.Recommendations.Careers

	for i := 1; i < len(careers); i++ {
		if careers[i-1].Scores.Final < careers[i].Scores.Final {
			t.Errorf("career %s (%.4f) ranked above %s (%.4f)",
				careers[i-1].ID, careers[i-1].Scores.Final, careers[i].ID, careers[i].Scores.Final)
		}
	}

	// With no jitter the three 0.5 careers tie exactly and fall back to the
	// hash order.
	cfg.JitterScale = 0
	res = newEngine(t, cat, cfg).Recommend(coverageStudent())
	got := ids(res.Recommendations.Careers)
	if got[0] != "c-4" {
		t.Fatalf("careers = %v, c-4 should lead", got)
	}
	tied := got[1:]
	if !slices.IsSortedFunc(tied, func(a, b string) int {
		ha := recommend.HashString("student-7:" + a)
		hb := recommend.HashString("student-7:" + b)
		switch {
		case ha < hb:
			return -1
		case ha > hb:
			return 1
		}
		return 0
	}) {
		t.Errorf("tied careers %v should be in hash order", tied)
	}
}

func TestRecommend_CareerBlendFormula(t *testing.T) {
	gateFail := coverageCareer("gate-fail", "A", 1)
	gateFail.MinSkillLevels[learner.SkillEvaluating] = 5

	thresholdFail := catalog.Career{
		ID: "threshold-fail", Title: "Threshold", Discipline: "B",
		MinSkillLevels: map[learner.SkillCode]int{},
		RequiredKnowledge: []catalog.RequiredNode{
			{Node: "KNOWN.Y5.A", MinLevel: 1, Weight: 1},
			{Node: "OTHER.Y5.B", MinLevel: 1, Weight: 1},
		},
		Threshold: 3, // 1 covered < 3 * 0.4
	}
	pass := coverageCareer("pass", "C", 1)
	pass.Threshold = 1

	cat := &catalog.Catalog{Careers: []catalog.Career{gateFail, thresholdFail, pass}}
	p := coverageStudent()
	res := newEngine(t, cat, recommend.Config{}).Recommend(p)

	want := map[string]float64{
		"gate-fail":      0.6,
		"threshold-fail": 0.15,
		"pass":           1,
	}
	for _, c := range res.Recommendations.Careers {
		w, ok := want[c.ID]
		if !ok {
			t.Fatalf("unexpected career %s", c.ID)
		}
		if math.Abs(c.Scores.Base-w) > 1e-9 {
			t.Errorf("%s base = %v, want %v", c.ID, c.Scores.Base, w)
		}
		jitter := recommend.Jitter(p.ID, c.ID, 0.03)
		if math.Abs(c.Scores.Final-(w+jitter)) > 1e-9 {
			t.Errorf("%s final = %v, want %v", c.ID, c.Scores.Final, w+jitter)
		}
		delete(want, c.ID)
	}
	if len(want) != 0 {
		t.Errorf("careers missing from result: %v", want)
	}

	gf, _ := findCareer(res.Recommendations.Careers, "gate-fail")
	if gf.Confidence == recommend.ConfidenceHigh {
		t.Error("gate-failed career at 0.6 + jitter must not be high confidence")
	}
	if gf.Scores.GatePass || !gf.Scores.ThresholdPass {
		t.Errorf("gate-fail flags = %+v", gf.Scores)
	}
}

func TestRecommend_CareerSnapsWeakScoresToZero(t *testing.T) {
	weak := catalog.Career{
		ID: "weak", Title: "Weak", Discipline: "A",
		MinSkillLevels: map[learner.SkillCode]int{},
		RequiredKnowledge: []catalog.RequiredNode{
			{Node: "KNOWN.Y5.A", MinLevel: 1, Weight: 1},
			{Node: "OTHER.Y5.B", MinLevel: 1, Weight: 3},
		},
		Threshold: 4, // base 0.25 * 0.3 = 0.075
	}
	res := newEngine(t, &catalog.Catalog{Careers: []catalog.Career{weak}}, recommend.Config{}).Recommend(coverageStudent())
	c, ok := findCareer(res.Recommendations.Careers, "weak")
	if !ok {
		t.Fatal("weak career should still fill the list")
	}
	if c.Scores.Base != 0 {
		t.Errorf("base = %v, want 0", c.Scores.Base)
	}
	if c.Evidence[0] != "baseScore=0.00" || c.Evidence[4] != "covered=1.00" {
		t.Errorf("evidence = %q", c.Evidence)
	}
}

func videosIn(discipline string, n int) []catalog.Video {
	var out []catalog.Video
	for i := range n {
		id := strings.ToLower(strings.Fields(discipline)[0]) + "-" + string(rune('1'+i))
		out = append(out, catalog.Video{ID: id, Title: id, Discipline: discipline})
	}
	return out
}

func TestRecommend_VideoDisciplineCap(t *testing.T) {
	p := learner.NewProfile("s")
	p.Knowledge["BIO.Y5.A"] = 1

	t.Run("cap holds with enough variety", func(t *testing.T) {
		var videos []catalog.Video
		videos = append(videos, videosIn("Biological Sciences", 4)...)
		videos = append(videos, videosIn("Chemical Sciences", 3)...)
		videos = append(videos, videosIn("Physical Sciences", 3)...)

		res := newEngine(t, &catalog.Catalog{Videos: videos}, recommend.Config{}).Recommend(p)
		got := res.Recommendations.Videos
		if len(got) != 5 {
			t.Fatalf("videos = %v, want 5", ids(got))
		}
		if want := []string{"biological-1", "biological-2", "chemical-1", "chemical-2", "physical-1"}; !reflect.DeepEqual(ids(got), want) {
			t.Errorf("videos = %v, want %v", ids(got), want)
		}
	})

	t.Run("fallback fill ignores the cap", func(t *testing.T) {
		var videos []catalog.Video
		videos = append(videos, videosIn("Biological Sciences", 4)...)
		videos = append(videos, videosIn("Chemical Sciences", 2)...)

		res := newEngine(t, &catalog.Catalog{Videos: videos}, recommend.Config{}).Recommend(p)
		got := res.Recommendations.Videos
		if want := []string{"biological-1", "biological-2", "chemical-1", "chemical-2", "biological-3"}; !reflect.DeepEqual(ids(got), want) {
			t.Errorf("videos = %v, want %v", ids(got), want)
		}
		if got[0].Confidence != recommend.ConfidenceMedium || got[2].Confidence != recommend.ConfidenceLow {
			t.Errorf("confidence = %s, %s", got[0].Confidence, got[2].Confidence)
		}
		if got[0].WhyThis != "This video is about Biological Sciences, the science area you are working on at school." {
			t.Errorf("studied why = %q", got[0].WhyThis)
		}
		if got[2].WhyThis != "This video shows another area of Chemical Sciences you might be interested in." {
			t.Errorf("other why = %q", got[2].WhyThis)
		}
	})
}

func TestRecommend_VideosWithoutSignal(t *testing.T) {
	cat := &catalog.Catalog{Videos: []catalog.Video{
		{ID: "v1", Title: "One"},
		{ID: "v2", Title: "Two"},
	}}
	p := learner.NewProfile("s")
	p.Knowledge["BIO.Y5.A"] = 1 // studied, but no video has a discipline

	res := newEngine(t, cat, recommend.Config{}).Recommend(p)
	got := res.Recommendations.Videos
	if len(got) != 2 {
		t.Fatalf("videos = %v, want both", ids(got))
	}
	for _, v := range got {
		if v.Confidence != recommend.ConfidenceLow {
			t.Errorf("%s confidence = %s", v.ID, v.Confidence)
		}
		if v.WhyThis != "This video gives you another STEM story to explore." {
			t.Errorf("%s why = %q", v.ID, v.WhyThis)
		}
	}
}

func TestResult_JSON(t *testing.T) {
	e := newEngine(t, scenarioCatalog(), recommend.Config{})
	data, err := json.Marshal(e.Recommend(scenarioProfile()))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`"isColdStart":false`,
		`"inquiry_skills":{`,
		`"whyThis":`,
		`"evidence":[`,
		`"generatedAt":"2026-03-01T09:00:00Z"`,
		`"mode":"rule"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s: %s", want, s)
		}
	}
	if strings.Contains(s, "Scores") || strings.Contains(s, "GatePass") {
		t.Errorf("scores must not be serialized: %s", s)
	}
}
