package recommend

import (
	"cmp"
	"slices"

	"github.com/p-n-ai/pai-pathways/internal/catalog"
	"github.com/p-n-ai/pai-pathways/internal/learner"
)

type scoredVideo struct {
	video catalog.Video
	score float64
}

func (e *Engine) recommendVideos(p learner.Profile, careers []CareerItem) []VideoItem {
	studied := studiedSubjects(p)
	picked := make(map[string]CareerItem, len(careers))
	for _, c := range careers {
		if c.ID != "" {
			picked[c.ID] = c
		}
	}

	scored := make([]scoredVideo, 0, len(e.cat.Videos))
	anyPositive := false
	for _, v := range e.cat.Videos {
		score := 0.0
		if _, ok := picked[v.CareerID]; ok && v.CareerID != "" {
			score += 3
		}
		switch {
		case v.Discipline != "" && studied[v.Discipline]:
			score += 2
		case v.Discipline != "":
			score += 0.5
		}
		if score == 0 && len(studied) == 0 && len(picked) == 0 {
			score = 1
		}
		anyPositive = anyPositive || score > 0
		scored = append(scored, scoredVideo{video: v, score: score})
	}
	if !anyPositive {
		for i := range scored {
			scored[i].score = 1
		}
	}

	slices.SortStableFunc(scored, func(a, b scoredVideo) int {
		return cmp.Compare(b.score, a.score)
	})

	limit := e.cfg.VideoLimit
	out := make([]VideoItem, 0, min(limit, len(scored)))
	used := map[string]bool{}
	perDiscipline := map[string]int{}

	for _, s := range scored {
		if len(out) >= limit {
			break
		}
		if used[s.video.ID] {
			continue
		}
		disc := s.video.Discipline
		if disc == "" {
			disc = unknownDiscipline
		}
		if perDiscipline[disc] >= e.cfg.VideosPerDiscipline {
			continue
		}
		out = append(out, videoItem(s, studied, picked))
		used[s.video.ID] = true
		perDiscipline[disc]++
	}

	for _, s := range scored {
		if len(out) >= limit {
			break
		}
		if used[s.video.ID] {
			continue
		}
		out = append(out, videoItem(s, studied, picked))
		used[s.video.ID] = true
	}
	return out
}

func videoItem(s scoredVideo, studied map[string]bool, careers map[string]CareerItem) VideoItem {
	conf := ConfidenceLow
	switch {
	case s.score >= 4:
		conf = ConfidenceHigh
	case s.score >= 2:
		conf = ConfidenceMedium
	}
	return VideoItem{Item: Item{
		ID:         s.video.ID,
		Title:      s.video.Title,
		WhyThis:    videoWhy(s.video, studied, careers),
		Confidence: conf,
	}}
}

func videoWhy(v catalog.Video, studied map[string]bool, careers map[string]CareerItem) string {
	if c, ok := careers[v.CareerID]; ok && v.CareerID != "" {
		return "This video shows what " + c.Title + " looks like in real life."
	}
	if v.Discipline != "" && studied[v.Discipline] {
		return "This video is about " + v.Discipline + ", the science area you are working on at school."
	}
	if v.Discipline != "" {
		return "This video shows another area of " + v.Discipline + " you might be interested in."
	}
	return "This video gives you another STEM story to explore."
}
