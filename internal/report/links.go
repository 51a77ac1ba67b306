package report

import "github.com/p-n-ai/pai-pathways/internal/catalog"

// Per-career link limits.
const (
	MaxGamesPerCareer  = 3
	MaxVideosPerCareer = 3
)

// defaultYearRange labels the single pathway stage links are written to.
const defaultYearRange = "Year 7–10"

// CareerLinks is the link file: careers with the games and videos that lead
// towards them.
type CareerLinks struct {
	Careers []CareerLink `json:"careers"`
}

// CareerLink lists content for one career.
type CareerLink struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Disciplines     []string       `json:"discipline"`
	ProgressionPath []PathwayStage `json:"progression_path"`
}

// PathwayStage is one stage of a career's progression path.
type PathwayStage struct {
	YearRange         string   `json:"year_range"`
	RecommendedGames  []string `json:"recommended_games"`
	RecommendedVideos []string `json:"recommended_videos"`
}

// LinkCareers picks, for every career, games that target its knowledge nodes
// and then games in its disciplines, plus videos about it and then videos in
// its disciplines. Lists keep catalog order without duplicates.
func LinkCareers(cat *catalog.Catalog) CareerLinks {
	gamesByNode := map[string][]string{}
	gamesByDisc := map[string][]string{}
	for _, u := range cat.Units {
		if u.ID == "" {
			continue
		}
		if node, ok := u.PrimaryNode(); ok {
			gamesByNode[node] = append(gamesByNode[node], u.ID)
		}
		if u.Discipline != "" {
			gamesByDisc[u.Discipline] = append(gamesByDisc[u.Discipline], u.ID)
		}
	}

	videosByCareer := map[string][]string{}
	videosByDisc := map[string][]string{}
	for _, v := range cat.Videos {
		if v.ID == "" {
			continue
		}
		if v.CareerID != "" {
			videosByCareer[v.CareerID] = append(videosByCareer[v.CareerID], v.ID)
		}
		if v.Discipline != "" {
			videosByDisc[v.Discipline] = append(videosByDisc[v.Discipline], v.ID)
		}
	}

	out := CareerLinks{Careers: make([]CareerLink, 0, len(cat.Careers))}
	for _, c := range cat.Careers {
		var games []string
		for _, node := range careerNodes(c) {
			games = append(games, gamesByNode[node]...)
		}
		for _, d := range c.Disciplines {
			games = append(games, gamesByDisc[d]...)
		}

		var videos []string
		if c.ID != "" {
			videos = append(videos, videosByCareer[c.ID]...)
		}
		for _, d := range c.Disciplines {
			videos = append(videos, videosByDisc[d]...)
		}

		disciplines := c.Disciplines
		if disciplines == nil {
			disciplines = []string{}
		}
		out.Careers = append(out.Careers, CareerLink{
			ID:          c.ID,
			Title:       c.Title,
			Disciplines: disciplines,
			ProgressionPath: []PathwayStage{{
				YearRange:         defaultYearRange,
				RecommendedGames:  firstUnique(games, MaxGamesPerCareer),
				RecommendedVideos: firstUnique(videos, MaxVideosPerCareer),
			}},
		})
	}
	return out
}

// careerNodes lists the nodes a career needs, skills-block nodes first.
func careerNodes(c catalog.Career) []string {
	nodes := make([]string, 0, len(c.RelatedNodes)+len(c.RequiredKnowledge))
	nodes = append(nodes, c.RelatedNodes...)
	for _, rk := range c.RequiredKnowledge {
		nodes = append(nodes, rk.Node)
	}
	return firstUnique(nodes, len(nodes))
}

func firstUnique(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, min(limit, len(items)))
	for _, it := range items {
		if len(out) >= limit {
			break
		}
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

// WriteCareerLinks writes the link file as indented JSON.
func WriteCareerLinks(path string, links CareerLinks) error {
	return writeJSON(path, links)
}
