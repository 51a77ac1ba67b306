package catalog

import (
	"fmt"

	"github.com/p-n-ai/pai-pathways/internal/learner"
)

// Students normalizes raw student progress records.
func Students(doc any) ([]learner.Profile, error) {
	items, _, err := DecodeCollection(doc, KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("students: %w", err)
	}
	out := make([]learner.Profile, 0, len(items))
	for i, it := range items {
		out = append(out, ProfileFromRecord(asMap(it), i))
	}
	return out, nil
}

// ProfileFromRecord builds a profile from one raw progress record. idx is the
// record's position and only names records that carry no id.
func ProfileFromRecord(rec map[string]any, idx int) learner.Profile {
	id := firstString(rec, "user_id", "id")
	if id == "" {
		id = fmt.Sprintf("user-%d", idx+1)
	}
	p := learner.NewProfile(id)

	if g, ok := parseGrade(firstPresent(rec, "year", "grade")); ok {
		p.Grade = learner.GradeOf(g)
	}

	skills := asMap(rec["skills_levels"])
	if len(skills) == 0 {
		skills = asMap(rec["inquiry_skills"])
	}
	for k, v := range skills {
		p.InquirySkills[learner.SkillCode(k)] = intOr(v, 0)
	}

	kn := rec["knowledge_progress"]
	if kn == nil {
		kn = rec["knowledge"]
	}
	switch src := kn.(type) {
	case []any:
		for _, it := range src {
			entry := asMap(it)
			node := coerceString(entry["node"])
			if node == "" {
				continue
			}
			p.Knowledge[node] = intOr(entry["level"], 0)
		}
	case map[string]any:
		for node, lvl := range src {
			p.Knowledge[node] = intOr(lvl, 0)
		}
	}

	if interests := stringList(rec["career_interests"]); interests != nil {
		p.CareerInterests = interests
	}
	return p
}

// Units normalizes the game catalog into units.
func Units(doc any) ([]Unit, error) {
	items, _, err := DecodeCollection(doc, KeyGames)
	if err != nil {
		return nil, fmt.Errorf("games: %w", err)
	}
	out := make([]Unit, 0, len(items))
	for _, it := range items {
		g := asMap(it)
		id := coerceString(g["id"])
		title := coerceString(g["title"])
		if title == "" {
			title = id
		}
		out = append(out, Unit{
			ID:         id,
			Title:      title,
			Kind:       "game",
			Difficulty: ParseDifficulty(g["difficulty"]),
			Discipline: coerceString(g["discipline"]),
			Nodes:      unitNodes(g),
		})
	}
	return out, nil
}

func unitNodes(g map[string]any) []NodeWeight {
	if explicit, ok := g["knowledge_nodes"].([]any); ok {
		nodes := make([]NodeWeight, 0, len(explicit))
		for _, it := range explicit {
			var id string
			weight := 1.0
			switch n := it.(type) {
			case map[string]any:
				id = coerceString(n["id"])
				weight = floatOr(n["weight"], 1.0)
			default:
				id = coerceString(n)
			}
			if id != "" {
				nodes = append(nodes, NodeWeight{ID: id, Weight: weight})
			}
		}
		return nodes
	}

	peKnowledge := asMap(asMap(g["progress_effects"])["knowledge"])
	node := coerceString(peKnowledge["node"])
	if node == "" {
		node = firstString(g, "node_id", "code")
	}
	if node == "" {
		return []NodeWeight{}
	}
	return []NodeWeight{{ID: node, Weight: 1.0}}
}

// Careers normalizes the career catalog.
func Careers(doc any) ([]Career, error) {
	items, _, err := DecodeCollection(doc, KeyCareers)
	if err != nil {
		return nil, fmt.Errorf("careers: %w", err)
	}
	out := make([]Career, 0, len(items))
	for _, it := range items {
		out = append(out, careerFromRecord(asMap(it)))
	}
	return out, nil
}

func careerFromRecord(c map[string]any) Career {
	id := firstString(c, "id", "career_id")
	title := firstString(c, "title", "name")
	if title == "" {
		title = id
	}

	career := Career{
		ID:             id,
		Title:          title,
		MinSkillLevels: map[learner.SkillCode]int{},
		Threshold:      floatOr(c["threshold"], 0),
	}

	disciplines := stringList(c["discipline"])
	if len(disciplines) == 0 {
		disciplines = stringList(c["category"])
	}
	if len(disciplines) > 0 {
		career.Discipline = disciplines[0]
		career.Disciplines = disciplines
	}

	for k, v := range asMap(c["min_skill_levels"]) {
		career.MinSkillLevels[learner.SkillCode(k)] = intOr(v, 0)
	}

	if reqs, ok := c["required_knowledge"].([]any); ok {
		for _, it := range reqs {
			rk := asMap(it)
			node := coerceString(rk["node"])
			if node == "" {
				continue
			}
			career.RequiredKnowledge = append(career.RequiredKnowledge, RequiredNode{
				Node:     node,
				MinLevel: intOr(rk["min_level"], 1),
				Weight:   floatOr(rk["weight"], 1.0),
			})
		}
	}

	if blocks, ok := c["required_skills_knowledge"].([]any); ok {
		for _, b := range blocks {
			career.RelatedNodes = append(career.RelatedNodes, stringList(asMap(b)["knowledge_nodes"])...)
		}
	}
	return career
}

// Videos normalizes the video catalog. Entries that are plain strings become
// title-only videos.
func Videos(doc any) ([]Video, error) {
	items, _, err := DecodeCollection(doc, KeyVideos)
	if err != nil {
		return nil, fmt.Errorf("videos: %w", err)
	}
	out := make([]Video, 0, len(items))
	for i, it := range items {
		n := i + 1
		v, ok := it.(map[string]any)
		if !ok {
			out = append(out, Video{ID: fmt.Sprintf("video-%d", n), Title: coerceString(it)})
			continue
		}
		id := coerceString(v["id"])
		if id == "" {
			id = fmt.Sprintf("video-%d", n)
		}
		title := coerceString(v["title"])
		if title == "" {
			title = fmt.Sprintf("Scientist video %d", n)
		}
		out = append(out, Video{
			ID:         id,
			Title:      title,
			Discipline: coerceString(v["discipline"]),
			CareerID:   coerceString(v["career_id"]),
			URL:        coerceString(v["video_url"]),
		})
	}
	return out, nil
}

// KnowledgeNodes normalizes the knowledge taxonomy.
func KnowledgeNodes(doc any) ([]KnowledgeNode, error) {
	items, _, err := DecodeCollection(doc, KeyDisciplines)
	if err != nil {
		return nil, fmt.Errorf("knowledge: %w", err)
	}
	out := make([]KnowledgeNode, 0, len(items))
	for _, it := range items {
		n := asMap(it)
		id := coerceString(n["id"])
		if id == "" {
			continue
		}
		node := KnowledgeNode{
			ID:            id,
			Year:          intOr(n["year"], 0),
			Discipline:    coerceString(n["discipline"]),
			Code:          coerceString(n["code"]),
			Title:         coerceString(n["title"]),
			Description:   coerceString(n["description"]),
			ProgressionTo: coerceString(n["progression_to"]),
			SimilarTo:     stringList(n["similar_to"]),
			ReinforcedBy:  stringList(n["reinforced_by"]),
		}
		if levels, ok := n["levels"].([]any); ok {
			for _, l := range levels {
				lm := asMap(l)
				node.Levels = append(node.Levels, NodeLevel{
					Level:    intOr(lm["level"], 0),
					Outcomes: stringList(lm["outcomes"]),
				})
			}
		}
		out = append(out, node)
	}
	return out, nil
}

// ExpectedCases normalizes reviewer expectations used in debug mode.
func ExpectedCases(doc any) ([]ExpectedCase, error) {
	items, _, err := DecodeCollection(doc, KeyCases)
	if err != nil {
		return nil, fmt.Errorf("expected recommendations: %w", err)
	}
	out := make([]ExpectedCase, 0, len(items))
	for _, it := range items {
		c := asMap(it)
		ec := ExpectedCase{
			UserID:          coerceString(c["userId"]),
			CompletedNodeID: coerceString(c["completedNodeId"]),
		}
		list, ok := c["expected"].([]any)
		if !ok {
			list, _ = c["items"].([]any)
		}
		for _, e := range list {
			em := asMap(e)
			ec.Expected = append(ec.Expected, ExpectedItem{
				ID:   coerceString(em["id"]),
				Kind: coerceString(em["kind"]),
			})
		}
		out = append(out, ec)
	}
	return out, nil
}
