package catalog

import "strings"

// Taxonomy indexes knowledge nodes by id and follows their links.
type Taxonomy struct {
	nodes []KnowledgeNode
	byID  map[string]int
}

// NewTaxonomy builds the index. Later nodes with a duplicate id win.
func NewTaxonomy(nodes []KnowledgeNode) *Taxonomy {
	t := &Taxonomy{
		nodes: nodes,
		byID:  make(map[string]int, len(nodes)),
	}
	for i, n := range nodes {
		t.byID[n.ID] = i
	}
	return t
}

// Len returns the number of nodes.
func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Nodes returns all nodes in catalog order.
func (t *Taxonomy) Nodes() []KnowledgeNode {
	if t == nil {
		return nil
	}
	return t.nodes
}

// Node returns a node by id.
func (t *Taxonomy) Node(id string) (KnowledgeNode, bool) {
	if t == nil {
		return KnowledgeNode{}, false
	}
	i, ok := t.byID[id]
	if !ok {
		return KnowledgeNode{}, false
	}
	return t.nodes[i], true
}

// NextProgression returns the node the given node progresses to, if any.
func (t *Taxonomy) NextProgression(id string) []KnowledgeNode {
	cur, ok := t.Node(id)
	if !ok || cur.ProgressionTo == "" {
		return nil
	}
	next, ok := t.Node(cur.ProgressionTo)
	if !ok {
		return nil
	}
	return []KnowledgeNode{next}
}

// Similar returns the known nodes listed as similar to the given node.
func (t *Taxonomy) Similar(id string) []KnowledgeNode {
	cur, ok := t.Node(id)
	if !ok {
		return nil
	}
	var out []KnowledgeNode
	for _, sid := range cur.SimilarTo {
		if n, ok := t.Node(sid); ok {
			out = append(out, n)
		}
	}
	return out
}

// ReinforcedBy returns the inquiry strand ids a node reinforces.
func (t *Taxonomy) ReinforcedBy(id string) []string {
	cur, ok := t.Node(id)
	if !ok {
		return nil
	}
	return cur.ReinforcedBy
}

var nodeAliases = []struct{ from, to string }{
	{"BIOLOGICAL.", "BIO."},
	{"CHEMICAL.", "CHEM."},
	{"PHYSICAL.", "PHYS."},
}

// NormalizeNodeID rewrites long discipline prefixes used by some career files
// to the short prefixes of the knowledge taxonomy.
func NormalizeNodeID(id string) string {
	for _, a := range nodeAliases {
		if rest, ok := strings.CutPrefix(id, a.from); ok {
			return a.to + rest
		}
	}
	return id
}
