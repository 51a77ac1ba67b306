package recommend

import "github.com/p-n-ai/pai-pathways/internal/catalog"

// Hit identifies a recommendation for comparison purposes.
type Hit struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

func (h Hit) key() string { return h.Kind + ":" + h.ID }

// CompareResult scores actual recommendations against reviewer expectations.
type CompareResult struct {
	Precision  float64 `json:"precision"`
	Recall     float64 `json:"recall"`
	Missing    []Hit   `json:"missing"`    // expected but absent
	Unexpected []Hit   `json:"unexpected"` // present but not expected
}

// Compare matches hits by kind and id.
func Compare(actual, expected []Hit) CompareResult {
	actualKeys := make(map[string]bool, len(actual))
	for _, a := range actual {
		actualKeys[a.key()] = true
	}
	expectedKeys := make(map[string]bool, len(expected))
	for _, e := range expected {
		expectedKeys[e.key()] = true
	}

	res := CompareResult{Missing: []Hit{}, Unexpected: []Hit{}}
	for _, e := range expected {
		if !actualKeys[e.key()] {
			res.Missing = append(res.Missing, e)
		}
	}
	for _, a := range actual {
		if !expectedKeys[a.key()] {
			res.Unexpected = append(res.Unexpected, a)
		}
	}

	tp := float64(len(expected) - len(res.Missing))
	if len(actual) > 0 {
		res.Precision = tp / float64(len(actual))
	}
	if len(expected) > 0 {
		res.Recall = tp / float64(len(expected))
	}
	return res
}

// CompareExpected compares next steps with the catalog's expectations for the
// student and completed node. It reports false when none are recorded.
func CompareExpected(cat *catalog.Catalog, userID, completed string, steps []NextStep) (CompareResult, bool) {
	ec, ok := cat.ExpectedFor(userID, completed)
	if !ok || len(ec.Expected) == 0 {
		return CompareResult{}, false
	}
	expected := make([]Hit, 0, len(ec.Expected))
	for _, e := range ec.Expected {
		expected = append(expected, Hit{ID: e.ID, Kind: e.Kind})
	}
	actual := make([]Hit, 0, len(steps))
	for _, s := range steps {
		actual = append(actual, s.Hit())
	}
	return Compare(actual, expected), true
}
