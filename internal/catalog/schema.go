package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument is returned when a document fails schema validation.
var ErrInvalidDocument = errors.New("invalid catalog document")

// collectionSchema accepts a bare array or an object wrapping that array under
// key. Items are not constrained here: malformed entries are coerced during
// normalization instead of failing the document.
func collectionSchema(key string) string {
	return fmt.Sprintf(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "oneOf": [
    {"type": "array"},
    {
      "type": "object",
      "required": [%[1]q],
      "properties": {%[1]q: {"type": "array"}}
    }
  ]
}`, key)
}

var datasetSchemas = map[Dataset]string{
	DatasetStudents:  collectionSchema(KeyUsers),
	DatasetGames:     collectionSchema(KeyGames),
	DatasetCareers:   collectionSchema(KeyCareers),
	DatasetVideos:    collectionSchema(KeyVideos),
	DatasetKnowledge: collectionSchema(KeyDisciplines),
	DatasetExpected:  collectionSchema(KeyCases),
}

var (
	compiledMu      sync.Mutex
	compiledSchemas = map[Dataset]*gojsonschema.Schema{}
)

func schemaFor(ds Dataset) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiledSchemas[ds]; ok {
		return s, nil
	}
	src, ok := datasetSchemas[ds]
	if !ok {
		return nil, fmt.Errorf("no schema for dataset %q", ds)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("compiling %s schema: %w", ds, err)
	}
	compiledSchemas[ds] = s
	return s, nil
}

// Validate checks a generic document against the dataset's shape schema.
func Validate(ds Dataset, doc any) error {
	schema, err := schemaFor(ds)
	if err != nil {
		return err
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validating %s: %w", ds, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidDocument, ds, strings.Join(msgs, "; "))
}
