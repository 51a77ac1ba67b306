package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Dataset names one of the catalog files.
type Dataset string

const (
	DatasetKnowledge Dataset = "knowledge"
	DatasetGames     Dataset = "games"
	DatasetCareers   Dataset = "careers"
	DatasetVideos    Dataset = "videos"
	DatasetStudents  Dataset = "students"
	DatasetExpected  Dataset = "expected_recommendations"
)

var extensions = []string{".json", ".yaml", ".yml"}

// required datasets fail the load when their file is missing.
var required = map[Dataset]bool{
	DatasetGames:   true,
	DatasetCareers: true,
	DatasetVideos:  true,
}

// DecodeDocument parses raw bytes into a generic tree. The format is chosen
// from the file extension; anything that is not YAML is read as JSON.
func DecodeDocument(name string, data []byte) (any, error) {
	var doc any
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
	}
	return doc, nil
}

// Load reads every dataset from dir and returns the normalized catalog.
func Load(dir string) (*Catalog, error) {
	docs := make(map[Dataset]any)
	for _, ds := range []Dataset{DatasetKnowledge, DatasetGames, DatasetCareers, DatasetVideos, DatasetStudents, DatasetExpected} {
		doc, found, err := readDataset(dir, ds)
		if err != nil {
			return nil, err
		}
		if !found {
			if required[ds] {
				return nil, fmt.Errorf("loading catalog: %s file not found in %s", ds, dir)
			}
			continue
		}
		docs[ds] = doc
	}

	cat, err := Build(docs)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	slog.Info("catalog loaded",
		"dir", dir,
		"knowledge_nodes", cat.Taxonomy.Len(),
		"units", len(cat.Units),
		"careers", len(cat.Careers),
		"videos", len(cat.Videos),
		"students", len(cat.Students),
	)
	return cat, nil
}

// Build validates and normalizes already-decoded documents. Datasets missing
// from docs become empty collections.
func Build(docs map[Dataset]any) (*Catalog, error) {
	for ds, doc := range docs {
		if err := Validate(ds, doc); err != nil {
			return nil, err
		}
	}

	cat := &Catalog{}
	var err error

	nodes := []KnowledgeNode{}
	if doc, ok := docs[DatasetKnowledge]; ok {
		if nodes, err = KnowledgeNodes(doc); err != nil {
			return nil, err
		}
	}
	cat.Taxonomy = NewTaxonomy(nodes)

	cat.Units = []Unit{}
	if doc, ok := docs[DatasetGames]; ok {
		if cat.Units, err = Units(doc); err != nil {
			return nil, err
		}
	}
	cat.Careers = []Career{}
	if doc, ok := docs[DatasetCareers]; ok {
		if cat.Careers, err = Careers(doc); err != nil {
			return nil, err
		}
	}
	cat.Videos = []Video{}
	if doc, ok := docs[DatasetVideos]; ok {
		if cat.Videos, err = Videos(doc); err != nil {
			return nil, err
		}
	}
	if doc, ok := docs[DatasetStudents]; ok {
		if cat.Students, err = Students(doc); err != nil {
			return nil, err
		}
	}
	if doc, ok := docs[DatasetExpected]; ok {
		if cat.Expected, err = ExpectedCases(doc); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func readDataset(dir string, ds Dataset) (any, bool, error) {
	for _, ext := range extensions {
		path := filepath.Join(dir, string(ds)+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, false, fmt.Errorf("reading %s: %w", path, err)
		}
		doc, err := DecodeDocument(path, data)
		if err != nil {
			return nil, false, err
		}
		return doc, true, nil
	}
	return nil, false, nil
}
