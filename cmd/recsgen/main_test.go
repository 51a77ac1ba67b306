package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"github.com/p-n-ai/pai-pathways/internal/platform/config"
	"github.com/p-n-ai/pai-pathways/internal/recommend"
	"github.com/p-n-ai/pai-pathways/internal/report"
)

func writeCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"games.json":    `[{"id":"g1","title":"Intro to Cells","difficulty":"easy","node_id":"BIO.Y3.AC9S3U01"},{"id":"g2","title":"Planets","difficulty":"medium","node_id":"EARTH.Y3.AC9S3U02"}]`,
		"careers.json":  `[{"id":"c1","title":"Biologist","discipline":"Biological Sciences","required_knowledge":[{"node":"BIO.Y3.AC9S3U01","min_level":1,"weight":1}],"threshold":1}]`,
		"videos.json":   `[{"id":"v1","title":"Meet a Biologist","discipline":"Biological Sciences","career_id":"c1"}]`,
		"students.json": `{"users":[{"user_id":"Y3_U1","year":3,"knowledge_progress":[{"node":"BIO.Y3.AC9S3U01","level":1}]},{"user_id":"Y3/U2","year":3}]}`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func TestIDList(t *testing.T) {
	var l idList
	for _, v := range []string{"a", "b, c", " ", ""} {
		if err := l.Set(v); err != nil {
			t.Fatal(err)
		}
	}
	if want := (idList{"a", "b", "c"}); !reflect.DeepEqual(l, want) {
		t.Errorf("ids = %v, want %v", l, want)
	}
	if l.String() != "a,b,c" {
		t.Errorf("String() = %q", l.String())
	}
}

func TestRun_WritesReports(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	xlsx := filepath.Join(t.TempDir(), "recs.xlsx")
	opts := options{
		dataDir:     writeCatalog(t),
		outDir:      out,
		linksPath:   defaultLinksFile,
		xlsxPath:    xlsx,
		mode:        "rule",
		concurrency: 2,
	}

	if err := run(t.Context(), testConfig(t), opts); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	for _, name := range []string{report.FileName("Y3_U1"), report.FileName("Y3/U2"), defaultLinksFile} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Errorf("missing workbook: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, report.FileName("Y3_U1")))
	if err != nil {
		t.Fatal(err)
	}
	var res recommend.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if res.User.ID != "Y3_U1" || res.Meta.Mode != recommend.ModeRule {
		t.Errorf("user/mode = %s/%s", res.User.ID, res.Meta.Mode)
	}
}

func TestRun_SelectedStudentsUpdateOnly(t *testing.T) {
	out := t.TempDir()
	existing := filepath.Join(out, report.FileName("Y3_U1"))
	if err := os.WriteFile(existing, []byte(`{"reviewer":"ms-lee"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := options{
		dataDir:     writeCatalog(t),
		outDir:      out,
		updateOnly:  true,
		mode:        "llm",
		concurrency: 1,
		students:    idList{"Y3_U1", "Y3/U2"},
	}

	if err := run(t.Context(), testConfig(t), opts); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(out, report.FileName("Y3/U2"))); !os.IsNotExist(err) {
		t.Errorf("update-only run created a new file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, defaultLinksFile)); !os.IsNotExist(err) {
		t.Errorf("links written without -links: %v", err)
	}

	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["reviewer"] != "ms-lee" {
		t.Errorf("reviewer lost: %v", doc)
	}
	if _, ok := doc["recommendations"]; !ok {
		t.Error("recommendations not merged in")
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    func(dataDir string) options
		wantErr error
	}{
		{
			name:    "bad mode",
			opts:    func(d string) options { return options{dataDir: d, outDir: t.TempDir(), mode: "gpt"} },
			wantErr: recommend.ErrUnknownMode,
		},
		{
			name:    "unknown student",
			opts:    func(d string) options { return options{dataDir: d, outDir: t.TempDir(), students: idList{"ghost"}} },
			wantErr: recommend.ErrStudentNotFound,
		},
		{
			name: "missing catalog",
			opts: func(string) options { return options{dataDir: t.TempDir(), outDir: t.TempDir()} },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t.Context(), testConfig(t), tt.opts(writeCatalog(t)))
			if err == nil {
				t.Fatal("run() should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
