// Command recsgen writes recommendation reports for every catalog student:
// one JSON file per student, a career link file and an optional workbook.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/p-n-ai/pai-pathways/internal/catalog"
	"github.com/p-n-ai/pai-pathways/internal/learner"
	"github.com/p-n-ai/pai-pathways/internal/platform/config"
	"github.com/p-n-ai/pai-pathways/internal/platform/database"
	"github.com/p-n-ai/pai-pathways/internal/recommend"
	"github.com/p-n-ai/pai-pathways/internal/report"
)

const defaultLinksFile = "careers_with_recs.json"

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }

func (l *idList) Set(v string) error {
	for _, id := range strings.Split(v, ",") {
		if id = strings.TrimSpace(id); id != "" {
			*l = append(*l, id)
		}
	}
	return nil
}

type options struct {
	dataDir      string
	outDir       string
	updateOnly   bool
	linksPath    string
	xlsxPath     string
	mode         string
	concurrency  int
	students     idList
	seedPostgres bool
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.Log.NewLogger(os.Stderr))

	var opts options
	flag.StringVar(&opts.dataDir, "data", cfg.DataDir, "catalog directory")
	flag.StringVar(&opts.outDir, "out", "./out", "directory for per-student files")
	flag.BoolVar(&opts.updateOnly, "update-only", false, "only refresh files that already exist, keeping their other fields")
	flag.StringVar(&opts.linksPath, "links", defaultLinksFile, "career link file, relative to -out unless absolute; empty skips it")
	flag.StringVar(&opts.xlsxPath, "xlsx", "", "also write an xlsx workbook to this path")
	flag.StringVar(&opts.mode, "mode", cfg.Mode, "recommendation mode: rule or llm")
	flag.IntVar(&opts.concurrency, "concurrency", 4, "students processed in parallel")
	flag.Var(&opts.students, "student", "student id to generate (repeatable or comma separated; default all)")
	flag.BoolVar(&opts.seedPostgres, "seed-postgres", false, "upsert catalog students into PATHWAYS_DATABASE_URL")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		slog.Error("recsgen failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	mode, err := recommend.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	cat, err := catalog.Load(opts.dataDir)
	if err != nil {
		return err
	}

	if opts.seedPostgres {
		if err := seed(ctx, cfg.Database, cat.Students); err != nil {
			return err
		}
	}

	engine, err := recommend.NewEngine(recommend.EngineConfig{
		Catalog: cat,
		Config:  recommend.DefaultConfig().With(recommend.Tunables(cfg.Engine)),
	})
	if err != nil {
		return err
	}
	profiles := learner.NewMemoryStore(cat.Students...)
	svc := recommend.NewService(profiles, engine)

	ids := []string(opts.students)
	if len(ids) == 0 {
		if ids, err = learner.IDs(ctx, profiles); err != nil {
			return err
		}
	}

	results, err := report.Generate(ctx, svc, ids, mode, opts.concurrency)
	if err != nil {
		return err
	}

	w, err := report.NewFileWriter(opts.outDir, opts.updateOnly)
	if err != nil {
		return err
	}
	summary, err := report.WriteFiles(w, results)
	if err != nil {
		return err
	}
	slog.Info("student files written",
		"dir", opts.outDir,
		"created", summary[report.OutcomeCreated],
		"updated", summary[report.OutcomeUpdated],
		"overwritten", summary[report.OutcomeOverwritten],
		"skipped", summary[report.OutcomeSkipped],
	)

	if opts.linksPath != "" {
		path := opts.linksPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.outDir, path)
		}
		if err := report.WriteCareerLinks(path, report.LinkCareers(cat)); err != nil {
			return err
		}
		slog.Info("career links written", "path", path, "careers", len(cat.Careers))
	}

	if opts.xlsxPath != "" {
		if err := report.WriteWorkbook(opts.xlsxPath, results); err != nil {
			return err
		}
		slog.Info("workbook written", "path", opts.xlsxPath)
	}
	return nil
}

func seed(ctx context.Context, cfg config.DatabaseConfig, students []learner.Profile) error {
	db, err := database.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := db.Profiles(ctx)
	if err != nil {
		return err
	}
	for _, p := range students {
		if err := store.Upsert(ctx, p); err != nil {
			return fmt.Errorf("seeding %s: %w", p.ID, err)
		}
	}
	slog.Info("students seeded", "count", len(students))
	return nil
}
