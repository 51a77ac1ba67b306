package report

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/p-n-ai/pai-pathways/internal/recommend"
)

const defaultConcurrency = 4

// Generate computes results for every id concurrently. Results keep the order
// of ids; the first failure cancels the rest.
func Generate(ctx context.Context, svc *recommend.Service, ids []string, mode recommend.Mode, concurrency int) ([]recommend.Result, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	results := make([]recommend.Result, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			res, err := svc.ForStudent(ctx, id, mode)
			if err != nil {
				return fmt.Errorf("student %s: %w", id, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("recommendations generated", "students", len(results), "mode", mode)
	return results, nil
}

// Summary counts file outcomes.
type Summary map[Outcome]int

// WriteFiles writes every result with w and counts what happened.
func WriteFiles(w *FileWriter, results []recommend.Result) (Summary, error) {
	summary := Summary{}
	for i, res := range results {
		outcome, err := w.Write(res)
		if err != nil {
			return summary, err
		}
		summary[outcome]++
		slog.Debug("student file written",
			"progress", fmt.Sprintf("%d/%d", i+1, len(results)),
			"student_id", res.User.ID,
			"outcome", outcome,
		)
	}
	return summary, nil
}
