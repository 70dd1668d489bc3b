package analyzer

import (
	"context"
	"sync"

	"github.com/rankscore/aeo-insight/internal/model"
)

// MaxBatchURLs caps the number of URLs one batch request may analyze.
const MaxBatchURLs = 20

// BatchResult is the outcome for one URL of a batch. Exactly one of Report
// and Err is set.
type BatchResult struct {
	URL    string
	Report *model.Report
	Err    error
}

// AnalyzeBatch analyzes urls concurrently using a pool of worker goroutines
// sized by the configured concurrency. Results keep the input order. Callers
// enforce MaxBatchURLs.
func (s *Service) AnalyzeBatch(ctx context.Context, accountID string, urls []string) []BatchResult {
	results := make([]BatchResult, len(urls))
	if len(urls) == 0 {
		return results
	}

	jobs := make(chan int, len(urls))
	numWorkers := min(len(urls), s.concurrency)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for i := range jobs {
				report, err := s.Analyze(ctx, accountID, urls[i])
				results[i] = BatchResult{URL: urls[i], Report: report, Err: err}
			}
		})
	}

	for i := range urls {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}
