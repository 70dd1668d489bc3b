package pageinsight

import (
	"context"
	"log/slog"
	"time"

	"github.com/rankscore/aeo-insight/internal/model"
	"github.com/rankscore/aeo-insight/internal/platform/errs"
)

const (
	// approxResourceBytes is the assumed size of every referenced resource.
	// Page weight is estimated, not measured.
	approxResourceBytes = 10_000

	slowTTFBMs      = 200
	slowTotalTimeMs = 3_000
	maxResources    = 50
	heavyPageBytes  = 5_000_000
	speedPenalty    = 20
	fullSpeedScore  = 100
)

// resourceSelectors maps each counted resource type to the markup that references it.
var resourceSelectors = []struct {
	kind     string
	selector string
}{
	{kind: model.ResourceScript, selector: "script[src]"},
	{kind: model.ResourceStylesheet, selector: "link[rel~=stylesheet][href]"},
	{kind: model.ResourceImage, selector: "img[src]"},
}

// SpeedEstimator derives approximate performance metrics from a timing probe
// and a census of the page's resource references.
type SpeedEstimator struct {
	prober Prober
	logger *slog.Logger
}

// NewSpeedEstimator returns a SpeedEstimator that times pages with prober.
func NewSpeedEstimator(prober Prober, logger *slog.Logger) *SpeedEstimator {
	return &SpeedEstimator{prober: prober, logger: logger.With("component", "speed")}
}

// Estimate probes targetURL and combines the result with totalTime, the
// duration of the full content fetch. A failed probe degrades to zeroed
// metrics with Error set; it never aborts the analysis.
func (s *SpeedEstimator) Estimate(ctx context.Context, targetURL string, doc Document, totalTime time.Duration) model.SpeedMetrics {
	ttfb, err := s.prober.Probe(ctx, targetURL)
	if err != nil {
		degraded := &errs.AppError{
			Kind:    errs.DegradedSpeedProbe,
			Message: "speed probe failed",
			Cause:   err,
		}
		s.logger.Warn("speed metrics degraded", "url", targetURL, "kind", degraded.Kind.String(), "error", degraded)
		return model.SpeedMetrics{
			ResourceTypeCounts: map[string]int{},
			Error:              degraded.Error(),
		}
	}

	counts, total := CensusResources(doc)
	m := model.SpeedMetrics{
		TotalTimeMs:        totalTime.Milliseconds(),
		TimeToFirstByteMs:  ttfb.Milliseconds(),
		ResourceCount:      total,
		TotalSizeBytes:     int64(total) * approxResourceBytes,
		ResourceTypeCounts: counts,
	}
	m.PerformanceScore = PerformanceScore(m)
	return m
}

// CensusResources counts script, stylesheet and image references in doc.
func CensusResources(doc Document) (map[string]int, int) {
	counts := make(map[string]int, len(resourceSelectors))
	var total int
	for _, rs := range resourceSelectors {
		n := len(doc.Find(rs.selector))
		counts[rs.kind] = n
		total += n
	}
	return counts, total
}

// PerformanceScore starts at 100 and loses 20 points for each threshold the
// metrics exceed, never dropping below 0.
func PerformanceScore(m model.SpeedMetrics) int {
	score := fullSpeedScore
	if m.TimeToFirstByteMs > slowTTFBMs {
		score -= speedPenalty
	}
	if m.TotalTimeMs > slowTotalTimeMs {
		score -= speedPenalty
	}
	if m.ResourceCount > maxResources {
		score -= speedPenalty
	}
	if m.TotalSizeBytes > heavyPageBytes {
		score -= speedPenalty
	}
	return max(score, 0)
}
