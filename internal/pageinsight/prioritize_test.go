package pageinsight

import (
	"testing"

	"github.com/rankscore/aeo-insight/internal/model"
)

func TestSortIssues_PriorityThenLowEffort(t *testing.T) {
	issues := []model.Issue{
		{Type: "a", Priority: 2, Effort: model.EffortMedium},
		{Type: "b", Priority: 1, Effort: model.EffortLow},
		{Type: "c", Priority: 3, Effort: model.EffortLow},
		{Type: "d", Priority: 1, Effort: model.EffortMedium},
	}

	SortIssues(issues)

	want := []string{"b", "d", "a", "c"}
	for i, w := range want {
		if issues[i].Type != w {
			t.Errorf("issues[%d] = %q, want %q", i, issues[i].Type, w)
		}
	}
}

func TestSortIssues_StableAmongNonLow(t *testing.T) {
	issues := []model.Issue{
		{Type: "high", Priority: 2, Effort: model.EffortHigh},
		{Type: "medium", Priority: 2, Effort: model.EffortMedium},
		{Type: "low", Priority: 2, Effort: model.EffortLow},
	}

	SortIssues(issues)

	want := []string{"low", "high", "medium"}
	for i, w := range want {
		if issues[i].Type != w {
			t.Errorf("issues[%d] = %q, want %q", i, issues[i].Type, w)
		}
	}
}

func TestPrioritize_EmptyPage(t *testing.T) {
	issues := Prioritize(emptyFindings(), model.SpeedMetrics{})

	want := []string{
		"Missing Title",
		"Missing Structured Data",
		"Missing H1",
		"Missing Meta Description",
		"Missing FAQ Schema",
		"Missing Viewport Meta",
		"Images Missing Alt Text",
	}
	if len(issues) != len(want) {
		t.Fatalf("got %d issues, want %d: %+v", len(issues), len(want), issues)
	}
	for i, w := range want {
		if issues[i].Type != w {
			t.Errorf("issues[%d] = %q, want %q", i, issues[i].Type, w)
		}
	}
}

func TestPrioritize_PerfectPage(t *testing.T) {
	speed := model.SpeedMetrics{TimeToFirstByteMs: 50, ResourceCount: 3, TotalSizeBytes: 30_000, PerformanceScore: 100}
	if issues := Prioritize(fullFindings(), speed); len(issues) != 0 {
		t.Errorf("got %d issues, want 0: %+v", len(issues), issues)
	}
}

func TestPrioritize_SpeedIssuesFireIndependently(t *testing.T) {
	speed := model.SpeedMetrics{TimeToFirstByteMs: 450, ResourceCount: 600, TotalSizeBytes: 6_000_000}
	issues := Prioritize(fullFindings(), speed)

	want := []string{"Slow Server Response", "Heavy Page Weight", "Too Many Requests"}
	if len(issues) != len(want) {
		t.Fatalf("got %d issues, want %d: %+v", len(issues), len(want), issues)
	}
	for i, w := range want {
		if issues[i].Type != w {
			t.Errorf("issues[%d] = %q, want %q", i, issues[i].Type, w)
		}
	}
}

func TestPrioritize_DegradedProbeRaisesNoSpeedIssue(t *testing.T) {
	speed := model.SpeedMetrics{Error: "speed probe failed", ResourceTypeCounts: map[string]int{}}
	if issues := Prioritize(fullFindings(), speed); len(issues) != 0 {
		t.Errorf("got %d issues, want 0: %+v", len(issues), issues)
	}
}

func TestPrioritize_IssuesCarryFixAndExample(t *testing.T) {
	f := emptyFindings()
	speed := model.SpeedMetrics{TimeToFirstByteMs: 999, ResourceCount: 51, TotalSizeBytes: 5_000_001}
	for _, is := range Prioritize(f, speed) {
		if is.Fix == "" || is.Example == "" {
			t.Errorf("issue %q lacks fix or example", is.Type)
		}
		if is.Priority < 1 || is.Priority > 3 {
			t.Errorf("issue %q priority = %d", is.Type, is.Priority)
		}
	}
}
