package pageinsight

import (
	"cmp"
	"slices"

	"github.com/rankscore/aeo-insight/internal/model"
)

// candidate is a recommendation that applies when its condition holds.
type candidate struct {
	applies func(f model.Findings, s model.SpeedMetrics) bool
	issue   model.Issue
}

var candidates = []candidate{
	{
		applies: func(f model.Findings, _ model.SpeedMetrics) bool { return !f.StructuredData },
		issue: model.Issue{
			Type:     "Missing Structured Data",
			Priority: 1,
			Effort:   model.EffortMedium,
			Fix:      "Add a JSON-LD block describing the page's main entity.",
			Example:  `<script type="application/ld+json">{"@context":"https://schema.org","@type":"Organization","name":"Acme"}</script>`,
		},
	},
	{
		applies: func(f model.Findings, _ model.SpeedMetrics) bool { return f.Metadata.Title == model.Missing },
		issue: model.Issue{
			Type:     "Missing Title",
			Priority: 1,
			Effort:   model.EffortLow,
			Fix:      "Add a concise, descriptive <title> to the page head.",
			Example:  "<title>Acme Widgets | Durable Widgets for Every Job</title>",
		},
	},
	{
		applies: func(f model.Findings, _ model.SpeedMetrics) bool { return !f.FAQ },
		issue: model.Issue{
			Type:     "Missing FAQ Schema",
			Priority: 2,
			Effort:   model.EffortMedium,
			Fix:      "Mark up common questions with FAQPage structured data.",
			Example:  `{"@context":"https://schema.org","@type":"FAQPage","mainEntity":[{"@type":"Question","name":"What is Acme?","acceptedAnswer":{"@type":"Answer","text":"A widget maker."}}]}`,
		},
	},
	{
		applies: func(f model.Findings, _ model.SpeedMetrics) bool { return !f.Headers.H1Present },
		issue: model.Issue{
			Type:     "Missing H1",
			Priority: 2,
			Effort:   model.EffortLow,
			Fix:      "Add a single <h1> stating the page's primary topic.",
			Example:  "<h1>Durable Widgets for Every Job</h1>",
		},
	},
	{
		applies: func(f model.Findings, _ model.SpeedMetrics) bool { return f.Metadata.Description == model.Missing },
		issue: model.Issue{
			Type:     "Missing Meta Description",
			Priority: 2,
			Effort:   model.EffortLow,
			Fix:      "Add a meta description summarizing the page in one or two sentences.",
			Example:  `<meta name="description" content="Acme builds durable widgets for professionals.">`,
		},
	},
	{
		applies: func(_ model.Findings, s model.SpeedMetrics) bool { return s.TimeToFirstByteMs > slowTTFBMs },
		issue: model.Issue{
			Type:     "Slow Server Response",
			Priority: 2,
			Effort:   model.EffortHigh,
			Fix:      "Reduce time to first byte with caching, a CDN, or faster backend queries.",
			Example:  "Serve cached HTML from a CDN edge so the first byte arrives in under 200ms.",
		},
	},
	{
		applies: func(f model.Findings, _ model.SpeedMetrics) bool { return !f.MobileFriendly },
		issue: model.Issue{
			Type:     "Missing Viewport Meta",
			Priority: 3,
			Effort:   model.EffortLow,
			Fix:      "Declare a responsive viewport.",
			Example:  `<meta name="viewport" content="width=device-width, initial-scale=1">`,
		},
	},
	{
		applies: func(f model.Findings, _ model.SpeedMetrics) bool { return !f.Accessible },
		issue: model.Issue{
			Type:     "Images Missing Alt Text",
			Priority: 3,
			Effort:   model.EffortLow,
			Fix:      "Give every image a short alt text describing its content.",
			Example:  `<img src="widget.jpg" alt="Blue steel widget on a workbench">`,
		},
	},
	{
		applies: func(_ model.Findings, s model.SpeedMetrics) bool { return s.TotalSizeBytes > heavyPageBytes },
		issue: model.Issue{
			Type:     "Heavy Page Weight",
			Priority: 3,
			Effort:   model.EffortMedium,
			Fix:      "Compress images and drop unused scripts and stylesheets.",
			Example:  "Convert hero images to WebP and lazy-load everything below the fold.",
		},
	},
	{
		applies: func(_ model.Findings, s model.SpeedMetrics) bool { return s.ResourceCount > maxResources },
		issue: model.Issue{
			Type:     "Too Many Requests",
			Priority: 3,
			Effort:   model.EffortMedium,
			Fix:      "Bundle scripts and stylesheets to cut the number of requests.",
			Example:  "Merge per-widget scripts into one deferred bundle.",
		},
	},
}

// Prioritize returns the issues that apply to the findings, most urgent first.
func Prioritize(f model.Findings, speed model.SpeedMetrics) []model.Issue {
	issues := make([]model.Issue, 0, len(candidates))
	for _, c := range candidates {
		if c.applies(f, speed) {
			issues = append(issues, c.issue)
		}
	}
	SortIssues(issues)
	return issues
}

// SortIssues orders issues by ascending priority. Within a priority, Low
// effort issues come first; otherwise the input order is kept.
func SortIssues(issues []model.Issue) {
	slices.SortStableFunc(issues, func(a, b model.Issue) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(effortRank(a.Effort), effortRank(b.Effort))
	})
}

func effortRank(e model.Effort) int {
	if e == model.EffortLow {
		return 0
	}
	return 1
}
