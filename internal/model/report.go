package model

import "time"

// Missing is the sentinel stored in MetadataFindings when a field is absent.
const Missing = "Missing"

// Component keys used in RankScore.ComponentScores.
const (
	ComponentStructuredData = "structured_data"
	ComponentFAQ            = "faq"
	ComponentH1             = "h1"
	ComponentTitle          = "title"
	ComponentSpeed          = "speed"
	ComponentDescription    = "description"
	ComponentMobile         = "mobile"
	ComponentAccessibility  = "accessibility"
)

// Resource type keys used in SpeedMetrics.ResourceTypeCounts.
const (
	ResourceScript     = "script"
	ResourceStylesheet = "stylesheet"
	ResourceImage      = "image"
)

// Effort rates how much work an Issue takes to fix.
type Effort string

const (
	EffortLow    Effort = "Low"
	EffortMedium Effort = "Medium"
	EffortHigh   Effort = "High"
)

// Report is the complete result of analyzing one page.
type Report struct {
	ID         string       `json:"id"`
	URL        string       `json:"url"`
	AnalyzedAt time.Time    `json:"analyzed_at"`
	RankScore  RankScore    `json:"rank_score"`
	Issues     []Issue      `json:"issues"`
	Findings   Findings     `json:"findings"`
	Speed      SpeedMetrics `json:"speed"`
}

// RankScore is the weighted composite score with its breakdowns.
type RankScore struct {
	TotalScore      int            `json:"total_score"`
	Subscores       Subscores      `json:"subscores"`
	ComponentScores map[string]int `json:"component_scores"`
}

// Subscores groups component scores by concern.
type Subscores struct {
	ContentStructure int `json:"content_structure"`
	Technical        int `json:"technical"`
	Metadata         int `json:"metadata"`
	Accessibility    int `json:"accessibility"`
}

// Issue is one actionable recommendation.
type Issue struct {
	Type     string `json:"type"`
	Priority int    `json:"priority"`
	Effort   Effort `json:"effort"`
	Fix      string `json:"fix"`
	Example  string `json:"example"`
}

// Findings aggregates the output of every markup analyzer.
type Findings struct {
	Metadata       MetadataFindings `json:"metadata"`
	Headers        HeaderFindings   `json:"headers"`
	StructuredData bool             `json:"structured_data"`
	FAQ            bool             `json:"faq"`
	MobileFriendly bool             `json:"mobile_friendly"`
	Accessible     bool             `json:"accessible"`
}

// MetadataFindings holds the page title and meta description.
type MetadataFindings struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Note        string `json:"note,omitempty"`
}

// HeaderFindings counts top-level headings.
type HeaderFindings struct {
	H1Present bool `json:"h1_present"`
	H2Present bool `json:"h2_present"`
	H1Count   int  `json:"h1_count"`
	H2Count   int  `json:"h2_count"`
}

// SpeedMetrics is the approximate performance picture of a page. When the
// timing probe fails every numeric field is zero and Error is set.
type SpeedMetrics struct {
	TotalTimeMs        int64          `json:"total_time_ms"`
	TimeToFirstByteMs  int64          `json:"time_to_first_byte_ms"`
	ResourceCount      int            `json:"resource_count"`
	TotalSizeBytes     int64          `json:"total_size_bytes"`
	ResourceTypeCounts map[string]int `json:"resource_type_counts"`
	PerformanceScore   int            `json:"performance_score"`
	Error              string         `json:"error,omitempty"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
