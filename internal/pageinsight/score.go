package pageinsight

import "github.com/rankscore/aeo-insight/internal/model"

// Component weights. They sum to 100.
const (
	weightStructuredData = 25
	weightFAQ            = 20
	weightH1             = 15
	weightTitle          = 10
	weightSpeed          = 10
	weightDescription    = 8
	weightMobile         = 7
	weightAccessibility  = 5

	// speedPassScore is the minimum performance score that earns the speed weight.
	speedPassScore = 80
)

// Score computes the weighted composite score. Each component is pass/fail.
func Score(f model.Findings, speed model.SpeedMetrics) model.RankScore {
	c := map[string]int{
		model.ComponentStructuredData: award(f.StructuredData, weightStructuredData),
		model.ComponentFAQ:            award(f.FAQ, weightFAQ),
		model.ComponentH1:             award(f.Headers.H1Present, weightH1),
		model.ComponentTitle:          award(f.Metadata.Title != model.Missing, weightTitle),
		model.ComponentSpeed:          award(speed.PerformanceScore >= speedPassScore, weightSpeed),
		model.ComponentDescription:    award(f.Metadata.Description != model.Missing, weightDescription),
		model.ComponentMobile:         award(f.MobileFriendly, weightMobile),
		model.ComponentAccessibility:  award(f.Accessible, weightAccessibility),
	}

	var total int
	for _, v := range c {
		total += v
	}

	return model.RankScore{
		TotalScore: total,
		Subscores: model.Subscores{
			ContentStructure: c[model.ComponentStructuredData] + c[model.ComponentFAQ] + c[model.ComponentH1],
			Technical:        c[model.ComponentSpeed] + c[model.ComponentMobile],
			Metadata:         c[model.ComponentTitle] + c[model.ComponentDescription],
			Accessibility:    c[model.ComponentAccessibility],
		},
		ComponentScores: c,
	}
}

func award(pass bool, weight int) int {
	if pass {
		return weight
	}
	return 0
}
