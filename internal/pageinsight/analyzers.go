package pageinsight

import (
	"strings"

	"github.com/rankscore/aeo-insight/internal/model"
)

const (
	selectorTitle       = "title"
	selectorDescription = `meta[name="description"]`
	selectorViewport    = `meta[name="viewport"]`
	selectorJSONLD      = `script[type="application/ld+json"]`
	selectorImage       = "img"

	faqSchemaMarker = "FAQPage"

	missingDescriptionNote = "Add a meta description so answer engines can summarize this page."
)

// AnalyzeMarkup runs every markup analyzer over doc.
func AnalyzeMarkup(doc Document) model.Findings {
	return model.Findings{
		Metadata:       AnalyzeMetadata(doc),
		Headers:        AnalyzeHeaders(doc),
		StructuredData: HasStructuredData(doc),
		FAQ:            HasFAQSchema(doc),
		MobileFriendly: IsMobileFriendly(doc),
		Accessible:     ImagesHaveAlt(doc),
	}
}

// AnalyzeMetadata extracts the first <title> and the meta description. An
// absent or blank value is reported as model.Missing.
func AnalyzeMetadata(doc Document) model.MetadataFindings {
	out := model.MetadataFindings{Title: model.Missing, Description: model.Missing}

	if titles := doc.Find(selectorTitle); len(titles) > 0 {
		if t := strings.TrimSpace(titles[0].Text()); t != "" {
			out.Title = t
		}
	}

	if metas := doc.Find(selectorDescription); len(metas) > 0 {
		if c, _ := metas[0].Attr("content"); strings.TrimSpace(c) != "" {
			out.Description = strings.TrimSpace(c)
		}
	}

	if out.Description == model.Missing {
		out.Note = missingDescriptionNote
	}
	return out
}

// AnalyzeHeaders counts <h1> and <h2> elements.
func AnalyzeHeaders(doc Document) model.HeaderFindings {
	h1 := len(doc.Find("h1"))
	h2 := len(doc.Find("h2"))
	return model.HeaderFindings{
		H1Present: h1 > 0,
		H2Present: h2 > 0,
		H1Count:   h1,
		H2Count:   h2,
	}
}

// HasStructuredData reports whether the page carries any JSON-LD block.
func HasStructuredData(doc Document) bool {
	return len(doc.Find(selectorJSONLD)) > 0
}

// HasFAQSchema reports whether any JSON-LD block mentions FAQPage. The text
// is matched as-is and never decoded, so invalid JSON still counts.
func HasFAQSchema(doc Document) bool {
	for _, s := range doc.Find(selectorJSONLD) {
		if strings.Contains(s.Text(), faqSchemaMarker) {
			return true
		}
	}
	return false
}

// IsMobileFriendly reports whether a viewport meta tag is declared.
func IsMobileFriendly(doc Document) bool {
	return len(doc.Find(selectorViewport)) > 0
}

// ImagesHaveAlt reports whether every <img> has a non-empty alt attribute.
// A page without images passes.
func ImagesHaveAlt(doc Document) bool {
	for _, img := range doc.Find(selectorImage) {
		if alt, ok := img.Attr("alt"); !ok || alt == "" {
			return false
		}
	}
	return true
}
