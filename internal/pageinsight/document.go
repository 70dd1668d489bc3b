package pageinsight

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is the queryable view of a page that analyzers read. It never
// fails: a selector that matches nothing, or that does not compile, yields
// no elements.
type Document interface {
	Find(selector string) []Element
}

// Element is a single matched node.
type Element interface {
	Attr(name string) (string, bool)
	Text() string
}

type goqueryDocument struct {
	doc *goquery.Document
}

// ParseDocument builds a Document from raw HTML using the HTML5 parsing
// algorithm, which repairs any input into a tree.
func ParseDocument(htmlText string) Document {
	root, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		// Only reachable on reader errors, which a strings.Reader never returns.
		root = &html.Node{Type: html.DocumentNode}
	}
	return &goqueryDocument{doc: goquery.NewDocumentFromNode(root)}
}

func (d *goqueryDocument) Find(selector string) []Element {
	sel := d.doc.Find(selector)
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, goqueryElement{sel: s})
	})
	return out
}

type goqueryElement struct {
	sel *goquery.Selection
}

func (e goqueryElement) Attr(name string) (string, bool) { return e.sel.Attr(name) }

func (e goqueryElement) Text() string { return e.sel.Text() }
