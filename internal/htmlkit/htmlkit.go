// Package htmlkit works on narrative HTML fragments: parsing, element
// search, structure analysis and markdown conversion. It has no FHIR
// knowledge; callers hand it the div content and interpret the results.
package htmlkit

import (
	"sort"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element describes one matched element of a fragment.
type Element struct {
	Tag        string            `json:"tag"`
	ID         string            `json:"id,omitempty"`
	Classes    []string          `json:"classes,omitempty"`
	Text       string            `json:"text,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// StructureSummary aggregates what a fragment is made of.
type StructureSummary struct {
	TotalLength   int            `json:"total_length"`
	TextLength    int            `json:"text_length"`
	TotalElements int            `json:"total_elements"`
	TagCounts     map[string]int `json:"tag_counts"`
	ClassCounts   map[string]int `json:"class_counts"`
	HasTables     bool           `json:"has_tables"`
	HasForms      bool           `json:"has_forms"`
	HasLists      bool           `json:"has_lists"`
}

// Kit is a reusable fragment toolkit. The markdown converter it carries is
// safe for concurrent use.
type Kit struct {
	converter *md.Converter
}

func New() *Kit {
	return &Kit{converter: md.NewConverter("", true, nil)}
}

// parse reads a fragment in body context, so the parser neither invents
// html/head wrappers around it nor reorders its elements.
func (k *Kit) parse(fragment string) (*goquery.Document, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// FindByClass returns, in document order, every element whose class
// attribute contains class as a whole token. Substring matches do not
// count: "warn" does not match class="warning".
func (k *Kit) FindByClass(fragment, class string) ([]Element, error) {
	doc, err := k.parse(fragment)
	if err != nil {
		return nil, err
	}
	var found []Element
	doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		if hasClassToken(s.AttrOr("class", ""), class) {
			found = append(found, describe(s))
		}
	})
	return found, nil
}

// FindByTag returns every element with the given tag name, in document
// order. Matching is case-insensitive.
func (k *Kit) FindByTag(fragment, tag string) ([]Element, error) {
	doc, err := k.parse(fragment)
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(strings.TrimSpace(tag))
	var found []Element
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if s.Nodes[0].Data == want {
			found = append(found, describe(s))
		}
	})
	return found, nil
}

// Summarize reports the structural make-up of a fragment. An empty
// fragment yields zero counts and nil maps.
func (k *Kit) Summarize(fragment string) (StructureSummary, error) {
	sum := StructureSummary{TotalLength: len(fragment)}
	doc, err := k.parse(fragment)
	if err != nil {
		return StructureSummary{}, err
	}
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Nodes[0]
		sum.TotalElements++
		if sum.TagCounts == nil {
			sum.TagCounts = make(map[string]int)
		}
		sum.TagCounts[node.Data]++
		for _, c := range strings.Fields(s.AttrOr("class", "")) {
			if sum.ClassCounts == nil {
				sum.ClassCounts = make(map[string]int)
			}
			sum.ClassCounts[c]++
		}
	})
	sum.TextLength = len(collapseSpace(doc.Text()))
	sum.HasTables = sum.TagCounts["table"] > 0
	sum.HasForms = sum.TagCounts["form"] > 0
	sum.HasLists = sum.TagCounts["ul"] > 0 || sum.TagCounts["ol"] > 0
	return sum, nil
}

// FragmentSection is a classed structural element of a fragment.
type FragmentSection struct {
	Tag     string   `json:"tag"`
	Classes []string `json:"classes,omitempty"`
	HTML    string   `json:"html"`
}

// StructuralSections returns the classed section, article, div and main
// elements of a fragment, in document order, each with its outer HTML.
func (k *Kit) StructuralSections(fragment string) ([]FragmentSection, error) {
	doc, err := k.parse(fragment)
	if err != nil {
		return nil, err
	}
	var out []FragmentSection
	doc.Find("section[class], article[class], div[class], main[class]").Each(func(_ int, s *goquery.Selection) {
		outer, err := goquery.OuterHtml(s)
		if err != nil {
			return
		}
		out = append(out, FragmentSection{
			Tag:     s.Nodes[0].Data,
			Classes: strings.Fields(s.AttrOr("class", "")),
			HTML:    outer,
		})
	})
	return out, nil
}

// Text strips the markup from a fragment and collapses whitespace runs
// into single spaces.
func (k *Kit) Text(fragment string) (string, error) {
	doc, err := k.parse(fragment)
	if err != nil {
		return "", err
	}
	return collapseSpace(doc.Text()), nil
}

// Markdown converts a fragment to markdown.
func (k *Kit) Markdown(fragment string) (string, error) {
	return k.converter.ConvertString(fragment)
}

// Wrap encloses content in a new element. The class list becomes a single
// class attribute; other attributes follow in key order. Attribute values
// are escaped, content is embedded as-is.
func Wrap(content, tag string, classes []string, attrs map[string]string) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	if len(classes) > 0 {
		b.WriteString(` class="`)
		b.WriteString(html.EscapeString(strings.Join(classes, " ")))
		b.WriteString(`"`)
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attrs[k]))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	b.WriteString(content)
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
	return b.String()
}

func describe(s *goquery.Selection) Element {
	node := s.Nodes[0]
	el := Element{Tag: node.Data, Text: collapseSpace(s.Text())}
	for _, a := range node.Attr {
		switch a.Key {
		case "id":
			el.ID = a.Val
		case "class":
			el.Classes = strings.Fields(a.Val)
		default:
			if el.Attributes == nil {
				el.Attributes = make(map[string]string)
			}
			el.Attributes[a.Key] = a.Val
		}
	}
	return el
}

func hasClassToken(classAttr, class string) bool {
	for _, tok := range strings.Fields(classAttr) {
		if tok == class {
			return true
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
