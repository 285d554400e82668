package htmlkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByClassMatchesWholeTokensOnly(t *testing.T) {
	kit := New()
	fragment := `<div class="warning-box highlight"><p class="warning">Serious</p></div><span class="warning-box-wide">wide</span>`

	found, err := kit.FindByClass(fragment, "warning-box")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "div", found[0].Tag)
	assert.Equal(t, []string{"warning-box", "highlight"}, found[0].Classes)

	// "warning" is a token of the p element but only a prefix elsewhere.
	found, err = kit.FindByClass(fragment, "warning")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p", found[0].Tag)

	found, err = kit.FindByClass(fragment, "warn")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFindByClassReportsElementDetails(t *testing.T) {
	kit := New()
	fragment := `<div id="box-1" class="note" data-ref="s4"><p>Take  with water</p></div>`

	found, err := kit.FindByClass(fragment, "note")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "box-1", found[0].ID)
	assert.Equal(t, "Take with water", found[0].Text)
	assert.Equal(t, map[string]string{"data-ref": "s4"}, found[0].Attributes)
}

func TestFindByClassDocumentOrder(t *testing.T) {
	kit := New()
	fragment := `<p class="x" id="first">a</p><div class="x" id="second"><span class="x" id="third">b</span></div>`

	found, err := kit.FindByClass(fragment, "x")
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, "first", found[0].ID)
	assert.Equal(t, "second", found[1].ID)
	assert.Equal(t, "third", found[2].ID)
}

func TestFindByTag(t *testing.T) {
	kit := New()
	fragment := `<div><p>one</p><p>two</p><span>three</span></div>`

	found, err := kit.FindByTag(fragment, "P")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "one", found[0].Text)
	assert.Equal(t, "two", found[1].Text)
}

func TestSummarizeCountsFragmentElementsOnly(t *testing.T) {
	kit := New()
	fragment := `<div class="leaflet"><p>Hello world</p> <ul><li>alpha</li></ul></div>`

	sum, err := kit.Summarize(fragment)
	require.NoError(t, err)

	assert.Equal(t, len(fragment), sum.TotalLength)
	assert.Equal(t, len("Hello world alpha"), sum.TextLength)
	assert.Equal(t, 4, sum.TotalElements)
	assert.Equal(t, 1, sum.TagCounts["div"])
	assert.Equal(t, 1, sum.TagCounts["p"])
	assert.Equal(t, 1, sum.TagCounts["ul"])
	assert.Equal(t, 1, sum.TagCounts["li"])
	// No parser-invented wrappers in the counts.
	assert.Zero(t, sum.TagCounts["html"])
	assert.Zero(t, sum.TagCounts["body"])
	assert.Equal(t, 1, sum.ClassCounts["leaflet"])
	assert.False(t, sum.HasTables)
	assert.False(t, sum.HasForms)
	assert.True(t, sum.HasLists)
}

func TestSummarizeEmptyFragment(t *testing.T) {
	kit := New()

	sum, err := kit.Summarize("")
	require.NoError(t, err)
	assert.Zero(t, sum.TotalElements)
	assert.Zero(t, sum.TextLength)
	assert.Nil(t, sum.TagCounts)
}

func TestSummarizeDetectsTables(t *testing.T) {
	kit := New()
	fragment := `<table><tr><td>dose</td></tr></table>`

	sum, err := kit.Summarize(fragment)
	require.NoError(t, err)
	assert.True(t, sum.HasTables)
	assert.False(t, sum.HasLists)
}

func TestTextCollapsesWhitespace(t *testing.T) {
	kit := New()

	text, err := kit.Text("<div><p>A  B</p>\n<p>C</p></div>")
	require.NoError(t, err)
	assert.Equal(t, "A B C", text)
}

func TestWrap(t *testing.T) {
	wrapped := Wrap("<p>inner</p>", "div", []string{"box", "hl"}, map[string]string{"data-b": "2", "data-a": "1"})
	assert.Equal(t, `<div class="box hl" data-a="1" data-b="2"><p>inner</p></div>`, wrapped)
}

func TestWrapEscapesAttributeValues(t *testing.T) {
	wrapped := Wrap("x", "span", nil, map[string]string{"title": `a"b`})
	assert.Equal(t, `<span title="a&#34;b">x</span>`, wrapped)
}

func TestStructuralSections(t *testing.T) {
	kit := New()
	fragment := `<div class="intro"><p>About</p></div><p>loose</p><section class="dosage">Take one</section><div>unclassed</div>`

	sections, err := kit.StructuralSections(fragment)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "div", sections[0].Tag)
	assert.Equal(t, []string{"intro"}, sections[0].Classes)
	assert.Contains(t, sections[0].HTML, "<p>About</p>")
	assert.Equal(t, "section", sections[1].Tag)
	assert.Contains(t, sections[1].HTML, "Take one")
}

func TestMarkdown(t *testing.T) {
	kit := New()

	md, err := kit.Markdown("<h1>Title</h1><p>Some <strong>bold</strong> text</p>")
	require.NoError(t, err)
	assert.Contains(t, md, "# Title")
	assert.Contains(t, md, "**bold**")
}
