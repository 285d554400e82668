package htmlkit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateXHTMLAcceptsCleanNarrative(t *testing.T) {
	kit := New()
	div := `<div xmlns="http://www.w3.org/1999/xhtml"><p>Take one tablet&nbsp;daily.</p><br/>More</div>`

	assert.Empty(t, kit.ValidateXHTML(div))
}

func TestValidateXHTMLEmptyContent(t *testing.T) {
	kit := New()

	assert.Equal(t, []string{"content is empty"}, kit.ValidateXHTML(""))
	assert.Equal(t, []string{"content is empty"}, kit.ValidateXHTML("   \n"))
}

func TestValidateXHTMLNulCharacters(t *testing.T) {
	kit := New()
	div := "<div xmlns=\"http://www.w3.org/1999/xhtml\"><p>bad\x00byte</p></div>"

	issues := kit.ValidateXHTML(div)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0], "NUL")
}

func TestValidateXHTMLUnclosedTag(t *testing.T) {
	kit := New()
	div := `<div xmlns="http://www.w3.org/1999/xhtml"><p>never closed</div>`

	issues := kit.ValidateXHTML(div)
	require.NotEmpty(t, issues)
	assert.Contains(t, strings.Join(issues, "; "), "not well-formed")
}

func TestValidateXHTMLMissingNamespace(t *testing.T) {
	kit := New()

	issues := kit.ValidateXHTML(`<div><p>no namespace</p></div>`)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "namespace")
}
