package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssets(t *testing.T) {
	for _, name := range []string{ScriptFile, StylesheetFile, TemplateFile, LiveReloadFile} {
		t.Run(name, func(t *testing.T) {
			content, err := Asset(name)
			require.NoError(t, err)
			assert.NotEmpty(t, strings.TrimSpace(content))
		})
	}
}

func TestAsset_Missing(t *testing.T) {
	_, err := Asset("nope.js")
	assert.Error(t, err)
}

func TestTemplatePlaceholders(t *testing.T) {
	tmpl, err := Asset(TemplateFile)
	require.NoError(t, err)

	assert.Contains(t, tmpl, "{{{header}}}")
	assert.Contains(t, tmpl, "{{{title}}}")
}

func TestScriptReadsImageList(t *testing.T) {
	script, err := Asset(ScriptFile)
	require.NoError(t, err)

	assert.Contains(t, script, "window.kuviaimagelist")
	assert.Contains(t, script, "hashchange")
}
