package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuvia/kuvia/web"
)

func TestMinifier_GalleryScript(t *testing.T) {
	script, err := web.Asset(web.ScriptFile)
	require.NoError(t, err)

	out, err := NewMinifier().JS(script)
	require.NoError(t, err, "the gallery script must parse")
	assert.Less(t, len(out), len(script))

	// Globals, DOM ids and method names are part of the page contract and
	// must survive renaming.
	for _, name := range []string{
		"kuviaimagelist", "hashchange",
		"imginfo", "imgarea", "linksarea", "sidebar", "zoomindicator", "noimageswarning",
		"setItems", "setByKey", "invalidImage", "initialize",
		"new Set(",
	} {
		assert.Contains(t, out, name)
	}
}

func TestMinifier_Stylesheet(t *testing.T) {
	style, err := web.Asset(web.StylesheetFile)
	require.NoError(t, err)

	out, err := NewMinifier().CSS(style)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Less(t, len(out), len(style))
}
