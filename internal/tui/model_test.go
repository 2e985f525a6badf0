package tui

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuvia/kuvia/internal/gallery"
)

// fakeLoader returns a solid image for every source except those in broken.
type fakeLoader struct {
	mu     sync.Mutex
	broken map[string]bool
	loads  []string
}

func (f *fakeLoader) Load(_ context.Context, src string) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, src)
	if f.broken[src] {
		return nil, errors.New("not an image")
	}
	return solidImage(4, 4, color.RGBA{R: 255, A: 255}), nil
}

func (f *fakeLoader) loaded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.loads...)
}

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// run executes cmd and feeds every resulting message back into m, the way
// the bubbletea runtime would, until no commands remain.
func run(m *Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "shift+right":
		return tea.KeyMsg{Type: tea.KeyShiftRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "alt+j":
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}, Alt: true}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m *Model, keys ...string) tea.Cmd {
	var last tea.Cmd
	for _, k := range keys {
		_, cmd := m.Update(keyPress(k))
		last = cmd
		run(m, cmd)
	}
	return last
}

func newTestModel(t *testing.T, urls []string, sel gallery.Selection, loader *fakeLoader) *Model {
	t.Helper()
	m := NewModel(context.Background(), Options{URLs: urls, Selection: sel, Loader: loader})
	run(m, m.Init())
	return m
}

func shownURL(t *testing.T, m *Model) string {
	t.Helper()
	e, ok := m.Surface().Shown()
	require.True(t, ok, "no entry shown")
	return e.URL()
}

func TestModel_InitialSelection(t *testing.T) {
	loader := &fakeLoader{}
	m := newTestModel(t, []string{"a.jpg", "b.jpg", "c.jpg"}, gallery.NoSelection(), loader)

	assert.Equal(t, "1/3 - a.jpg", m.Surface().SelectionText())
	assert.Equal(t, "a.jpg", shownURL(t, m))
	assert.Equal(t, []string{"a.jpg"}, loader.loaded())
	assert.Equal(t, 0, m.Surface().History().Len())
	assert.False(t, m.Surface().NoImagesWarning())
}

func TestModel_StartSelection(t *testing.T) {
	m := newTestModel(t, []string{"a.jpg", "b.jpg", "c.jpg"}, gallery.SelectIndex(2), &fakeLoader{})
	assert.Equal(t, "3/3 - c.jpg", m.Surface().SelectionText())
	assert.Equal(t, "c.jpg", m.Surface().CurrentLocationKey())

	m = newTestModel(t, []string{"a.jpg", "b.jpg"}, gallery.SelectKey("b.jpg"), &fakeLoader{})
	assert.Equal(t, "2/2 - b.jpg", m.Surface().SelectionText())
}

func TestModel_Navigation(t *testing.T) {
	loader := &fakeLoader{}
	m := newTestModel(t, []string{"a.jpg", "b.jpg", "c.jpg"}, gallery.NoSelection(), loader)

	press(m, "j")
	assert.Equal(t, "2/3 - b.jpg", m.Surface().SelectionText())
	assert.Equal(t, "b.jpg", shownURL(t, m))
	assert.Equal(t, "b.jpg", m.Surface().CurrentLocationKey())

	press(m, "right", "right")
	assert.Equal(t, "1/3 - a.jpg", m.Surface().SelectionText(), "next wraps around")

	press(m, "left")
	assert.Equal(t, "3/3 - c.jpg", m.Surface().SelectionText())

	press(m, "k")
	assert.Equal(t, "2/3 - b.jpg", m.Surface().SelectionText())

	// Every image is fetched once however often it is shown.
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, loader.loaded())
}

func TestModel_ModifiedKeysPassThrough(t *testing.T) {
	m := newTestModel(t, []string{"a.jpg", "b.jpg"}, gallery.NoSelection(), &fakeLoader{})

	press(m, "alt+j", "shift+right")
	assert.Equal(t, "1/2 - a.jpg", m.Surface().SelectionText())
}

func TestModel_ZoomGatesArrowKeys(t *testing.T) {
	m := newTestModel(t, []string{"a.jpg", "b.jpg"}, gallery.NoSelection(), &fakeLoader{})

	press(m, "z")
	assert.Equal(t, gallery.ZoomMed, m.Surface().ZoomLevel())
	press(m, "z")
	assert.Equal(t, gallery.ZoomMax, m.Surface().ZoomLevel())

	press(m, "right")
	assert.Equal(t, "1/2 - a.jpg", m.Surface().SelectionText(), "arrows are ignored at maximum zoom")

	press(m, "j")
	assert.Equal(t, "2/2 - b.jpg", m.Surface().SelectionText(), "j moves regardless of zoom")

	press(m, "z")
	assert.Equal(t, gallery.ZoomMin, m.Surface().ZoomLevel())
}

func TestModel_EnterActivatesShownImage(t *testing.T) {
	m := newTestModel(t, []string{"a.jpg"}, gallery.NoSelection(), &fakeLoader{})

	press(m, "enter")
	assert.Equal(t, gallery.ZoomMed, m.Surface().ZoomLevel())
}

func TestModel_SidebarSelect(t *testing.T) {
	m := newTestModel(t, []string{"a.jpg", "b.jpg", "c.jpg"}, gallery.NoSelection(), &fakeLoader{})

	press(m, "space")
	require.True(t, m.Surface().SidebarOpen())

	press(m, "down", "down", "down", "enter")
	assert.Equal(t, "3/3 - c.jpg", m.Surface().SelectionText())
	assert.Equal(t, "c.jpg", m.Surface().CurrentLocationKey())

	press(m, "up", "enter")
	assert.Equal(t, "2/3 - b.jpg", m.Surface().SelectionText())

	press(m, "space")
	assert.False(t, m.Surface().SidebarOpen())
}

func TestModel_LocationHistory(t *testing.T) {
	m := newTestModel(t, []string{"a.jpg", "b.jpg", "c.jpg"}, gallery.NoSelection(), &fakeLoader{})

	press(m, "j", "j")
	assert.Equal(t, "c.jpg", m.Surface().CurrentLocationKey())

	press(m, "[")
	assert.Equal(t, "2/3 - b.jpg", m.Surface().SelectionText())
	assert.Equal(t, "b.jpg", shownURL(t, m))

	press(m, "[")
	assert.Equal(t, "2/3 - b.jpg", m.Surface().SelectionText(), "no location before the first push")

	press(m, "]")
	assert.Equal(t, "3/3 - c.jpg", m.Surface().SelectionText())
	assert.Equal(t, 2, m.Surface().History().Len())
}

func TestModel_BrokenImageIsRemoved(t *testing.T) {
	loader := &fakeLoader{broken: map[string]bool{"b.jpg": true}}
	m := newTestModel(t, []string{"a.jpg", "b.jpg", "c.jpg"}, gallery.NoSelection(), loader)

	press(m, "j")

	assert.Equal(t, "2/2 - c.jpg", m.Surface().SelectionText())
	assert.Equal(t, "c.jpg", shownURL(t, m))
	assert.Equal(t, "c.jpg", m.Surface().CurrentLocationKey())

	var listed []string
	for _, e := range m.Surface().Listed() {
		listed = append(listed, e.URL())
	}
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, listed)
}

func TestModel_AllImagesBroken(t *testing.T) {
	loader := &fakeLoader{broken: map[string]bool{"a.jpg": true}}
	m := newTestModel(t, []string{"a.jpg"}, gallery.NoSelection(), loader)

	assert.True(t, m.Surface().NoImagesWarning())
	assert.Equal(t, "", m.Surface().SelectionText())
	assert.Empty(t, m.Surface().Listed())
	assert.Contains(t, m.View(), "No images found.")
}

func TestModel_StaleLoadIgnored(t *testing.T) {
	m := newTestModel(t, []string{"a.jpg", "b.jpg"}, gallery.NoSelection(), &fakeLoader{})
	entries := m.Controller().Entries()

	_, _ = m.Update(loadedMsg{entry: entries[1], src: "other.jpg", err: errors.New("boom")})
	assert.Len(t, m.Controller().Entries(), 2)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, []string{"a.jpg"}, gallery.NoSelection(), &fakeLoader{})

	for _, k := range []string{"q", "ctrl+c"} {
		_, cmd := m.Update(keyPress(k))
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t, []string{"dir/a%26b.jpg", "b.jpg"}, gallery.NoSelection(), &fakeLoader{})
	_, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})

	view := m.View()
	assert.Contains(t, view, "1/2 - a&b.jpg")
	assert.Contains(t, view, halfBlock)

	press(m, "space")
	view = m.View()
	assert.Contains(t, view, "b.jpg")
	assert.Contains(t, view, "a&b.jpg")
	assert.GreaterOrEqual(t, strings.Count(view, "\n"), 10)
}

func TestModel_EmptyGallery(t *testing.T) {
	m := newTestModel(t, nil, gallery.NoSelection(), &fakeLoader{})

	assert.True(t, m.Surface().NoImagesWarning())
	press(m, "j", "z", "enter", "[")
	assert.Contains(t, m.View(), "No images found.")
}
