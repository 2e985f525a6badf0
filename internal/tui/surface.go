// Package tui is the terminal display surface of kuvia browse.
//
// The Surface keeps only what the gallery controller tells it: the rendered
// entries, their visibility, the selection text, the zoom marker and the
// location history. Image loads are requested by elements and queued as
// bubbletea commands; their results come back through the program's update
// loop, so the controller is only ever driven from that one goroutine.
package tui

import (
	"context"
	"image"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kuvia/kuvia/internal/gallery"
)

// loadedMsg carries the result of an image load back to the update loop.
type loadedMsg struct {
	entry *gallery.Entry
	src   string
	img   image.Image
	err   error
}

// element is the terminal representation of one entry.
type element struct {
	surface  *Surface
	entry    *gallery.Entry
	src      string
	visible  bool
	detached bool
	loading  bool
	img      image.Image
	err      error
}

func (el *element) Load(src string) {
	if el.detached {
		return
	}
	el.src = src
	el.loading = true
	el.img = nil
	el.err = nil
	el.surface.enqueue(el.surface.loadCmd(el.entry, src))
}

func (el *element) SetVisible(visible bool) {
	el.visible = visible
}

func (el *element) Detach() {
	el.detached = true
	el.visible = false
	el.loading = false
}

// Surface implements gallery.Surface for the terminal.
type Surface struct {
	gallery.Dispatcher

	ctx      context.Context
	loader   Loader
	elements map[*gallery.Entry]*element
	rendered []*gallery.Entry

	selectionText string
	zoom          gallery.ZoomLevel
	noImages      bool
	sidebar       bool
	history       History

	pending []tea.Cmd
}

// NewSurface creates a surface that fetches images with loader.
func NewSurface(ctx context.Context, loader Loader) *Surface {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Surface{
		ctx:      ctx,
		loader:   loader,
		elements: make(map[*gallery.Entry]*element),
		zoom:     gallery.ZoomMin,
	}
}

var _ gallery.Surface = (*Surface)(nil)

func (s *Surface) NewElement(e *gallery.Entry) gallery.Element {
	el := &element{surface: s, entry: e}
	s.elements[e] = el
	return el
}

func (s *Surface) RenderImages(entries []*gallery.Entry) {
	s.rendered = append([]*gallery.Entry(nil), entries...)
}

func (s *Surface) SetSelectionText(text string) {
	s.selectionText = text
}

func (s *Surface) SetZoomLevel(level gallery.ZoomLevel) {
	s.zoom = level
}

func (s *Surface) PushLocation(key string) {
	s.history.Push(key)
}

func (s *Surface) CurrentLocationKey() string {
	return s.history.Current()
}

func (s *Surface) SetNoImagesWarning(visible bool) {
	s.noImages = visible
}

// ToggleSidebar shows or hides the image list.
func (s *Surface) ToggleSidebar() {
	s.sidebar = !s.sidebar
}

// SidebarOpen reports whether the image list is shown.
func (s *Surface) SidebarOpen() bool { return s.sidebar }

// SelectionText returns the info text as set by the controller.
func (s *Surface) SelectionText() string { return s.selectionText }

// ZoomLevel returns the zoom marker.
func (s *Surface) ZoomLevel() gallery.ZoomLevel { return s.zoom }

// NoImagesWarning reports whether the empty-gallery warning is shown.
func (s *Surface) NoImagesWarning() bool { return s.noImages }

// History returns the location history.
func (s *Surface) History() *History { return &s.history }

// Listed returns the rendered entries whose elements are still attached,
// in gallery order.
func (s *Surface) Listed() []*gallery.Entry {
	out := make([]*gallery.Entry, 0, len(s.rendered))
	for _, e := range s.rendered {
		if el := s.elements[e]; el != nil && !el.detached {
			out = append(out, e)
		}
	}
	return out
}

// Shown returns the visible entry, if any.
func (s *Surface) Shown() (*gallery.Entry, bool) {
	for _, e := range s.rendered {
		if el := s.elements[e]; el != nil && el.visible && !el.detached {
			return e, true
		}
	}
	return nil, false
}

func (s *Surface) element(e *gallery.Entry) *element {
	return s.elements[e]
}

func (s *Surface) enqueue(cmd tea.Cmd) {
	s.pending = append(s.pending, cmd)
}

// drain returns the queued commands as one batch and clears the queue.
func (s *Surface) drain() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

func (s *Surface) loadCmd(e *gallery.Entry, src string) tea.Cmd {
	ctx, loader := s.ctx, s.loader
	return func() tea.Msg {
		img, err := loader.Load(ctx, src)
		return loadedMsg{entry: e, src: src, img: img, err: err}
	}
}

// applyLoad stores a load result. It reports whether the load failed for an
// element that still cares about it.
func (s *Surface) applyLoad(msg loadedMsg) bool {
	el := s.elements[msg.entry]
	if el == nil || el.detached || el.src != msg.src {
		return false
	}
	el.loading = false
	el.img, el.err = msg.img, msg.err
	return msg.err != nil
}

// History is a browser-like list of visited locations.
type History struct {
	keys []string
	pos  int
}

// Push records key as the newest location and drops any forward entries.
// Pushing the current key again is a no-op.
func (h *History) Push(key string) {
	if len(h.keys) > 0 && h.keys[h.pos] == key {
		return
	}
	if len(h.keys) > 0 {
		h.keys = h.keys[:h.pos+1]
	}
	h.keys = append(h.keys, key)
	h.pos = len(h.keys) - 1
}

// Current returns the key of the current location, or "" before the
// first push.
func (h *History) Current() string {
	if len(h.keys) == 0 {
		return ""
	}
	return h.keys[h.pos]
}

// Back moves to the previous location. It reports whether it moved.
func (h *History) Back() bool {
	if h.pos == 0 || len(h.keys) == 0 {
		return false
	}
	h.pos--
	return true
}

// Forward moves to the next location. It reports whether it moved.
func (h *History) Forward() bool {
	if h.pos+1 >= len(h.keys) {
		return false
	}
	h.pos++
	return true
}

// Len returns the number of recorded locations.
func (h *History) Len() int { return len(h.keys) }
