package gallery

import (
	"context"
	"fmt"
	"html"
	"strconv"

	kerrors "github.com/kuvia/kuvia/internal/errors"
	"github.com/kuvia/kuvia/internal/logging"
	"github.com/kuvia/kuvia/internal/scanner"
)

// Selection is the initial image to show: an index, a key, or nothing.
type Selection struct {
	kind  selectionKind
	index int
	key   string
}

type selectionKind int

const (
	selectNone selectionKind = iota
	selectIndex
	selectKey
)

// NoSelection keeps the list's default, the first image.
func NoSelection() Selection { return Selection{} }

// SelectIndex selects by position.
func SelectIndex(i int) Selection { return Selection{kind: selectIndex, index: i} }

// SelectKey selects by image URL.
func SelectKey(key string) Selection { return Selection{kind: selectKey, key: key} }

// SelectionFromFragment turns a location fragment into a selection. The
// fragment is always a key; an empty fragment selects nothing.
func SelectionFromFragment(fragment string) Selection {
	if fragment == "" {
		return NoSelection()
	}
	return SelectKey(fragment)
}

// String describes the selection for logs.
func (s Selection) String() string {
	switch s.kind {
	case selectIndex:
		return "index:" + strconv.Itoa(s.index)
	case selectKey:
		return "key:" + s.key
	default:
		return "none"
	}
}

// Controller owns the image list and the zoom cycle and keeps a Surface in
// sync with them. All methods must be called from the surface's event loop.
type Controller struct {
	images  *List[*Entry]
	zoom    *List[ZoomLevel]
	surface Surface
	logger  logging.Logger
	ctx     context.Context
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used to report broken images.
func WithLogger(logger logging.Logger) Option {
	return func(c *Controller) {
		c.logger = logger.WithComponent("gallery")
	}
}

// WithContext sets the context passed to the logger.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		c.ctx = ctx
	}
}

// NewController creates a controller bound to surface and registers its
// navigation handlers on it.
func NewController(surface Surface, opts ...Option) *Controller {
	c := &Controller{
		images:  NewKeyedList[*Entry](nil, entryKey),
		zoom:    NewList(ZoomLevels()),
		surface: surface,
		logger:  logging.NewNopLogger(),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}

	surface.RegisterHandlers(Handlers{
		OnNext:     c.Next,
		OnPrevious: c.Previous,
		OnZoom:     c.SetNextZoom,
	})
	return c
}

// Initialize builds one entry per distinct URL, renders them and applies
// sel. A repeated URL is dropped, keeping its first position.
func (c *Controller) Initialize(urls []string, sel Selection) {
	actions := controllerActions{c}
	urls = scanner.Deduplicate(urls)
	entries := make([]*Entry, 0, len(urls))
	for _, u := range urls {
		entries = append(entries, NewEntry(u, actions, c.surface.NewElement))
	}

	c.images.SetItems(entries)
	c.surface.RenderImages(c.images.Items())
	c.surface.SetNoImagesWarning(c.images.Len() == 0)
	c.surface.SetZoomLevel(c.Zoom())

	switch sel.kind {
	case selectIndex:
		c.SetIndex(sel.index)
	case selectKey:
		c.SetByKey(sel.key)
	default:
		c.update(func() (*Entry, bool) { return c.images.Current() }, true)
	}
}

// Entries returns the entries that are still part of the gallery.
func (c *Controller) Entries() []*Entry {
	return c.images.Items()
}

// Current returns the current entry; false when the gallery is empty.
func (c *Controller) Current() (*Entry, bool) {
	return c.images.Current()
}

// CurrentIndex returns the position of the current entry.
func (c *Controller) CurrentIndex() int {
	return c.images.CurrentIndex()
}

// Zoom returns the active zoom level.
func (c *Controller) Zoom() ZoomLevel {
	level, _ := c.zoom.Current()
	return level
}

// Next shows the following image. With checkZoom set, the request is
// passed through untouched while zoomed to the maximum.
func (c *Controller) Next(checkZoom bool) Outcome {
	if checkZoom && c.isMaxZoom() {
		return PassThrough
	}
	c.update(c.images.Advance, false)
	return Consumed
}

// Previous shows the preceding image. See Next for checkZoom.
func (c *Controller) Previous(checkZoom bool) Outcome {
	if checkZoom && c.isMaxZoom() {
		return PassThrough
	}
	c.update(c.images.Retreat, false)
	return Consumed
}

// SetNextZoom advances the zoom cycle. The image cursor is not affected.
func (c *Controller) SetNextZoom() Outcome {
	level, _ := c.zoom.Advance()
	c.surface.SetZoomLevel(level)
	return Consumed
}

// SetIndex selects the image at index. No location entry is pushed when
// index is already current.
func (c *Controller) SetIndex(index int) {
	unchanged := c.images.CurrentIndex() == index
	c.update(func() (*Entry, bool) { return c.images.SetIndex(index) }, unchanged)
}

// SetByKey selects the image with the given URL. No location entry is
// pushed when key is already current, which keeps location changes from
// feeding back into the history.
func (c *Controller) SetByKey(key string) {
	current, ok := c.images.CurrentKey()
	unchanged := ok && current == key
	c.update(func() (*Entry, bool) {
		// images is keyed by URL, so key lookups never fail.
		e, found, _ := c.images.SetByKey(key)
		return e, found
	}, unchanged)
}

// LocationChanged reacts to an external location change such as history
// navigation by selecting the image named by the surface's location.
func (c *Controller) LocationChanged() {
	c.SetByKey(c.surface.CurrentLocationKey())
}

// InvalidImage drops an entry whose image failed to load. The entry's
// elements are detached. When the failing entry was on screen the fallback
// entry is shown; otherwise the shown entry stays. When no entries remain
// the empty-state warning is shown again.
func (c *Controller) InvalidImage(e *Entry) {
	if e == nil {
		return
	}
	shown, _ := c.images.Current()

	fallback, found, _ := c.images.Remove(e)
	if !found {
		return
	}
	c.logger.Warn(c.ctx, kerrors.ImageLoadFailure(e.URL(), nil), "Invalid or missing image", "url", e.URL())
	e.RemoveElements()

	if c.images.Len() == 0 {
		c.surface.SetNoImagesWarning(true)
		c.surface.SetSelectionText("")
		return
	}

	// Removing an entry before the cursor shifts the cursor onto another
	// image, so the shown entry is reselected by key.
	if shown != e {
		c.update(func() (*Entry, bool) { return c.selectEntry(shown) }, true)
		return
	}
	c.update(func() (*Entry, bool) { return c.selectEntry(fallback) }, false)
}

func (c *Controller) showEntry(e *Entry) {
	current, ok := c.images.CurrentKey()
	unchanged := ok && current == entryKey(e)
	c.update(func() (*Entry, bool) { return c.selectEntry(e) }, unchanged)
}

func (c *Controller) selectEntry(e *Entry) (*Entry, bool) {
	// Keyed by URL; the unsupported-operation error cannot occur.
	next, found, _ := c.images.SetCurrentItem(e)
	return next, found
}

// update hides the shown entry, applies move, shows the resulting entry and
// refreshes the info panel. The location is written unless skipLocation.
func (c *Controller) update(move func() (*Entry, bool), skipLocation bool) {
	if shown, ok := c.images.Current(); ok {
		shown.Hide()
	}
	e, ok := move()
	if !ok {
		c.surface.SetSelectionText(c.selectionText())
		return
	}
	e.Show()
	if !skipLocation {
		c.surface.PushLocation(entryKey(e))
	}
	c.surface.SetSelectionText(c.selectionText())
}

// selectionText renders "position/total - name" with the name escaped.
func (c *Controller) selectionText() string {
	e, ok := c.images.Current()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d/%d - %s", c.images.CurrentIndex()+1, c.images.Len(), html.EscapeString(e.Text()))
}

func (c *Controller) isMaxZoom() bool {
	return c.Zoom() == ZoomMax
}

// controllerActions is the capability an entry gets from its controller.
type controllerActions struct {
	c *Controller
}

func (a controllerActions) Activate() { a.c.SetNextZoom() }

func (a controllerActions) Select(e *Entry) { a.c.showEntry(e) }

func (a controllerActions) LoadFailed(e *Entry) { a.c.InvalidImage(e) }
