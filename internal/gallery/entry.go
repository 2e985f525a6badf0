package gallery

import (
	"net/url"
	"strings"
)

// Element is the visual representation of one entry. Surfaces create
// elements; entries drive them.
type Element interface {
	// Load starts fetching src. Completion is asynchronous; a failure must
	// be reported back through Entry.LoadFailed on the owning event loop.
	Load(src string)
	SetVisible(visible bool)
	// Detach removes the element permanently. An in-flight load is abandoned.
	Detach()
}

// ElementFactory creates the element for a new entry.
type ElementFactory func(e *Entry) Element

// EntryActions are the operations an entry may invoke on its owner.
type EntryActions interface {
	// Activate is the image click, which advances the zoom.
	Activate()
	// Select is the link click, which makes the entry current.
	Select(e *Entry)
	// LoadFailed is invoked at most once, when the image fails to load.
	LoadFailed(e *Entry)
}

// Entry is one gallery image with lazy-load and visibility state.
type Entry struct {
	url     string
	text    string
	element Element
	actions EntryActions

	loadedSrc string
	visible   bool
	failed    bool
	removed   bool
}

// NewEntry creates an entry for src. The element is created by newElement.
func NewEntry(src string, actions EntryActions, newElement ElementFactory) *Entry {
	e := &Entry{
		url:     src,
		text:    DisplayText(src),
		actions: actions,
	}
	if newElement != nil {
		e.element = newElement(e)
	}
	return e
}

// URL returns the source identifier; it is also the entry's key.
func (e *Entry) URL() string { return e.url }

// Text returns the display text derived from the URL.
func (e *Entry) Text() string { return e.text }

// Loaded reports whether the image source has been assigned.
func (e *Entry) Loaded() bool { return e.loadedSrc == e.url }

// Visible reports whether the entry is currently shown.
func (e *Entry) Visible() bool { return e.visible }

// Removed reports whether the entry's elements were detached.
func (e *Entry) Removed() bool { return e.removed }

// Element returns the entry's visual representation.
func (e *Entry) Element() Element { return e.element }

// Show assigns the source on first use and makes the entry visible. Calling
// Show again without a URL change does not reload. A removed entry stays hidden.
func (e *Entry) Show() {
	if e.removed {
		return
	}
	if e.loadedSrc != e.url {
		e.loadedSrc = e.url
		if e.element != nil {
			e.element.Load(e.url)
		}
	}
	e.visible = true
	if e.element != nil {
		e.element.SetVisible(true)
	}
}

// Hide marks the entry as not visible. Loaded data is kept.
func (e *Entry) Hide() {
	e.visible = false
	if e.element != nil && !e.removed {
		e.element.SetVisible(false)
	}
}

// Activate forwards an image click to the owner.
func (e *Entry) Activate() {
	if e.actions != nil && !e.removed {
		e.actions.Activate()
	}
}

// Select forwards a link click to the owner.
func (e *Entry) Select() {
	if e.actions != nil && !e.removed {
		e.actions.Select(e)
	}
}

// LoadFailed reports a load error. The owner is notified only the first time.
func (e *Entry) LoadFailed() {
	if e.failed {
		return
	}
	e.failed = true
	if e.actions != nil {
		e.actions.LoadFailed(e)
	}
}

// RemoveElements detaches the entry's visual representation for good.
func (e *Entry) RemoveElements() {
	if e.removed {
		return
	}
	e.removed = true
	e.visible = false
	if e.element != nil {
		e.element.Detach()
	}
}

// DisplayText returns the URL-decoded last path segment of src. Segments
// that are not valid escapes are returned as is.
func DisplayText(src string) string {
	name := src[strings.LastIndex(src, "/")+1:]
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// entryKey is the key function of the image list.
func entryKey(e *Entry) string {
	return e.url
}
