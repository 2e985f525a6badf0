package gallery

// Outcome reports what a handler did with an event.
type Outcome int

const (
	// Consumed means the event was handled and the surface's default
	// behavior must be suppressed.
	Consumed Outcome = iota
	// PassThrough lets the default behavior proceed.
	PassThrough
)

// NavigateFunc handles a next or previous request. checkZoom asks the
// handler to ignore the request while zoomed to the maximum.
type NavigateFunc func(checkZoom bool) Outcome

// Handlers are the upward events a surface reports.
type Handlers struct {
	OnNext     NavigateFunc
	OnPrevious NavigateFunc
	OnZoom     func() Outcome
}

// Surface is the view layer. It holds no gallery state of its own: it
// reflects what the controller tells it and reports raw UI events upward.
type Surface interface {
	// RegisterHandlers adds handlers. Several sets may be registered; they
	// run in registration order.
	RegisterHandlers(h Handlers)
	// NewElement creates the visual representation of an entry.
	NewElement(e *Entry) Element
	// RenderImages replaces the rendered image set, old content first.
	RenderImages(entries []*Entry)
	// SetSelectionText updates the info panel. text is markup and is
	// already escaped.
	SetSelectionText(text string)
	// SetZoomLevel swaps the zoom marker.
	SetZoomLevel(level ZoomLevel)
	// PushLocation records key as a new navigable location entry.
	PushLocation(key string)
	// CurrentLocationKey reads the current location fragment.
	CurrentLocationKey() string
	SetNoImagesWarning(visible bool)
}

// Dispatcher fans events out to registered handlers. Surfaces embed it to
// implement RegisterHandlers.
type Dispatcher struct {
	next     []NavigateFunc
	previous []NavigateFunc
	zoom     []func() Outcome
}

// RegisterHandlers implements Surface.RegisterHandlers. Nil fields are skipped.
func (d *Dispatcher) RegisterHandlers(h Handlers) {
	if h.OnNext != nil {
		d.next = append(d.next, h.OnNext)
	}
	if h.OnPrevious != nil {
		d.previous = append(d.previous, h.OnPrevious)
	}
	if h.OnZoom != nil {
		d.zoom = append(d.zoom, h.OnZoom)
	}
}

// Next invokes every next handler. The result is PassThrough only when all
// handlers passed.
func (d *Dispatcher) Next(checkZoom bool) Outcome {
	return callNavigate(d.next, checkZoom)
}

// Previous invokes every previous handler.
func (d *Dispatcher) Previous(checkZoom bool) Outcome {
	return callNavigate(d.previous, checkZoom)
}

// Zoom invokes every zoom handler.
func (d *Dispatcher) Zoom() Outcome {
	out := PassThrough
	for _, h := range d.zoom {
		if h() != PassThrough {
			out = Consumed
		}
	}
	return out
}

func callNavigate(handlers []NavigateFunc, checkZoom bool) Outcome {
	out := PassThrough
	for _, h := range handlers {
		if h(checkZoom) != PassThrough {
			out = Consumed
		}
	}
	return out
}

// Key is a key press as seen by a surface.
type Key struct {
	Name                   string
	Ctrl, Shift, Alt, Meta bool
}

// Key names understood by HandleKey.
const (
	KeySpace = "space"
	KeyLeft  = "left"
	KeyRight = "right"
)

// HandleKey applies the gallery key bindings: space toggles the sidebar,
// j and k move without the zoom check, the arrow keys move honoring it and
// z cycles the zoom. Presses with a modifier and unbound keys pass through.
func (d *Dispatcher) HandleKey(k Key, toggleSidebar func()) Outcome {
	if k.Ctrl || k.Shift || k.Alt || k.Meta {
		return PassThrough
	}
	switch k.Name {
	case KeySpace:
		if toggleSidebar != nil {
			toggleSidebar()
		}
		return Consumed
	case "j":
		return d.Next(false)
	case "k":
		return d.Previous(false)
	case KeyRight:
		return d.Next(true)
	case KeyLeft:
		return d.Previous(true)
	case "z":
		return d.Zoom()
	default:
		return PassThrough
	}
}
