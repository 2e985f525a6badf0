package gallery

// fakeElement records what an entry asked of it.
type fakeElement struct {
	loads    []string
	visible  bool
	detached int
}

func (f *fakeElement) Load(src string)         { f.loads = append(f.loads, src) }
func (f *fakeElement) SetVisible(visible bool) { f.visible = visible }

func (f *fakeElement) Detach() {
	f.detached++
	f.visible = false
}

// fakeSurface is an in-memory Surface with a browser-like location history.
type fakeSurface struct {
	Dispatcher

	elements  map[string]*fakeElement
	rendered  [][]string
	text      string
	zoom      []ZoomLevel
	locations []string
	fragment  string
	warnings  []bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{elements: map[string]*fakeElement{}}
}

func (s *fakeSurface) NewElement(e *Entry) Element {
	el := &fakeElement{}
	s.elements[e.URL()] = el
	return el
}

func (s *fakeSurface) RenderImages(entries []*Entry) {
	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		urls = append(urls, e.URL())
	}
	s.rendered = append(s.rendered, urls)
}

func (s *fakeSurface) SetSelectionText(text string)    { s.text = text }
func (s *fakeSurface) SetZoomLevel(level ZoomLevel)    { s.zoom = append(s.zoom, level) }
func (s *fakeSurface) CurrentLocationKey() string      { return s.fragment }
func (s *fakeSurface) SetNoImagesWarning(visible bool) { s.warnings = append(s.warnings, visible) }

func (s *fakeSurface) PushLocation(key string) {
	s.locations = append(s.locations, key)
	s.fragment = key
}

func (s *fakeSurface) lastWarning() bool {
	if len(s.warnings) == 0 {
		return false
	}
	return s.warnings[len(s.warnings)-1]
}

func (s *fakeSurface) visibleURLs() []string {
	var out []string
	for url, el := range s.elements {
		if el.visible {
			out = append(out, url)
		}
	}
	return out
}

// recordingActions captures calls made by entries.
type recordingActions struct {
	activated int
	selected  []*Entry
	failed    []*Entry
}

func (r *recordingActions) Activate()           { r.activated++ }
func (r *recordingActions) Select(e *Entry)     { r.selected = append(r.selected, e) }
func (r *recordingActions) LoadFailed(e *Entry) { r.failed = append(r.failed, e) }
