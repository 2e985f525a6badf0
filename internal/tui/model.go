package tui

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kuvia/kuvia/internal/gallery"
	"github.com/kuvia/kuvia/internal/logging"
)

const (
	sidebarWidth  = 32
	defaultWidth  = 80
	defaultHeight = 24
)

// Options configures a browse session.
type Options struct {
	URLs      []string
	Selection gallery.Selection
	Loader    Loader
	Logger    logging.Logger
}

// Model is the bubbletea model of kuvia browse.
type Model struct {
	surface    *Surface
	controller *gallery.Controller
	logger     logging.Logger
	ctx        context.Context

	keys   keyMap
	help   help.Model
	cursor int
	width  int
	height int
}

// NewModel builds the surface and controller and initializes the gallery.
// Image loads requested during initialization start with Init.
func NewModel(ctx context.Context, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	loader := opts.Loader
	if loader == nil {
		loader = NewSourceLoader(nil, ".")
	}

	surface := NewSurface(ctx, loader)
	controller := gallery.NewController(surface,
		gallery.WithLogger(logger),
		gallery.WithContext(ctx))
	controller.Initialize(opts.URLs, opts.Selection)

	return &Model{
		surface:    surface,
		controller: controller,
		logger:     logger.WithComponent("tui"),
		ctx:        ctx,
		keys:       newKeyMap(),
		help:       help.New(),
		width:      defaultWidth,
		height:     defaultHeight,
	}
}

// Surface returns the display surface.
func (m *Model) Surface() *Surface { return m.surface }

// Controller returns the gallery controller.
func (m *Model) Controller() *gallery.Controller { return m.controller }

func (m *Model) Init() tea.Cmd {
	return m.surface.drain()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case loadedMsg:
		if m.surface.applyLoad(msg) {
			m.logger.Debug(m.ctx, "Image failed to load", "url", msg.src, "error", msg.err.Error())
			msg.entry.LoadFailed()
		}

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}

	return m, tea.Batch(cmd, m.surface.drain())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.Back):
		if m.surface.History().Back() {
			m.controller.LocationChanged()
		}
		return nil
	case key.Matches(msg, m.keys.Forward):
		if m.surface.History().Forward() {
			m.controller.LocationChanged()
		}
		return nil
	case key.Matches(msg, m.keys.Open):
		m.open()
		return nil
	}

	if m.surface.SidebarOpen() {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-1)
			return nil
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(1)
			return nil
		}
	}

	m.surface.HandleKey(galleryKey(msg), m.toggleSidebar)
	return nil
}

func (m *Model) toggleSidebar() {
	m.surface.ToggleSidebar()
	if m.surface.SidebarOpen() {
		m.syncCursor()
	}
}

// open selects the entry under the list cursor while the list is shown and
// otherwise activates the shown image.
func (m *Model) open() {
	if m.surface.SidebarOpen() {
		listed := m.surface.Listed()
		if m.cursor >= 0 && m.cursor < len(listed) {
			listed[m.cursor].Select()
		}
		return
	}
	if e, ok := m.surface.Shown(); ok {
		e.Activate()
	}
}

func (m *Model) moveCursor(delta int) {
	n := len(m.surface.Listed())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
}

// syncCursor puts the list cursor on the shown entry.
func (m *Model) syncCursor() {
	shown, ok := m.surface.Shown()
	if !ok {
		m.cursor = 0
		return
	}
	for i, e := range m.surface.Listed() {
		if e == shown {
			m.cursor = i
			return
		}
	}
}

func (m *Model) View() string {
	helpView := m.help.View(m.keys)
	header := m.headerView()

	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(helpView), 1)
	areaWidth := m.width

	var sidebar string
	if m.surface.SidebarOpen() {
		sidebar = m.sidebarView(bodyHeight)
		areaWidth = max(m.width-lipgloss.Width(sidebar), 1)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, m.imageView(areaWidth, bodyHeight))
	return lipgloss.JoinVertical(lipgloss.Left, header, body, helpView)
}

func (m *Model) headerView() string {
	info := html.UnescapeString(m.surface.SelectionText())
	if info == "" {
		info = "kuvia"
	}

	var zoom []string
	for _, level := range gallery.ZoomLevels() {
		style := styles.Zoom
		if level == m.surface.ZoomLevel() {
			style = styles.ZoomOn
		}
		zoom = append(zoom, style.Render(string(level)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Info.Render(info),
		"  ",
		strings.Join(zoom, styles.Muted.Render("/")))
}

func (m *Model) sidebarView(height int) string {
	listed := m.surface.Listed()
	shown, _ := m.surface.Shown()

	inner := max(height-2, 1)
	start := 0
	if m.cursor >= inner {
		start = m.cursor - inner + 1
	}

	var lines []string
	for i := start; i < len(listed) && i < start+inner; i++ {
		e := listed[i]
		text := truncate(e.Text(), sidebarWidth-4)
		style := styles.Item
		if e == shown {
			style = styles.Selected
		}
		if i == m.cursor {
			style = style.Inherit(styles.Cursor)
		}
		lines = append(lines, style.Render(text))
	}
	if len(lines) == 0 {
		lines = append(lines, styles.Muted.Render("(empty)"))
	}

	return styles.Sidebar.
		Width(sidebarWidth - 2).
		Height(inner).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) imageView(width, height int) string {
	area := styles.ImageArea.Width(width).Height(height)

	if m.surface.NoImagesWarning() {
		return area.Render(styles.Warning.Render("No images found."))
	}

	e, ok := m.surface.Shown()
	if !ok {
		return area.Render("")
	}
	el := m.surface.element(e)
	switch {
	case el == nil:
		return area.Render("")
	case el.loading:
		return area.Render(styles.Muted.Render(fmt.Sprintf("Loading %s…", e.Text())))
	case el.err != nil:
		return area.Render(styles.Warning.Render(el.err.Error()))
	case el.img != nil:
		return area.Render(RenderPreview(el.img, width, height, m.surface.ZoomLevel()))
	default:
		return area.Render("")
	}
}

func truncate(s string, n int) string {
	if n <= 0 || lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > n {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// Run starts the terminal program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options, programOpts ...tea.ProgramOption) error {
	model := NewModel(ctx, opts)
	programOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, programOpts...)

	if _, err := tea.NewProgram(model, programOpts...).Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}
