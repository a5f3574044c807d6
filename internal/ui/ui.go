package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/chalet/internal/favorites"
	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/services"
	"github.com/desertthunder/chalet/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	FavoritesView
	DetailView
)

// Deps are the collaborators the TUI needs.
type Deps struct {
	Backend        services.Backend
	Store          favorites.Store
	Authenticated  func() bool
	PageSize       int
	ReconcileDelay time.Duration
	OpenURL        func(url string) error
	Logger         *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	deps   Deps
	logger *log.Logger

	view     ViewState
	returnTo ViewState
	width    int
	height   int

	chalets   []models.Chalet
	liked     favorites.Set
	query     string
	page      tasks.PageInfo
	search    textinput.Model
	searching bool
	list      list.Model
	favList   list.Model

	detail  *models.Chalet
	gallery *models.Gallery
	ctrl    *favorites.Controller
	loading bool

	status string
	err    error

	refresh     chan struct{}
	unsubscribe func()

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
//
// The model subscribes to deps.Store immediately; [Model.Close] releases the subscription.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.PageSize <= 0 {
		deps.PageSize = tasks.DefaultPerPage
	}
	if deps.Authenticated == nil {
		deps.Authenticated = func() bool { return false }
	}
	if deps.OpenURL == nil {
		deps.OpenURL = func(string) error { return nil }
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ti := textinput.New()
	ti.Placeholder = "Search by name, location, or description..."
	ti.CharLimit = 80

	m := &Model{
		ctx:     ctx,
		deps:    deps,
		logger:  logger,
		view:    ListView,
		search:  ti,
		refresh: make(chan struct{}, 1),
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.list = newChaletList("Chalets")
	m.favList = newChaletList("Favorites")
	m.liked = deps.Store.Read(ctx)
	m.unsubscribe = deps.Store.Subscribe(func(favorites.Event) { m.ping() })
	m.page = tasks.Paginate(0, 1, deps.PageSize)
	return m
}

func newChaletList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

// ping marks the rendered favorite state as stale. It never blocks; pending pings coalesce.
func (m *Model) ping() {
	select {
	case m.refresh <- struct{}{}:
	default:
	}
}

// Close unmounts the detail view and releases the store subscription.
func (m *Model) Close() {
	m.unmount()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Init initializes the TUI by fetching the catalog.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchChalets(), m.waitForRefresh())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		m.favList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && !(m.searching && msg.String() == "q") {
			m.Close()
			return m, tea.Quit
		}
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case FavoritesView:
			return m.handleFavoritesKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgChaletsFetched:
		data := msg.data.(chaletsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.chalets = data.chalets
		m.rebuildLists()
		return m, nil

	case MsgChaletFetched:
		data := msg.data.(chaletFetched)
		if m.view != DetailView || m.detail == nil || m.ctrl != nil {
			return m, nil
		}
		if data.chalet != nil && data.chalet.ID != m.detail.ID {
			return m, nil
		}
		if data.err != nil {
			m.status = styles.warn.Render(fmt.Sprintf("Showing cached listing: %v", data.err))
		} else if data.chalet != nil {
			m.detail = data.chalet
		}
		m.mount(*m.detail)
		return m, nil

	case MsgToggleDone:
		data := msg.data.(toggleDone)
		m.liked = m.deps.Store.Read(m.ctx)
		m.rebuildLists()
		if m.detail != nil && m.detail.ID == data.chaletID {
			m.status = toggleStatus(data.result)
		}
		return m, nil

	case MsgRefresh:
		m.liked = m.deps.Store.Read(m.ctx)
		m.rebuildLists()
		return m, m.waitForRefresh()

	case MsgOpened:
		if err, _ := msg.data.(error); err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Could not open image: %v", err))
		}
		return m, nil
	}
	return m, nil
}

func toggleStatus(r favorites.Result) string {
	switch r {
	case favorites.ResultConfirmed:
		return styles.ok.Render("✓ Favorites updated")
	case favorites.ResultRolledBack:
		return styles.err.Render("✗ Could not update favorites, try again")
	default:
		return ""
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == ListView && len(m.chalets) == 0 {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ListView:
		return m.renderList()
	case FavoritesView:
		return m.renderFavorites()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ListView:
		if m.searching {
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}
		m.list, cmd = m.list.Update(msg)
	case FavoritesView:
		m.favList, cmd = m.favList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchChalets() tea.Cmd {
	return func() tea.Msg {
		chalets, err := m.deps.Backend.ListChalets(m.ctx)
		return chaletsFetchedMsg(chalets, err)
	}
}

func (m *Model) fetchChalet(id string) tea.Cmd {
	return func() tea.Msg {
		chalet, err := m.deps.Backend.GetChalet(m.ctx, id)
		return chaletFetchedMsg(chalet, err)
	}
}

func (m *Model) waitForRefresh() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.refresh:
			return refreshMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}
