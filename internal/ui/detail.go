package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chalet/internal/favorites"
	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/shared"
)

// openDetail switches to the detail view for c and loads its full record.
// The like controller is mounted once the record arrives.
func (m *Model) openDetail(c models.Chalet, from ViewState) tea.Cmd {
	m.unmount()
	m.view = DetailView
	m.returnTo = from
	m.detail = &c
	m.gallery = models.NewGallery(c.Images)
	m.loading = true
	m.status = ""
	return m.fetchChalet(c.ID)
}

// mount attaches a like controller for c and schedules its reconciliation.
func (m *Model) mount(c models.Chalet) {
	m.loading = false
	m.gallery = models.NewGallery(c.Images)
	m.ctrl = favorites.NewController(m.ctx, favorites.ControllerOpts{
		ChaletID:        c.ID,
		LikeCount:       c.LikeCount,
		Store:           m.deps.Store,
		Backend:         m.deps.Backend,
		IsAuthenticated: m.deps.Authenticated,
		OnChange:        func(favorites.ViewState) { m.ping() },
		Logger:          m.logger,
	})
	m.ctrl.ScheduleReconcile(m.ctx, m.deps.ReconcileDelay)
}

// unmount releases the like controller. A toggle still in flight completes detached.
func (m *Model) unmount() {
	if m.ctrl != nil {
		m.ctrl.Close()
		m.ctrl = nil
	}
	m.detail = nil
	m.gallery = nil
	m.loading = false
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.unmount()
		m.view = m.returnTo
		m.status = ""
		m.liked = m.deps.Store.Read(m.ctx)
		m.rebuildLists()
		return m, nil

	case key.Matches(msg, m.keys.like):
		if m.ctrl == nil {
			return m, nil
		}
		id := m.ctrl.ChaletID()
		done := m.ctrl.Toggle(m.ctx)
		m.status = ""
		return m, func() tea.Msg {
			return toggleDoneMsg(id, <-done)
		}

	case key.Matches(msg, m.keys.dismiss):
		if m.ctrl != nil {
			m.ctrl.DismissLogin()
		}
		return m, nil

	case key.Matches(msg, m.keys.nextImage):
		if m.gallery != nil {
			m.gallery.Next()
		}
		return m, nil

	case key.Matches(msg, m.keys.prevImage):
		if m.gallery != nil {
			m.gallery.Prev()
		}
		return m, nil

	case key.Matches(msg, m.keys.open):
		if m.gallery == nil || m.gallery.Current() == "" {
			return m, nil
		}
		url := m.gallery.Current()
		open := m.deps.OpenURL
		return m, func() tea.Msg {
			return openedMsg(open(url))
		}
	}
	return m, nil
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return ""
	}
	c := m.detail
	var b strings.Builder

	name := c.Name
	if name == "" {
		name = fmt.Sprintf("Chalet %s", c.ID)
	}
	b.WriteString(styles.title.Render(name))
	b.WriteString("\n")

	if m.ctrl != nil {
		state := m.ctrl.State()
		like := fmt.Sprintf("%s %d likes", styles.Heart(state.IsLiked), state.LikeCount)
		if state.IsLikeLoading {
			like += styles.help.Render("  saving...")
		}
		b.WriteString(like)
		b.WriteString("\n")
		if state.LoginRequired {
			b.WriteString("\n")
			b.WriteString(styles.banner.Render("Sign in to save favorites: run `chalet auth login` (x to dismiss)"))
			b.WriteString("\n")
		}
	} else if m.loading {
		b.WriteString(styles.help.Render("Loading..."))
		b.WriteString("\n")
	}

	facts := []string{}
	if c.Location != "" {
		facts = append(facts, c.Location)
	}
	facts = append(facts,
		fmt.Sprintf("%d bedrooms", c.Bedrooms),
		fmt.Sprintf("%d guests", c.Guests),
		shared.FormatPrice(c.Price),
	)
	b.WriteString("\n")
	b.WriteString(strings.Join(facts, " • "))
	b.WriteString("\n")

	if c.Description != "" {
		b.WriteString("\n")
		b.WriteString(c.Description)
		b.WriteString("\n")
	}

	if len(c.Amenities) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render("Amenities: "))
		b.WriteString(strings.Join(c.Amenities, ", "))
		b.WriteString("\n")
	}

	if m.gallery != nil && m.gallery.Len() > 0 {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Image %d/%d: %s", m.gallery.Index()+1, m.gallery.Len(), m.gallery.Current()))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.like, m.keys.prevImage, m.keys.nextImage, m.keys.open, m.keys.back, m.keys.quit}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}
