package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/tasks"
)

// visible returns the chalets matching the current search.
func (m *Model) visible() []models.Chalet {
	return tasks.Search(m.chalets, tasks.Filter{Query: m.query})
}

// favoriteChalets returns the liked chalets, in catalog order, followed by liked ids missing from the catalog.
func (m *Model) favoriteChalets() []models.Chalet {
	out := []models.Chalet{}
	seen := map[string]bool{}
	for _, c := range m.chalets {
		if m.liked.Has(c.ID) {
			out = append(out, c)
			seen[c.ID] = true
		}
	}
	for _, id := range m.liked.IDs() {
		if !seen[id] {
			out = append(out, models.Chalet{ID: id})
		}
	}
	return out
}

// rebuildLists recomputes the current page and list items, keeping the cursor where possible.
func (m *Model) rebuildLists() {
	matched := m.visible()
	m.page = tasks.Paginate(len(matched), m.page.Page, m.deps.PageSize)

	cursor := m.list.Index()
	m.list.SetItems(chaletItems(tasks.PageSlice(matched, m.page), m.liked.Has))
	if cursor < len(m.list.Items()) {
		m.list.Select(cursor)
	}

	favCursor := m.favList.Index()
	m.favList.SetItems(chaletItems(m.favoriteChalets(), m.liked.Has))
	if favCursor < len(m.favList.Items()) {
		m.favList.Select(favCursor)
	}
}

func (m *Model) setPage(page int) {
	m.page.Page = page
	m.rebuildLists()
	m.list.Select(0)
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.search):
		m.searching = true
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		m.search.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.next):
		if m.page.HasNext {
			m.setPage(m.page.Page + 1)
		}
		return m, nil
	case key.Matches(msg, m.keys.prev):
		if m.page.HasPrev {
			m.setPage(m.page.Page - 1)
		}
		return m, nil
	case key.Matches(msg, m.keys.favorites):
		m.view = FavoritesView
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.back):
		if m.query != "" {
			m.query = ""
			m.setPage(1)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.list.SelectedItem().(chaletItem); ok {
			return m, m.openDetail(item.chalet, ListView)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		m.query = strings.TrimSpace(m.search.Value())
		m.searching = false
		m.search.Blur()
		m.setPage(1)
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleFavoritesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.favorites):
		m.view = ListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.favList.SelectedItem().(chaletItem); ok {
			return m, m.openDetail(item.chalet, FavoritesView)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.favList, cmd = m.favList.Update(msg)
	return m, cmd
}

// pager renders the compact page strip, e.g. "‹ 1 … 4 [5] 6 … 12 ›".
func pager(info tasks.PageInfo) string {
	var b strings.Builder
	if info.HasPrev {
		b.WriteString("‹ ")
	}
	for i, n := range tasks.PageNumbers(info.Page, info.TotalPages, 1) {
		if i > 0 {
			b.WriteString(" ")
		}
		switch n {
		case 0:
			b.WriteString("…")
		case info.Page:
			b.WriteString(fmt.Sprintf("[%d]", n))
		default:
			b.WriteString(fmt.Sprintf("%d", n))
		}
	}
	if info.HasNext {
		b.WriteString(" ›")
	}
	return b.String()
}

func (m *Model) renderList() string {
	var b strings.Builder

	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	} else if m.query != "" {
		b.WriteString(styles.help.Render(fmt.Sprintf("Results for %q (esc to clear)", m.query)))
		b.WriteString("\n\n")
	}

	if len(m.list.Items()) == 0 {
		b.WriteString(styles.title.Render("Chalets"))
		b.WriteString("\n")
		if m.query != "" {
			b.WriteString(styles.warn.Render("No chalets match your search."))
		} else {
			b.WriteString(styles.help.Render("Loading chalets..."))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(m.list.View())
		b.WriteString("\n")
		b.WriteString(styles.help.Render(fmt.Sprintf("%s  (%d chalets)", pager(m.page), len(m.visible()))))
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.search, m.keys.next, m.keys.prev, m.keys.favorites, m.keys.quit}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderFavorites() string {
	var b strings.Builder

	if len(m.favList.Items()) == 0 {
		b.WriteString(styles.title.Render("Favorites"))
		b.WriteString("\n")
		b.WriteString(styles.help.Render("No favorites yet. Open a chalet and press l to like it."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.favList.View())
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}
