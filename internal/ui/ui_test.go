package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chalet/internal/favorites"
	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/testing/fake"
)

func sampleChalets() []models.Chalet {
	return []models.Chalet{
		{ID: "c1", Name: "Alpine Retreat", Location: "Chamonix", Bedrooms: 3, Guests: 6, Price: 180, LikeCount: 4,
			Images: []string{"https://img.test/c1-a.jpg", "https://img.test/c1-b.jpg"}, Amenities: []string{"Sauna"}},
		{ID: "c2", Name: "Pine Lodge", Location: "Zermatt", Bedrooms: 5, Guests: 10, Price: 320},
		{ID: "c3", Name: "Snow Nest", Location: "Chamonix Valley", Bedrooms: 1, Guests: 2},
		{ID: "c4", Name: "Glacier House", Location: "Verbier", Bedrooms: 4, Guests: 8, Price: 260},
		{ID: "c5", Name: "Larch Cabin", Location: "Saas-Fee", Bedrooms: 2, Guests: 4, Price: 140},
	}
}

type harness struct {
	model   *Model
	backend *fake.Backend
	store   *favorites.LocalStore
	opened  []string
}

func newHarness(t *testing.T, authenticated bool, liked ...string) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := &harness{
		backend: fake.NewBackend(sampleChalets()...),
		store:   favorites.NewLocalStore(favorites.NewMemoryCache(liked...), nil),
	}
	h.model = NewModel(ctx, Deps{
		Backend:        h.backend,
		Store:          h.store,
		Authenticated:  func() bool { return authenticated },
		PageSize:       3,
		ReconcileDelay: time.Hour,
		OpenURL: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
	})
	t.Cleanup(h.model.Close)

	h.model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	h.run(h.model.fetchChalets())
	return h
}

// run executes cmd synchronously and feeds its message back into the model.
func (h *harness) run(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	_, next := h.model.Update(cmd())
	return next
}

func (h *harness) press(keys string) tea.Cmd {
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	_, cmd := h.model.Update(msg)
	return cmd
}

// open selects the first list item and mounts its detail view.
func (h *harness) open(t *testing.T) {
	t.Helper()
	cmd := h.press("enter")
	if cmd == nil {
		t.Fatal("expected fetch command on enter")
	}
	h.run(cmd)
	if h.model.ctrl == nil {
		t.Fatal("expected controller to be mounted")
	}
}

func itemIDs(m *Model) []string {
	out := []string{}
	for _, it := range m.list.Items() {
		out = append(out, it.(chaletItem).chalet.ID)
	}
	return out
}

func TestCatalog(t *testing.T) {
	t.Run("first page is loaded", func(t *testing.T) {
		h := newHarness(t, true)
		got := itemIDs(h.model)
		if strings.Join(got, ",") != "c1,c2,c3" {
			t.Errorf("expected c1,c2,c3, got %v", got)
		}
		if h.model.page.TotalPages != 2 {
			t.Errorf("expected 2 pages, got %d", h.model.page.TotalPages)
		}
	})

	t.Run("next and previous page", func(t *testing.T) {
		h := newHarness(t, true)
		h.press("n")
		if got := itemIDs(h.model); strings.Join(got, ",") != "c4,c5" {
			t.Errorf("expected c4,c5 on page 2, got %v", got)
		}
		h.press("n")
		if h.model.page.Page != 2 {
			t.Errorf("expected to stay on last page, got %d", h.model.page.Page)
		}
		h.press("p")
		if h.model.page.Page != 1 {
			t.Errorf("expected page 1, got %d", h.model.page.Page)
		}
	})

	t.Run("search filters and resets page", func(t *testing.T) {
		h := newHarness(t, true)
		h.press("n")
		h.press("/")
		if !h.model.searching {
			t.Fatal("expected search mode")
		}
		h.press("chamonix")
		h.press("enter")

		if h.model.query != "chamonix" {
			t.Errorf("expected query chamonix, got %q", h.model.query)
		}
		if h.model.page.Page != 1 {
			t.Errorf("expected page reset to 1, got %d", h.model.page.Page)
		}
		if got := itemIDs(h.model); strings.Join(got, ",") != "c1,c3" {
			t.Errorf("expected c1,c3, got %v", got)
		}

		h.press("esc")
		if h.model.query != "" || len(h.model.list.Items()) != 3 {
			t.Errorf("expected esc to clear the search, got query %q", h.model.query)
		}
	})

	t.Run("q is typed while searching", func(t *testing.T) {
		h := newHarness(t, true)
		h.press("/")
		h.press("q")
		if h.model.unsubscribe == nil {
			t.Fatal("expected q to be typed, not quit")
		}
		if h.model.search.Value() != "q" {
			t.Errorf("expected search value q, got %q", h.model.search.Value())
		}
	})

	t.Run("fetch error is shown", func(t *testing.T) {
		h := newHarness(t, true)
		h.model.chalets = nil
		h.model.Update(chaletsFetchedMsg(nil, errors.New("backend down")))
		if !strings.Contains(h.model.View(), "backend down") {
			t.Errorf("expected error in view, got %q", h.model.View())
		}
	})

	t.Run("favorites view lists liked chalets", func(t *testing.T) {
		h := newHarness(t, true, "c4", "gone")
		h.press("f")
		if h.model.view != FavoritesView {
			t.Fatalf("expected favorites view, got %v", h.model.view)
		}
		var got []string
		for _, it := range h.model.favList.Items() {
			got = append(got, it.(chaletItem).chalet.ID)
		}
		if strings.Join(got, ",") != "c4,gone" {
			t.Errorf("expected c4,gone, got %v", got)
		}
		h.press("esc")
		if h.model.view != ListView {
			t.Errorf("expected list view, got %v", h.model.view)
		}
	})
}

func TestDetail(t *testing.T) {
	t.Run("toggle is confirmed", func(t *testing.T) {
		h := newHarness(t, true)
		h.open(t)

		cmd := h.press("l")
		if cmd == nil {
			t.Fatal("expected toggle command")
		}
		state := h.model.ctrl.State()
		if !state.IsLiked || state.LikeCount != 5 {
			t.Errorf("expected optimistic like with count 5, got %+v", state)
		}

		h.run(cmd)
		if !h.backend.IsFavorite("c1") {
			t.Error("expected backend to record the favorite")
		}
		if !h.store.Read(context.Background()).Has("c1") {
			t.Error("expected store to contain c1")
		}
		if !h.model.liked.Has("c1") {
			t.Error("expected model to see c1 as liked")
		}
		if !strings.Contains(h.model.status, "Favorites updated") {
			t.Errorf("expected confirmation status, got %q", h.model.status)
		}
		if h.model.ctrl.State().IsLikeLoading {
			t.Error("expected loading to clear")
		}
	})

	t.Run("failed toggle rolls back the view", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.FavoriteErr = errors.New("connection refused")
		h.open(t)

		h.run(h.press("l"))
		state := h.model.ctrl.State()
		if state.IsLiked || state.LikeCount != 4 {
			t.Errorf("expected rollback to unliked with count 4, got %+v", state)
		}
		if !strings.Contains(h.model.status, "Could not update") {
			t.Errorf("expected failure status, got %q", h.model.status)
		}
	})

	t.Run("login required banner", func(t *testing.T) {
		h := newHarness(t, false)
		h.open(t)

		h.run(h.press("l"))
		if h.backend.Calls("AddFavorite") != 0 {
			t.Error("expected no backend call when signed out")
		}
		if !strings.Contains(h.model.View(), "Sign in to save favorites") {
			t.Error("expected login banner")
		}

		h.press("x")
		if strings.Contains(h.model.View(), "Sign in to save favorites") {
			t.Error("expected banner to be dismissed")
		}
	})

	t.Run("esc closes the controller", func(t *testing.T) {
		h := newHarness(t, true)
		h.open(t)
		ctrl := h.model.ctrl

		h.press("esc")
		if !ctrl.Closed() {
			t.Error("expected controller to be closed")
		}
		if h.model.ctrl != nil || h.model.detail != nil {
			t.Error("expected detail state to be cleared")
		}
		if h.model.view != ListView {
			t.Errorf("expected list view, got %v", h.model.view)
		}
	})

	t.Run("stale fetch is ignored", func(t *testing.T) {
		h := newHarness(t, true)
		h.press("enter")
		h.press("esc")
		h.press("j")
		h.press("enter")
		if h.model.detail == nil || h.model.detail.ID != "c2" {
			t.Fatalf("expected c2 detail, got %+v", h.model.detail)
		}

		c1 := sampleChalets()[0]
		h.model.Update(chaletFetchedMsg(&c1, nil))
		if h.model.ctrl != nil {
			t.Error("expected stale fetch not to mount a controller")
		}
	})

	t.Run("fetch failure falls back to the listing", func(t *testing.T) {
		h := newHarness(t, true)
		h.backend.ChaletErrs = map[string]error{"c1": errors.New("timeout")}
		h.open(t)
		if h.model.detail.Name != "Alpine Retreat" {
			t.Errorf("expected listing data, got %+v", h.model.detail)
		}
		if !strings.Contains(h.model.status, "cached listing") {
			t.Errorf("expected fallback status, got %q", h.model.status)
		}
	})

	t.Run("gallery navigation and open", func(t *testing.T) {
		h := newHarness(t, true)
		h.open(t)

		if !strings.Contains(h.model.View(), "Image 1/2") {
			t.Errorf("expected first image, got %q", h.model.View())
		}
		h.press("]")
		if !strings.Contains(h.model.View(), "Image 2/2") {
			t.Error("expected second image")
		}
		h.press("]")
		if !strings.Contains(h.model.View(), "Image 1/2") {
			t.Error("expected gallery to wrap")
		}

		h.run(h.press("o"))
		if len(h.opened) != 1 || h.opened[0] != "https://img.test/c1-a.jpg" {
			t.Errorf("expected current image to be opened, got %v", h.opened)
		}
	})

	t.Run("open failure is reported", func(t *testing.T) {
		h := newHarness(t, true)
		h.open(t)
		h.model.Update(openedMsg(errors.New("no browser")))
		if !strings.Contains(h.model.status, "no browser") {
			t.Errorf("expected error status, got %q", h.model.status)
		}
	})
}

func TestRefresh(t *testing.T) {
	t.Run("external change updates hearts", func(t *testing.T) {
		h := newHarness(t, true)
		ctx := context.Background()

		if err := h.store.Write(ctx, favorites.NewSet("c2")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		h.store.Publish(favorites.Event{ChaletID: "c2", IsLiked: true})

		next := h.run(h.model.waitForRefresh())
		if next == nil {
			t.Error("expected refresh to be re-armed")
		}
		if !h.model.liked.Has("c2") {
			t.Error("expected model to see c2 as liked")
		}
		item := h.model.list.Items()[1].(chaletItem)
		if !item.liked || !strings.Contains(item.Title(), "♥") {
			t.Errorf("expected filled heart for c2, got %q", item.Title())
		}
	})

	t.Run("open detail follows external change", func(t *testing.T) {
		h := newHarness(t, true)
		h.open(t)

		h.store.Publish(favorites.Event{ChaletID: "c1", IsLiked: true})
		if !h.model.ctrl.State().IsLiked {
			t.Error("expected controller to apply the event")
		}
		if h.model.ctrl.State().LikeCount != 4 {
			t.Error("expected like count to be unchanged by events")
		}
	})

	t.Run("quit releases the subscription", func(t *testing.T) {
		h := newHarness(t, true)
		h.open(t)
		ctrl := h.model.ctrl

		cmd := h.press("q")
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		if !ctrl.Closed() || h.model.unsubscribe != nil {
			t.Error("expected controller and subscription to be released")
		}
	})
}
