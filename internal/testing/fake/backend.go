// package fake provides an in-memory marketplace backend for tests.
package fake

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/services"
	"github.com/desertthunder/chalet/internal/shared"
)

// Backend is an in-memory [services.Backend].
//
// Favorite mutations update Favorites unless AddResult/RemoveResult or FavoriteErr override the outcome.
// When Gate is non-nil, favorite mutations block until a value is received from it (or it is closed).
type Backend struct {
	mu sync.Mutex

	Chalets   []models.Chalet
	Favorites map[string]bool
	User      *models.User
	Stats     *models.DashboardStats
	Password  string
	Inquiries []models.Inquiry

	AddResult    *services.FavoriteResult
	RemoveResult *services.FavoriteResult
	FavoriteErr  error
	CheckErr     error
	CheckStatus  *services.FavoriteStatus
	ListErr      error
	ChaletErrs   map[string]error
	Gate         chan struct{}

	calls map[string]int
}

// NewBackend creates a [Backend] serving chalets.
func NewBackend(chalets ...models.Chalet) *Backend {
	return &Backend{
		Chalets:   chalets,
		Favorites: map[string]bool{},
		calls:     map[string]int{},
	}
}

// Calls returns how many times op was invoked.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// IsFavorite reports the server-side favorite state.
func (b *Backend) IsFavorite(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Favorites[id]
}

func (b *Backend) record(op string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.calls == nil {
		b.calls = map[string]int{}
	}
	b.calls[op]++
}

func (b *Backend) ListChalets(ctx context.Context) ([]models.Chalet, error) {
	b.record("ListChalets")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ListErr != nil {
		return nil, b.ListErr
	}
	out := make([]models.Chalet, len(b.Chalets))
	copy(out, b.Chalets)
	return out, nil
}

func (b *Backend) GetChalet(ctx context.Context, id string) (*models.Chalet, error) {
	b.record("GetChalet")
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ChaletErrs[id]; err != nil {
		return nil, err
	}
	for _, c := range b.Chalets {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrChaletNotFound, id)
}

func (b *Backend) AddFavorite(ctx context.Context, chaletID string) (*services.FavoriteResult, error) {
	return b.mutate(ctx, "AddFavorite", chaletID, true)
}

func (b *Backend) RemoveFavorite(ctx context.Context, chaletID string) (*services.FavoriteResult, error) {
	return b.mutate(ctx, "RemoveFavorite", chaletID, false)
}

func (b *Backend) mutate(ctx context.Context, op, chaletID string, liked bool) (*services.FavoriteResult, error) {
	b.record(op)

	b.mu.Lock()
	gate := b.Gate
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FavoriteErr != nil {
		return nil, b.FavoriteErr
	}
	override := b.AddResult
	if !liked {
		override = b.RemoveResult
	}
	if override != nil {
		r := *override
		return &r, nil
	}

	if b.Favorites == nil {
		b.Favorites = map[string]bool{}
	}
	if liked {
		b.Favorites[chaletID] = true
	} else {
		delete(b.Favorites, chaletID)
	}
	return &services.FavoriteResult{Success: true}, nil
}

func (b *Backend) CheckFavorite(ctx context.Context, chaletID string) (*services.FavoriteStatus, error) {
	b.record("CheckFavorite")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.CheckErr != nil {
		return nil, b.CheckErr
	}
	if b.CheckStatus != nil {
		s := *b.CheckStatus
		return &s, nil
	}
	return &services.FavoriteStatus{Success: true, IsFavorite: b.Favorites[chaletID]}, nil
}

func (b *Backend) ListFavorites(ctx context.Context) ([]models.Chalet, error) {
	b.record("ListFavorites")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ListErr != nil {
		return nil, b.ListErr
	}

	ids := make([]string, 0, len(b.Favorites))
	for id, ok := range b.Favorites {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]models.Chalet, 0, len(ids))
	for _, id := range ids {
		chalet := models.Chalet{ID: id}
		for _, c := range b.Chalets {
			if c.ID == id {
				chalet = c
			}
		}
		out = append(out, chalet)
	}
	return out, nil
}

func (b *Backend) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	b.record("Login")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Password == "" || password != b.Password {
		return &services.AuthResult{Message: "Invalid credentials"}, nil
	}
	return &services.AuthResult{Success: true, Token: "fake-token", User: b.User}, nil
}

func (b *Backend) LoginWithGoogle(ctx context.Context, idToken string) (*services.AuthResult, error) {
	b.record("LoginWithGoogle")
	if idToken == "" {
		return &services.AuthResult{Message: "Missing credential"}, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return &services.AuthResult{Success: true, Token: "fake-google-token", User: b.User}, nil
}

func (b *Backend) Logout(ctx context.Context) error {
	b.record("Logout")
	return nil
}

func (b *Backend) Me(ctx context.Context) (*models.User, error) {
	b.record("Me")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.User == nil {
		return nil, shared.ErrNotAuthenticated
	}
	u := *b.User
	return &u, nil
}

func (b *Backend) SendInquiry(ctx context.Context, inquiry models.Inquiry) (*services.Result, error) {
	b.record("SendInquiry")
	if err := inquiry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Inquiries = append(b.Inquiries, inquiry)
	return &services.Result{Success: true, Message: "Message sent"}, nil
}

func (b *Backend) AdminDashboard(ctx context.Context) (*models.DashboardStats, error) {
	b.record("AdminDashboard")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.User == nil || !b.User.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	if b.Stats == nil {
		return &models.DashboardStats{}, nil
	}
	s := *b.Stats
	return &s, nil
}

var _ services.Backend = (*Backend)(nil)
