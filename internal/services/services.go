// package services adapts the remote marketplace backend and the Google identity provider.
//
// All business logic lives on the backend; these types only translate between HTTP/JSON and [models].
package services

import (
	"context"

	"github.com/desertthunder/chalet/internal/models"
)

// Backend is the set of marketplace operations the client uses. [BackendService] is the HTTP implementation.
type Backend interface {
	ListChalets(ctx context.Context) ([]models.Chalet, error)
	GetChalet(ctx context.Context, id string) (*models.Chalet, error)

	AddFavorite(ctx context.Context, chaletID string) (*FavoriteResult, error)
	RemoveFavorite(ctx context.Context, chaletID string) (*FavoriteResult, error)
	CheckFavorite(ctx context.Context, chaletID string) (*FavoriteStatus, error)
	ListFavorites(ctx context.Context) ([]models.Chalet, error)

	Login(ctx context.Context, email, password string) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)

	SendInquiry(ctx context.Context, inquiry models.Inquiry) (*Result, error)
	AdminDashboard(ctx context.Context) (*models.DashboardStats, error)
}

// Result is the common `{success, message}` envelope.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// FavoriteResult is the outcome of an add or remove favorite call.
//
// RequiresLogin is set when the backend rejected the call because the session is not authenticated.
type FavoriteResult struct {
	Success       bool
	Message       string
	RequiresLogin bool
}

// FavoriteStatus is the authoritative liked state for one chalet.
type FavoriteStatus struct {
	Success    bool
	IsFavorite bool
}

// AuthResult is the outcome of a login call.
type AuthResult struct {
	Success bool
	Message string
	Token   string
	User    *models.User
}
