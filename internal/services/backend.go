// Marketplace backend implementation of [Backend]
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/shared"
)

const (
	chaletsPath        = "/api/chalets"
	favoritesPath      = "/api/favorites"
	addFavoritePath    = "/api/favorites/add"
	removeFavoritePath = "/api/favorites/remove"
	checkFavoritePath  = "/api/favorites/check"
	loginPath          = "/api/auth/login"
	googleLoginPath    = "/api/auth/google"
	logoutPath         = "/api/auth/logout"
	mePath             = "/api/auth/me"
	contactPath        = "/api/contact"
	adminDashboardPath = "/api/admin/dashboard"

	defaultSessionCookie = "token"
)

// authMessageHints mark a failure message as meaning "not logged in".
var authMessageHints = []string{"auth", "login", "log in", "token", "unauthorized", "session"}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// BackendService talks to the marketplace backend over HTTP.
//
// The session is carried the way a browser carries it: as a cookie in a [cookiejar.Jar].
type BackendService struct {
	api        *APIService
	jar        http.CookieJar
	base       *url.URL
	cookieName string
	logger     *log.Logger

	mu    sync.RWMutex
	token string
}

// NewBackendService creates a [BackendService] for the backend described by cfg.
func NewBackendService(cfg shared.BackendConfig, logger *log.Logger) (*BackendService, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid backend base_url %q", shared.ErrInvalidConfig, cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	cookieName := cfg.SessionCookie
	if cookieName == "" {
		cookieName = defaultSessionCookie
	}

	client := &http.Client{Jar: jar, Timeout: cfg.Timeout()}
	api := NewAPIService(baseURL, client)
	api.SetRateLimit(cfg.RateLimit)

	return &BackendService{
		api:        api,
		jar:        jar,
		base:       base,
		cookieName: cookieName,
		logger:     logger,
	}, nil
}

// SetSessionToken installs token as the session cookie. An empty token clears the session.
func (b *BackendService) SetSessionToken(token string) {
	b.mu.Lock()
	b.token = token
	b.mu.Unlock()

	cookie := &http.Cookie{Name: b.cookieName, Value: token, Path: "/"}
	if token == "" {
		cookie.MaxAge = -1
	}
	b.jar.SetCookies(b.base, []*http.Cookie{cookie})
}

// SessionToken returns the current session token, preferring a cookie set by the backend.
func (b *BackendService) SessionToken() string {
	for _, c := range b.jar.Cookies(b.base) {
		if c.Name == b.cookieName && c.Value != "" {
			return c.Value
		}
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token
}

// Authenticated reports whether a session token is present and not known to be expired.
func (b *BackendService) Authenticated() bool {
	token := b.SessionToken()
	return token != "" && !expired(token, time.Now())
}

// ListChalets retrieves all chalets.
func (b *BackendService) ListChalets(ctx context.Context) ([]models.Chalet, error) {
	resp, err := b.api.Get(ctx, chaletsPath)
	if err != nil {
		return nil, err
	}
	if err := statusError(resp, "list chalets"); err != nil {
		return nil, err
	}

	items, err := listField(resp, "chalets", "data")
	if err != nil {
		return nil, err
	}
	return NormalizeChalets(items), nil
}

// GetChalet retrieves one chalet by id.
func (b *BackendService) GetChalet(ctx context.Context, id string) (*models.Chalet, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: chalet id", shared.ErrMissingArgument)
	}

	resp, err := b.api.Get(ctx, chaletsPath+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", shared.ErrChaletNotFound, id)
	}
	if err := statusError(resp, "get chalet"); err != nil {
		return nil, err
	}

	obj, ok := resp.JSONData.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: get chalet: unexpected response shape", shared.ErrAPIRequest)
	}
	for _, key := range []string{"chalet", "data"} {
		if inner, ok := obj[key].(map[string]any); ok {
			obj = inner
			break
		}
	}

	chalet := NormalizeChalet(obj)
	if chalet.ID == "" {
		chalet.ID = id
	}
	return &chalet, nil
}

// AddFavorite marks the chalet as liked by the current user.
func (b *BackendService) AddFavorite(ctx context.Context, chaletID string) (*FavoriteResult, error) {
	return b.favoriteMutation(ctx, addFavoritePath, chaletID)
}

// RemoveFavorite removes the chalet from the current user's favorites.
func (b *BackendService) RemoveFavorite(ctx context.Context, chaletID string) (*FavoriteResult, error) {
	return b.favoriteMutation(ctx, removeFavoritePath, chaletID)
}

func (b *BackendService) favoriteMutation(ctx context.Context, path, chaletID string) (*FavoriteResult, error) {
	resp, err := b.api.PostJSON(ctx, path, map[string]string{"chaletId": chaletID})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		var env envelope
		resp.Decode(&env)
		return &FavoriteResult{Message: env.message(), RequiresLogin: true}, nil
	}

	var env envelope
	if err := resp.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %s: status %d", shared.ErrAPIRequest, path, resp.StatusCode)
	}

	result := &FavoriteResult{Success: env.Success && resp.OK(), Message: env.message()}
	if !result.Success {
		result.RequiresLogin = isAuthMessage(result.Message)
	}

	b.logger.Debug("favorite mutation", "path", path, "chalet", chaletID, "success", result.Success)
	return result, nil
}

// CheckFavorite asks the backend whether the chalet is in the current user's favorites.
func (b *BackendService) CheckFavorite(ctx context.Context, chaletID string) (*FavoriteStatus, error) {
	resp, err := b.api.PostJSON(ctx, checkFavoritePath, map[string]string{"chaletId": chaletID})
	if err != nil {
		return nil, err
	}
	if err := statusError(resp, "check favorite"); err != nil {
		return nil, err
	}

	var body struct {
		Success    bool `json:"success"`
		IsFavorite bool `json:"isFavorite"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	return &FavoriteStatus{Success: body.Success, IsFavorite: body.IsFavorite}, nil
}

// ListFavorites retrieves the current user's favorite chalets.
//
// Records that only carry an id produce a [models.Chalet] with just the ID set.
func (b *BackendService) ListFavorites(ctx context.Context) ([]models.Chalet, error) {
	resp, err := b.api.Get(ctx, favoritesPath)
	if err != nil {
		return nil, err
	}
	if err := statusError(resp, "list favorites"); err != nil {
		return nil, err
	}

	items, err := listField(resp, "favorites", "data")
	if err != nil {
		return nil, err
	}
	return NormalizeChalets(items), nil
}

// Login authenticates with email and password. A false Success is not an error.
func (b *BackendService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return b.authenticate(ctx, loginPath, map[string]string{"email": email, "password": password})
}

// LoginWithGoogle exchanges a Google id_token for a backend session.
func (b *BackendService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	return b.authenticate(ctx, googleLoginPath, map[string]string{"credential": idToken})
}

func (b *BackendService) authenticate(ctx context.Context, path string, payload map[string]string) (*AuthResult, error) {
	resp, err := b.api.PostJSON(ctx, path, payload)
	if err != nil {
		return nil, err
	}

	var body struct {
		envelope
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	if err := resp.Decode(&body); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
		}
		return nil, err
	}

	result := &AuthResult{Success: body.Success && resp.OK(), Message: body.message()}
	if !result.Success {
		return result, nil
	}

	if body.User != nil {
		user := NormalizeUser(body.User)
		result.User = &user
	}

	if body.Token != "" {
		b.SetSessionToken(body.Token)
	}
	result.Token = b.SessionToken()
	if result.Token == "" {
		return nil, fmt.Errorf("%w: backend returned no session token", shared.ErrAuthFailed)
	}
	return result, nil
}

// Logout ends the backend session and clears the local cookie regardless of the outcome.
func (b *BackendService) Logout(ctx context.Context) error {
	defer b.SetSessionToken("")

	resp, err := b.api.Post(ctx, logoutPath, []byte("{}"))
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil
	}
	return statusError(resp, "logout")
}

// Me retrieves the authenticated user.
func (b *BackendService) Me(ctx context.Context) (*models.User, error) {
	resp, err := b.api.Get(ctx, mePath)
	if err != nil {
		return nil, err
	}
	if err := statusError(resp, "me"); err != nil {
		return nil, err
	}

	var body struct {
		envelope
		User map[string]any `json:"user"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	if body.User == nil {
		return nil, shared.ErrNotAuthenticated
	}

	user := NormalizeUser(body.User)
	return &user, nil
}

// SendInquiry validates and submits a contact form.
func (b *BackendService) SendInquiry(ctx context.Context, inquiry models.Inquiry) (*Result, error) {
	if err := inquiry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	resp, err := b.api.PostJSON(ctx, contactPath, inquiry)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := resp.Decode(&env); err != nil {
		if serr := statusError(resp, "contact"); serr != nil {
			return nil, serr
		}
		return nil, err
	}
	return &Result{Success: env.Success && resp.OK(), Message: env.message()}, nil
}

// AdminDashboard retrieves the admin statistics. Requires an admin session.
func (b *BackendService) AdminDashboard(ctx context.Context) (*models.DashboardStats, error) {
	resp, err := b.api.Get(ctx, adminDashboardPath)
	if err != nil {
		return nil, err
	}
	if err := statusError(resp, "admin dashboard"); err != nil {
		return nil, err
	}

	var body struct {
		envelope
		Stats *models.DashboardStats `json:"stats"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	if body.Stats == nil {
		return &models.DashboardStats{}, nil
	}
	return body.Stats, nil
}

// statusError maps non-2xx responses to sentinel errors.
func statusError(resp *APIResponse, op string) error {
	if resp.OK() {
		return nil
	}

	var env envelope
	_ = resp.Decode(&env)
	msg := env.message()
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s: %s", shared.ErrNotAuthenticated, op, msg)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s: %s", shared.ErrForbidden, op, msg)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s: status %d: %s", shared.ErrServiceUnavailable, op, resp.StatusCode, msg)
	default:
		return fmt.Errorf("%w: %s: status %d: %s", shared.ErrAPIRequest, op, resp.StatusCode, msg)
	}
}

// listField extracts an array from a bare array body or from the first matching envelope key.
func listField(resp *APIResponse, keys ...string) ([]any, error) {
	switch data := resp.JSONData.(type) {
	case []any:
		return data, nil
	case map[string]any:
		for _, k := range keys {
			if arr, ok := data[k].([]any); ok {
				return arr, nil
			}
		}
		if success, ok := data["success"].(bool); ok && !success {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, data["message"])
		}
		return []any{}, nil
	}
	return nil, fmt.Errorf("%w: unexpected response shape", shared.ErrAPIRequest)
}

func isAuthMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, hint := range authMessageHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
