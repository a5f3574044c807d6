// package tasks implements catalog and dashboard operations on top of the marketplace backend.
//
// The core abstraction is Engine, which assembles catalog pages, dashboards, and listing exports.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/services"
	"github.com/desertthunder/chalet/internal/shared"
)

// EndpointResult represents the result of fetching data from a single API endpoint.
type EndpointResult struct {
	Endpoint string
	Data     any
	Error    error
}

// Filter narrows a chalet listing on the client.
//
// Zero values disable a criterion. Query matches name, location, or description and Location matches the location only,
// both as case-insensitive substrings. MaxPrice excludes chalets without a price.
type Filter struct {
	Query       string
	Location    string
	MinBedrooms int
	MinGuests   int
	MaxPrice    float64
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.Query) == "" && strings.TrimSpace(f.Location) == "" &&
		f.MinBedrooms <= 0 && f.MinGuests <= 0 && f.MaxPrice <= 0
}

// Match reports whether c satisfies every criterion.
func (f Filter) Match(c models.Chalet) bool {
	if !c.Matches(f.Query) {
		return false
	}
	if loc := strings.ToLower(strings.TrimSpace(f.Location)); loc != "" &&
		!strings.Contains(strings.ToLower(c.Location), loc) {
		return false
	}
	if f.MinBedrooms > 0 && c.Bedrooms < f.MinBedrooms {
		return false
	}
	if f.MinGuests > 0 && c.Guests < f.MinGuests {
		return false
	}
	if f.MaxPrice > 0 && (c.Price <= 0 || c.Price > f.MaxPrice) {
		return false
	}
	return true
}

// Search returns the chalets matching f, preserving order.
func Search(chalets []models.Chalet, f Filter) []models.Chalet {
	if f.Empty() {
		return chalets
	}
	out := make([]models.Chalet, 0, len(chalets))
	for _, c := range chalets {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// CatalogResult is one page of a filtered listing.
type CatalogResult struct {
	Chalets []models.Chalet // Chalets on the requested page
	Matched int             // Chalets matching the filter
	Total   int             // Chalets returned by the backend
	Page    PageInfo
}

// DashboardResult contains everything fetched for a dashboard.
//
// Endpoints that fail are recorded in Errors and leave their field empty.
type DashboardResult struct {
	Role      models.Role
	User      *models.User
	Stats     *models.DashboardStats // Admin only
	Chalets   int                    // Listing total, admin only
	Favorites []models.Chalet        // User only, with details prefetched
	Errors    []EndpointResult
}

// Failed reports whether the named endpoint failed.
func (r *DashboardResult) Failed(endpoint string) bool {
	for _, e := range r.Errors {
		if e.Endpoint == endpoint {
			return true
		}
	}
	return false
}

type endpointOperation struct {
	name    string
	phase   Phase
	message string
	fetch   func(ctx context.Context) error
}

// CatalogEngine defines the read-side operations of the client.
type CatalogEngine interface {
	// Catalog fetches all chalets, applies the filter, and returns the requested page.
	Catalog(ctx context.Context, progress chan<- ProgressUpdate, filter Filter, page, perPage int) (*CatalogResult, error)

	// Dashboard assembles the admin or user dashboard, collecting per-endpoint failures.
	Dashboard(ctx context.Context, progress chan<- ProgressUpdate, role models.Role) (*DashboardResult, error)

	// Prefetch loads chalet details concurrently with rate limiting.
	Prefetch(ctx context.Context, progress chan<- ProgressUpdate, ids []string, opts PrefetchOpts) (*PrefetchResult, error)

	// Export writes a filtered listing to disk in the requested format.
	Export(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error)
}

// Engine implements CatalogEngine against a [services.Backend].
type Engine struct {
	backend  services.Backend
	prefetch PrefetchOpts
}

// NewEngine creates a new Engine with default prefetch settings.
func NewEngine(backend services.Backend) *Engine {
	return &Engine{backend: backend}
}

// SetPrefetchOpts sets the worker pool settings used by Dashboard.
func (e *Engine) SetPrefetchOpts(opts PrefetchOpts) {
	e.prefetch = opts
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Catalog fetches all chalets, applies filter, and slices out the requested page.
func (e *Engine) Catalog(ctx context.Context, progress chan<- ProgressUpdate, filter Filter, page, perPage int) (*CatalogResult, error) {
	if e.backend == nil {
		return nil, fmt.Errorf("%w: backend not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchChaletsUpdate(1, 2))

	all, err := e.backend.ListChalets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chalets: %w", err)
	}

	matched := Search(all, filter)
	info := Paginate(len(matched), page, perPage)

	e.sendProgress(progress, foundChaletsUpdate(2, 2, len(matched), len(all)))

	return &CatalogResult{
		Chalets: PageSlice(matched, info),
		Matched: len(matched),
		Total:   len(all),
		Page:    info,
	}, nil
}

// Dashboard fetches the dashboard for role. An empty role is treated as [models.RoleUser].
func (e *Engine) Dashboard(ctx context.Context, progress chan<- ProgressUpdate, role models.Role) (*DashboardResult, error) {
	if e.backend == nil {
		return nil, fmt.Errorf("%w: backend not initialized", shared.ErrServiceUnavailable)
	}
	if role == "" {
		role = models.RoleUser
	}

	result := &DashboardResult{
		Role:   role,
		Errors: []EndpointResult{},
	}

	endpoints := []endpointOperation{
		{name: "/api/auth/me", phase: FetchProfile, message: "Fetching profile...", fetch: func(ctx context.Context) error {
			u, err := e.backend.Me(ctx)
			result.User = u
			return err
		}},
	}

	if role == models.RoleAdmin {
		endpoints = append(endpoints,
			endpointOperation{name: "/api/admin/dashboard", phase: FetchStats, message: "Fetching statistics...", fetch: func(ctx context.Context) error {
				stats, err := e.backend.AdminDashboard(ctx)
				result.Stats = stats
				return err
			}},
			endpointOperation{name: "/api/chalets", phase: FetchChalets, message: "Fetching chalets...", fetch: func(ctx context.Context) error {
				chalets, err := e.backend.ListChalets(ctx)
				result.Chalets = len(chalets)
				return err
			}},
		)
	} else {
		endpoints = append(endpoints,
			endpointOperation{name: "/api/favorites", phase: FetchFavorites, message: "Fetching favorites...", fetch: func(ctx context.Context) error {
				favorites, err := e.backend.ListFavorites(ctx)
				result.Favorites = favorites
				return err
			}},
		)
	}

	totalSteps := len(endpoints)
	for i, endpoint := range endpoints {
		e.sendProgress(progress, operationUpdate(endpoint, i+1, totalSteps))

		if err := endpoint.fetch(ctx); err != nil {
			result.Errors = append(result.Errors, EndpointResult{
				Endpoint: endpoint.name,
				Error:    err,
			})
		}
	}

	if result.Stats != nil && result.Stats.TotalChalets == 0 && result.Chalets > 0 {
		result.Stats.TotalChalets = result.Chalets
	}

	if missing := incomplete(result.Favorites); len(missing) > 0 {
		pre, err := e.Prefetch(ctx, progress, missing, e.prefetch)
		if pre != nil {
			result.Favorites = merge(result.Favorites, pre.Chalets)
			result.Errors = append(result.Errors, pre.Errors...)
		}
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

// incomplete returns the ids of favorites the backend returned without details.
func incomplete(chalets []models.Chalet) []string {
	var ids []string
	for _, c := range chalets {
		if c.Name == "" && c.ID != "" {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func merge(chalets, details []models.Chalet) []models.Chalet {
	byID := make(map[string]models.Chalet, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}
	out := make([]models.Chalet, len(chalets))
	for i, c := range chalets {
		if d, ok := byID[c.ID]; ok {
			out[i] = d
		} else {
			out[i] = c
		}
	}
	return out
}
