package favorites

import (
	"context"
	"fmt"

	"github.com/desertthunder/chalet/internal/models"
)

// Lister lists the authenticated user's favorites.
type Lister interface {
	ListFavorites(ctx context.Context) ([]models.Chalet, error)
}

// SyncReport summarizes a [Sync].
type SyncReport struct {
	Added   []string
	Removed []string
	Total   int
}

// Sync replaces the cached set with the backend's favorites and publishes an event for every id that changed.
func Sync(ctx context.Context, store Store, backend Lister) (*SyncReport, error) {
	favorites, err := backend.ListFavorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	next := NewSet()
	for _, c := range favorites {
		next.Add(c.ID)
	}

	prev := store.Read(ctx)
	if err := store.Write(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to write favorites: %w", err)
	}

	report := &SyncReport{Total: len(next)}
	for _, e := range Diff(prev, next) {
		if e.IsLiked {
			report.Added = append(report.Added, e.ChaletID)
		} else {
			report.Removed = append(report.Removed, e.ChaletID)
		}
		store.Publish(e)
	}
	return report, nil
}
