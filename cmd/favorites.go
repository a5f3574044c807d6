package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/chalet/internal/favorites"
	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/shared"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints this device's liked chalets, or the backend's with --remote.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	var chalets []models.Chalet

	if cmd.Bool("remote") {
		if err := r.requireSession(); err != nil {
			return err
		}
		remote, err := r.backend.ListFavorites(ctx)
		if err != nil {
			return fmt.Errorf("failed to list favorites: %w", err)
		}
		chalets = remote
	} else {
		chalets = r.localFavorites(ctx)
	}

	if cmd.Bool("json") {
		if chalets == nil {
			chalets = []models.Chalet{}
		}
		return r.writeJSON(chalets, true)
	}

	if len(chalets) == 0 {
		return r.writePlain("No favorites yet.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Favorites (%d)", len(chalets)))
	for i, c := range chalets {
		line := fmt.Sprintf("♥ %d. %s [%s]", i+1, chaletName(c), c.ID)
		if c.Location != "" {
			line += " - " + c.Location
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// localFavorites resolves the cached ids against the catalog when the backend is reachable.
func (r *Runner) localFavorites(ctx context.Context) []models.Chalet {
	ids := r.store.Read(ctx).IDs()
	if len(ids) == 0 {
		return nil
	}

	byID := map[string]models.Chalet{}
	if r.backend != nil {
		catalog, err := r.backend.ListChalets(ctx)
		if err != nil {
			r.logger.Warn("could not load chalet names", "error", err)
		}
		for _, c := range catalog {
			byID[c.ID] = c
		}
	}

	out := make([]models.Chalet, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		} else {
			out = append(out, models.Chalet{ID: id})
		}
	}
	return out
}

// FavoritesLike likes a chalet.
func (r *Runner) FavoritesLike(ctx context.Context, cmd *cli.Command) error {
	return r.setFavorite(ctx, cmd.StringArg("id"), true)
}

// FavoritesUnlike removes a chalet from favorites.
func (r *Runner) FavoritesUnlike(ctx context.Context, cmd *cli.Command) error {
	return r.setFavorite(ctx, cmd.StringArg("id"), false)
}

// setFavorite drives a one-shot [favorites.Controller]: reconcile with the backend, then toggle if needed.
func (r *Runner) setFavorite(ctx context.Context, id string, liked bool) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: chalet id is required", shared.ErrMissingArgument)
	}

	chalet, err := r.backend.GetChalet(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch chalet %s: %w", id, err)
	}

	ctrl := favorites.NewController(ctx, favorites.ControllerOpts{
		ChaletID:        chalet.ID,
		LikeCount:       chalet.LikeCount,
		Store:           r.store,
		Backend:         r.backend,
		IsAuthenticated: r.authenticated,
		Logger:          r.logger,
	})
	defer ctrl.Close()

	ctrl.Reconcile(ctx)
	if ctrl.State().IsLiked == liked && r.authenticated() {
		return r.writePlain("%s %s is already %s\n", heart(liked), chaletName(*chalet), likedWord(liked))
	}

	switch result := <-ctrl.Toggle(ctx); result {
	case favorites.ResultConfirmed:
		state := ctrl.State()
		return r.writePlain("%s %s %s (%d likes)\n", heart(state.IsLiked), likedWord(state.IsLiked), chaletName(*chalet), state.LikeCount)
	case favorites.ResultLoginRequired:
		return fmt.Errorf("%w: sign in to save favorites with `chalet auth login`", shared.ErrNotAuthenticated)
	case favorites.ResultRolledBack:
		if ctrl.State().LoginRequired {
			return fmt.Errorf("%w: the backend rejected the session, sign in again", shared.ErrNotAuthenticated)
		}
		return fmt.Errorf("%w: could not update favorites for %s", shared.ErrAPIRequest, chalet.ID)
	default:
		return fmt.Errorf("favorite update for %s was not applied (%s)", chalet.ID, result)
	}
}

func likedWord(liked bool) string {
	if liked {
		return "liked"
	}
	return "unliked"
}

// FavoritesSync replaces the cached set with the backend's favorites.
func (r *Runner) FavoritesSync(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	report, err := favorites.Sync(ctx, r.store, r.backend)
	if err != nil {
		return err
	}

	for _, id := range report.Added {
		r.writePlain("+ %s\n", id)
	}
	for _, id := range report.Removed {
		r.writePlain("- %s\n", id)
	}
	return r.writePlain("✓ %d favorites synced (%d added, %d removed)\n", report.Total, len(report.Added), len(report.Removed))
}

// FavoritesWatch prints every favorite change another process makes until interrupted.
func (r *Runner) FavoritesWatch(ctx context.Context, cmd *cli.Command) error {
	if r.signal == nil {
		return fmt.Errorf("%w: the %q favorites backend has no change signal", shared.ErrServiceUnavailable, r.config.Favorites.Backend)
	}

	unsubscribe := r.store.Subscribe(func(e favorites.Event) {
		r.writePlain("%s %s %s %s\n", time.Now().Format(time.TimeOnly), heart(e.IsLiked), e.ChaletID, likedWord(e.IsLiked))
	})
	defer unsubscribe()

	r.writePlain("Watching favorites (%s), press Ctrl+C to stop\n", r.config.Favorites.Backend)

	if err := r.store.Follow(ctx, r.signal); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("favorites watch stopped: %w", err)
	}
	return nil
}
