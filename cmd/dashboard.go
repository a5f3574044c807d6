package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/tasks"
	"github.com/urfave/cli/v3"
)

// DashboardView is the JSON shape of `dashboard`.
type DashboardView struct {
	Role      models.Role            `json:"role"`
	User      *models.User           `json:"user,omitempty"`
	Stats     *models.DashboardStats `json:"stats,omitempty"`
	Chalets   int                    `json:"chalets,omitempty"`
	Favorites []models.Chalet        `json:"favorites,omitempty"`
	Errors    []map[string]string    `json:"errors,omitempty"`
}

func newDashboardView(result *tasks.DashboardResult) DashboardView {
	view := DashboardView{
		Role:      result.Role,
		User:      result.User,
		Stats:     result.Stats,
		Chalets:   result.Chalets,
		Favorites: result.Favorites,
	}
	for _, e := range result.Errors {
		view.Errors = append(view.Errors, map[string]string{"endpoint": e.Endpoint, "error": e.Error.Error()})
	}
	return view
}

// Dashboard shows admin statistics or the user's profile and favorites, depending on the session role.
//
// Failing endpoints are reported alongside whatever could be fetched.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	role := r.session.User().Role

	r.logger.Info("fetching dashboard", "role", role)

	updates, finish := r.track(asJSON)
	result, err := r.engine.Dashboard(ctx, updates, role)
	finish()
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		r.logger.Warn("dashboard incomplete", "error", err)
	}

	if asJSON {
		return r.writeJSON(newDashboardView(result), true)
	}

	r.writePlain("\n")
	if result.Role == models.RoleAdmin {
		r.writePlainHeader("Admin Dashboard")
	} else {
		r.writePlainHeader("My Dashboard")
	}

	if result.User != nil {
		r.writePlain("Signed in as %s (%s)\n", displayUser(*result.User, result.User.ID), result.User.Role)
	}

	if result.Role == models.RoleAdmin {
		if result.Stats != nil {
			r.writePlain("\nChalets:   %d\n", result.Stats.TotalChalets)
			r.writePlain("Users:     %d\n", result.Stats.TotalUsers)
			r.writePlain("Favorites: %d\n", result.Stats.TotalFavorites)
			r.writePlain("Inquiries: %d\n", result.Stats.TotalInquiries)
		}
	} else {
		r.writePlain("\nFavorites (%d):\n", len(result.Favorites))
		for i, c := range result.Favorites {
			r.writePlain("  ♥ %d. %s [%s] %s\n", i+1, chaletName(c), c.ID, c.Location)
		}
	}

	if len(result.Errors) > 0 {
		r.writePlain("\n⚠ %d request(s) failed:\n", len(result.Errors))
		for _, e := range result.Errors {
			r.writePlain("  - %s: %v\n", e.Endpoint, e.Error)
		}
	}

	if err != nil {
		return fmt.Errorf("dashboard incomplete: %w", err)
	}
	return nil
}
