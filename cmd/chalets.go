package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/shared"
	"github.com/desertthunder/chalet/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ChaletListing is the JSON shape of `chalets list`.
type ChaletListing struct {
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Matched    int             `json:"matched"`
	Total      int             `json:"total"`
	Chalets    []models.Chalet `json:"chalets"`
	Liked      []string        `json:"liked"`
}

func filterFromFlags(cmd *cli.Command) tasks.Filter {
	return tasks.Filter{
		Query:       cmd.String("query"),
		Location:    cmd.String("location"),
		MinBedrooms: int(cmd.Int("min-bedrooms")),
		MinGuests:   int(cmd.Int("min-guests")),
		MaxPrice:    cmd.Float("max-price"),
	}
}

func heart(liked bool) string {
	if liked {
		return "♥"
	}
	return "♡"
}

func chaletName(c models.Chalet) string {
	if c.Name == "" {
		return fmt.Sprintf("Chalet %s", c.ID)
	}
	return c.Name
}

// ChaletsList prints one page of the filtered catalog with this device's liked state.
func (r *Runner) ChaletsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	filter := filterFromFlags(cmd)
	perPage := int(cmd.Int("per-page"))
	if perPage <= 0 {
		perPage = r.config.UI.PageSize
	}

	updates, finish := r.track(true)
	result, err := r.engine.Catalog(ctx, updates, filter, int(cmd.Int("page")), perPage)
	finish()
	if err != nil {
		return err
	}

	liked := r.store.Read(ctx)

	if cmd.Bool("json") {
		return r.writeJSON(ChaletListing{
			Page:       result.Page.Page,
			TotalPages: result.Page.TotalPages,
			Matched:    result.Matched,
			Total:      result.Total,
			Chalets:    result.Chalets,
			Liked:      liked.IDs(),
		}, true)
	}

	if result.Matched == 0 {
		if filter.Empty() {
			return r.writePlain("No chalets available.\n")
		}
		return r.writePlain("No chalets match your filters.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Chalets (page %d/%d, %d of %d)", result.Page.Page, result.Page.TotalPages, result.Matched, result.Total))
	for i, c := range result.Chalets {
		r.writePlain("%s %d. %s [%s]\n", heart(liked.Has(c.ID)), result.Page.Start+i+1, chaletName(c), c.ID)

		details := []string{}
		if c.Location != "" {
			details = append(details, c.Location)
		}
		details = append(details, fmt.Sprintf("%d bd · %d guests", c.Bedrooms, c.Guests), shared.FormatPrice(c.Price))
		r.writePlain("     %s\n", strings.Join(details, " • "))
	}

	if result.Page.HasNext {
		r.writePlainln("Next page: chalet chalets list --page %d", result.Page.Page+1)
	}
	return nil
}

// ChaletsShow prints one chalet.
func (r *Runner) ChaletsShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: chalet id is required", shared.ErrMissingArgument)
	}

	chalet, err := r.backend.GetChalet(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch chalet %s: %w", id, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(chalet, true)
	}

	liked := r.store.Read(ctx).Has(chalet.ID)

	r.writePlainHeader(fmt.Sprintf("%s %s", heart(liked), chaletName(*chalet)))
	if chalet.Location != "" {
		r.writePlain("Location: %s\n", chalet.Location)
	}
	r.writePlain("Bedrooms: %d\n", chalet.Bedrooms)
	r.writePlain("Guests: %d\n", chalet.Guests)
	r.writePlain("Price: %s\n", shared.FormatPrice(chalet.Price))
	r.writePlain("Likes: %d\n", chalet.LikeCount)

	if chalet.Description != "" {
		r.writePlainln("%s", chalet.Description)
	}
	if len(chalet.Amenities) > 0 {
		r.writePlainln("Amenities: %s", strings.Join(chalet.Amenities, ", "))
	}
	if len(chalet.Images) > 0 {
		r.writePlain("\nImages (%d):\n", len(chalet.Images))
		for i, img := range chalet.Images {
			r.writePlain("  %d. %s\n", i+1, img)
		}
	}

	if cmd.Bool("open") {
		gallery := models.NewGallery(chalet.Images)
		if gallery.Current() == "" {
			r.logger.Warn("chalet has no images", "id", chalet.ID)
			return nil
		}
		if err := r.open(gallery.Current()); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}
	return nil
}

// ChaletsExport writes the filtered catalog (or the chalets named by --id) to disk.
func (r *Runner) ChaletsExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		Format:    strings.ToLower(cmd.String("format")),
		OutputDir: cmd.String("output"),
		Title:     cmd.String("title"),
		Filter:    filterFromFlags(cmd),
		IDs:       cmd.StringSlice("id"),
		Detailed:  cmd.Bool("detailed"),
		Covers:    cmd.Bool("covers"),
		Prefetch: tasks.PrefetchOpts{
			NumWorkers: int(cmd.Int("workers")),
			RateLimit:  cmd.Float("rate"),
		},
	}
	if opts.Format == "md" {
		opts.Format = tasks.FormatMarkdown
	}

	r.logger.Info("exporting chalets", "format", opts.Format, "ids", len(opts.IDs))

	updates, finish := r.track(false)
	result, err := r.engine.Export(ctx, updates, opts)
	finish()
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete")
	r.writePlain("Exported: %d/%d chalets\n", result.Successful, result.Total)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if len(result.Files) > 0 {
		r.writePlain("\nFiles:\n")
		for _, f := range result.Files {
			r.writePlain("  - %s\n", f)
		}
	}

	if result.Failed > 0 {
		r.writePlain("\nFailed (%d):\n", result.Failed)
		for _, e := range result.Errors {
			r.writePlain("  ✗ %s: %v\n", e.Endpoint, e.Error)
		}
	}
	return nil
}
