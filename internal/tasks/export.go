package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/chalet/internal/formatter"
	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/shared"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// ExportOpts contains configuration for listing exports.
type ExportOpts struct {
	Format    string       // Export format: json, csv, markdown, txt (default: json)
	OutputDir string       // Base output directory (default: chalet_export_{epoch})
	Title     string       // Markdown index title
	Filter    Filter       // Applied to the listing when IDs is empty
	IDs       []string     // Export exactly these chalets
	Detailed  bool         // Fetch full details for every listed chalet
	Covers    bool         // Markdown only: save each chalet's first image
	Prefetch  PrefetchOpts // Worker pool for detail fetches

	// Download fetches cover images. Defaults to [formatter.DownloadImage].
	Download func(ctx context.Context, url string) ([]byte, error)
}

// ExportResult summarizes a listing export.
type ExportResult struct {
	Total           int
	Successful      int
	Failed          int
	OutputDirectory string
	Files           []string
	ManifestPath    string
	Errors          []EndpointResult
}

// Export selects chalets, optionally prefetching their details, and writes them to opts.OutputDir.
//
// json, csv and txt produce a single listing file; markdown writes an index plus one directory per chalet.
// A manifest (export_manifest.json) is always written last.
func (e *Engine) Export(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.backend == nil {
		return nil, fmt.Errorf("%w: backend not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	switch opts.Format {
	case FormatJSON, FormatCSV, FormatMarkdown, FormatText:
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("chalet_export_%d", time.Now().Unix())
	}
	if opts.Title == "" {
		opts.Title = "Chalets"
	}
	if opts.Download == nil {
		opts.Download = formatter.DownloadImage
	}

	result := &ExportResult{
		OutputDirectory: opts.OutputDir,
		Files:           []string{},
		Errors:          []EndpointResult{},
	}

	chalets, err := e.selectChalets(ctx, prog, opts, result)
	if err != nil {
		return nil, err
	}
	result.Total = len(chalets) + len(result.Errors)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manifest := &formatter.Manifest{
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		Entries:         make([]formatter.ManifestEntry, 0, len(chalets)),
	}

	switch opts.Format {
	case FormatMarkdown:
		if err := e.exportMarkdown(ctx, prog, chalets, opts, result, manifest); err != nil {
			return result, err
		}
	default:
		if err := e.exportListing(prog, chalets, opts, result, manifest); err != nil {
			return result, err
		}
	}

	for _, failure := range result.Errors {
		id, _ := failure.Data.(string)
		manifest.Entries = append(manifest.Entries, formatter.ManifestEntry{
			ChaletID: id,
			Status:   "failed",
			Error:    failure.Error.Error(),
		})
	}
	result.Failed = len(result.Errors)

	manifest.Total = result.Total
	manifest.Successful = result.Successful
	manifest.Failed = result.Failed
	manifest.Files = result.Files

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// selectChalets resolves the chalets to export. Detail fetch failures are recorded on result.
func (e *Engine) selectChalets(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts, result *ExportResult) ([]models.Chalet, error) {
	var ids []string
	var chalets []models.Chalet

	if len(opts.IDs) > 0 {
		ids = opts.IDs
	} else {
		e.sendProgress(prog, fetchChaletsUpdate(1, 2))
		all, err := e.backend.ListChalets(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list chalets: %w", err)
		}
		chalets = Search(all, opts.Filter)
		e.sendProgress(prog, foundChaletsUpdate(2, 2, len(chalets), len(all)))

		if !opts.Detailed {
			return chalets, nil
		}
		for _, c := range chalets {
			ids = append(ids, c.ID)
		}
	}

	pre, err := e.Prefetch(ctx, prog, ids, opts.Prefetch)
	if err != nil {
		return nil, err
	}
	result.Errors = append(result.Errors, pre.Errors...)
	return pre.Chalets, nil
}

// exportListing writes every chalet into one file.
func (e *Engine) exportListing(
	prog chan<- ProgressUpdate,
	chalets []models.Chalet,
	opts ExportOpts,
	result *ExportResult,
	manifest *formatter.Manifest,
) error {
	e.sendProgress(prog, exportingUpdate(1, 1, opts.Title))

	var files []string
	switch opts.Format {
	case FormatCSV:
		csvRes, err := formatter.WriteCSVExport(chalets, filepath.Join(opts.OutputDir, "chalets"))
		if err != nil {
			e.sendProgress(prog, exportFailedUpdate(1, 1, opts.Title, err))
			return fmt.Errorf("CSV export failed: %w", err)
		}
		files = []string{csvRes.ChaletsFile, csvRes.MetadataFile}
	case FormatText:
		path, err := formatter.WriteTextExport(chalets, filepath.Join(opts.OutputDir, "chalets.txt"))
		if err != nil {
			e.sendProgress(prog, exportFailedUpdate(1, 1, opts.Title, err))
			return fmt.Errorf("text export failed: %w", err)
		}
		files = []string{path}
	default:
		path, err := formatter.WriteJSONExport(chalets, filepath.Join(opts.OutputDir, "chalets.json"))
		if err != nil {
			e.sendProgress(prog, exportFailedUpdate(1, 1, opts.Title, err))
			return fmt.Errorf("JSON export failed: %w", err)
		}
		files = []string{path}
	}

	result.Files = append(result.Files, files...)
	result.Successful = len(chalets)
	for _, c := range chalets {
		manifest.Entries = append(manifest.Entries, formatter.ManifestEntry{
			ChaletID: c.ID,
			Name:     c.Name,
			Status:   "success",
		})
	}

	e.sendProgress(prog, exportCompletedUpdate(1, 1, opts.Title, len(files)))
	return nil
}

// exportMarkdown writes an index and one directory per chalet. Per-chalet failures are recorded, not returned.
func (e *Engine) exportMarkdown(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	chalets []models.Chalet,
	opts ExportOpts,
	result *ExportResult,
	manifest *formatter.Manifest,
) error {
	index, err := formatter.WriteMarkdownIndex(opts.Title, chalets, filepath.Join(opts.OutputDir, "README.md"))
	if err != nil {
		return fmt.Errorf("markdown export failed: %w", err)
	}
	result.Files = append(result.Files, index)

	for i, c := range chalets {
		e.sendProgress(prog, exportingUpdate(i+1, len(chalets), c.Name))

		var cover []byte
		if opts.Covers && len(c.Images) > 0 {
			// Missing covers do not fail the chalet.
			if data, err := opts.Download(ctx, c.Images[0]); err == nil {
				cover = data
			}
		}

		md, err := formatter.WriteMarkdownExport(c, filepath.Join(opts.OutputDir, c.ID), cover)
		if err != nil {
			result.Errors = append(result.Errors, EndpointResult{Endpoint: "markdown", Data: c.ID, Error: err})
			e.sendProgress(prog, exportFailedUpdate(i+1, len(chalets), c.Name, err))
			continue
		}

		result.Successful++
		result.Files = append(result.Files, md.Files...)
		manifest.Entries = append(manifest.Entries, formatter.ManifestEntry{
			ChaletID: c.ID,
			Name:     c.Name,
			Status:   "success",
			Files:    md.Files,
		})
		e.sendProgress(prog, exportCompletedUpdate(i+1, len(chalets), c.Name, len(md.Files)))
	}
	return nil
}
