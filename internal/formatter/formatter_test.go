package formatter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/chalet/internal/models"
	th "github.com/desertthunder/chalet/internal/testing"
)

func sampleChalets() []models.Chalet {
	return []models.Chalet{
		{
			ID:          "c1",
			Name:        "Alpine Retreat",
			Description: "Quiet cabin above the lake",
			Location:    "Chamonix",
			Bedrooms:    3,
			Guests:      6,
			Price:       180,
			Images:      []string{"https://img.example/1.jpg", "https://img.example/2.jpg"},
			Amenities:   []string{"Sauna", "Fireplace"},
			LikeCount:   12,
		},
		{
			ID:        "c2",
			Name:      "Pine Lodge",
			Location:  "Zermatt",
			Bedrooms:  5,
			Guests:    10,
			Price:     249.5,
			LikeCount: 3,
		},
		{
			ID:       "c3",
			Location: "Chamonix",
		},
	}
}

func TestExporters(t *testing.T) {
	chalets := sampleChalets()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(chalets)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Name,Location,Bedrooms,Guests,Price,Likes,Images") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "c1,Alpine Retreat,Chamonix,3,6,180,12,2") {
			t.Errorf("CSV missing c1 row, got: %s", output)
		}
		if !strings.Contains(output, "c2,Pine Lodge,Zermatt,5,10,249.5,3,0") {
			t.Errorf("CSV missing c2 row, got: %s", output)
		}

		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 4 {
			t.Errorf("expected header + 3 rows, got %d lines", len(lines))
		}
	})

	t.Run("ChaletToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ChaletToMarkdown(chalets[0], "")
			if err != nil {
				t.Fatalf("ChaletToMarkdown failed: %v", err)
			}

			output := string(data)

			if !strings.Contains(output, "# Alpine Retreat") {
				t.Errorf("Markdown missing title")
			}
			if strings.Contains(output, "![Cover]") {
				t.Errorf("Markdown should not reference a cover")
			}
			if !strings.Contains(output, "**Location**: Chamonix") {
				t.Errorf("Markdown missing location")
			}
			if !strings.Contains(output, "**Price**: $180/night") {
				t.Errorf("Markdown missing price, got: %s", output)
			}
			if !strings.Contains(output, "- Sauna") {
				t.Errorf("Markdown missing amenities")
			}
			if !strings.Contains(output, "2. https://img.example/2.jpg") {
				t.Errorf("Markdown missing gallery")
			}
		})

		t.Run("with cover image", func(t *testing.T) {
			data, err := ChaletToMarkdown(chalets[0], "cover.jpg")
			if err != nil {
				t.Fatalf("ChaletToMarkdown failed: %v", err)
			}

			if !strings.Contains(string(data), "![Cover](cover.jpg)") {
				t.Errorf("Markdown missing cover image reference")
			}
		})

		t.Run("unnamed chalet", func(t *testing.T) {
			data, _ := ChaletToMarkdown(chalets[2], "")
			if !strings.Contains(string(data), "# Chalet c3") {
				t.Errorf("expected fallback title, got: %s", data)
			}
			if !strings.Contains(string(data), "price on request") {
				t.Errorf("expected unpriced label")
			}
		})
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown("Favorites", chalets)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# Favorites") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Chalets**: 3") {
			t.Errorf("Markdown missing count")
		}
		if !strings.Contains(output, "1. Alpine Retreat (Chamonix) - 3 bd, 6 guests [$180/night]") {
			t.Errorf("Markdown missing c1 line, got: %s", output)
		}
		if !strings.Contains(output, "2. Pine Lodge (Zermatt) - 5 bd, 10 guests [$249.50/night]") {
			t.Errorf("Markdown missing c2 line, got: %s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(chalets)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Chalets: 3") {
			t.Errorf("Text missing count")
		}
		if !strings.Contains(output, "1. Alpine Retreat - Chamonix - $180/night") {
			t.Errorf("Text missing c1, got: %s", output)
		}
		if !strings.Contains(output, "3. Chalet c3 - Chamonix - price on request") {
			t.Errorf("Text missing c3, got: %s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(chalets)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, `"id": "c1"`) {
			t.Errorf("JSON missing c1 id, got: %s", output)
		}
		if !strings.Contains(output, `"likeCount": 12`) {
			t.Errorf("JSON missing like count")
		}

		empty, err := ExportToJSON(nil)
		if err != nil {
			t.Fatalf("ExportToJSON(nil) failed: %v", err)
		}
		if string(empty) != "[]" {
			t.Errorf("expected empty array, got %s", empty)
		}
	})

	t.Run("Summarize", func(t *testing.T) {
		s := Summarize(chalets)
		if s.Count != 3 {
			t.Errorf("expected count 3, got %d", s.Count)
		}
		if s.TotalLikes != 15 {
			t.Errorf("expected 15 likes, got %d", s.TotalLikes)
		}
		if s.AveragePrice != 214.75 {
			t.Errorf("expected average 214.75, got %v", s.AveragePrice)
		}
		if len(s.Locations) != 2 || s.Locations[0] != "Chamonix" || s.Locations[1] != "Zermatt" {
			t.Errorf("unexpected locations: %v", s.Locations)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		_, err := DownloadImage(context.Background(), "")
		if err == nil {
			t.Error("Expected error for empty URL")
		}
	})

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpegdata"))
		}))
		defer srv.Close()

		data, err := DownloadImage(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("DownloadImage failed: %v", err)
		}
		if string(data) != "jpegdata" {
			t.Errorf("unexpected body %q", data)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, err := DownloadImage(context.Background(), srv.URL)
		if err == nil || !strings.Contains(err.Error(), "status 404") {
			t.Errorf("expected status error, got %v", err)
		}
	})
}

func TestWriters(t *testing.T) {
	chalets := sampleChalets()

	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(chalets, "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.ChaletsFile != "chalets.csv" {
				t.Errorf("Expected chalets file 'chalets.csv', got '%s'", result.ChaletsFile)
			}
			if result.MetadataFile != "chalets_metadata.json" {
				t.Errorf("Expected metadata file 'chalets_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.ChaletsFile)
			content := th.MustReadFile(t, result.MetadataFile)
			if !strings.Contains(content, `"count": 3`) {
				t.Errorf("metadata missing count, got: %s", content)
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "listing")

			result, err := WriteCSVExport(chalets, base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.ChaletsFile != base+".csv" {
				t.Errorf("unexpected chalets file %s", result.ChaletsFile)
			}
			th.AssertFileExists(t, result.ChaletsFile)
			th.AssertFileExists(t, result.MetadataFile)
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithDefaultDirectory", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteMarkdownExport(chalets[0], "", nil)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.Directory != "c1" {
				t.Errorf("Expected directory 'c1', got '%s'", result.Directory)
			}
			if result.CoverImage != "" {
				t.Errorf("Expected no cover image, got %s", result.CoverImage)
			}
			if len(result.Files) != 1 {
				t.Fatalf("Expected 1 file, got %d", len(result.Files))
			}
			th.AssertDirExists(t, "c1")
			th.AssertFileExists(t, filepath.Join("c1", "README.md"))
		})

		t.Run("WithCover", func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "alpine")

			result, err := WriteMarkdownExport(chalets[0], dir, []byte("jpegdata"))
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if len(result.Files) != 2 {
				t.Fatalf("Expected 2 files, got %d", len(result.Files))
			}
			if result.CoverImage != filepath.Join(dir, "cover.jpg") {
				t.Errorf("unexpected cover path %s", result.CoverImage)
			}
			readme := th.MustReadFile(t, filepath.Join(dir, "README.md"))
			if !strings.Contains(readme, "![Cover](cover.jpg)") {
				t.Errorf("README missing cover reference")
			}
		})
	})

	t.Run("WriteMarkdownIndex", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "index.md")
		got, err := WriteMarkdownIndex("Catalog", chalets, path)
		if err != nil {
			t.Fatalf("WriteMarkdownIndex failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		if !strings.Contains(th.MustReadFile(t, path), "# Catalog") {
			t.Errorf("index missing title")
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteTextExport(chalets, "")
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}
			if path != "chalets.txt" {
				t.Errorf("Expected 'chalets.txt', got '%s'", path)
			}
			th.AssertFileExists(t, path)
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.txt")
			got, err := WriteTextExport(chalets, path)
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}
			if got != path {
				t.Errorf("Expected %s, got %s", path, got)
			}
		})
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteJSONExport(chalets, "")
			if err != nil {
				t.Fatalf("WriteJSONExport failed: %v", err)
			}
			if path != "chalets.json" {
				t.Errorf("Expected 'chalets.json', got '%s'", path)
			}
			if !strings.Contains(th.MustReadFile(t, path), `"Alpine Retreat"`) {
				t.Errorf("JSON export missing chalet name")
			}
		})

		t.Run("WriteError", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing", "out.json")
			if _, err := WriteJSONExport(chalets, path); err == nil {
				t.Error("expected error writing into a missing directory")
			}
		})
	})

	t.Run("WriteManifest", func(t *testing.T) {
		t.Run("SuccessfulExport", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "manifest.json")
			m := &Manifest{
				Format:          "csv",
				OutputDirectory: "exports",
				Total:           2,
				Successful:      2,
				Files:           []string{"exports/chalets.csv"},
				Entries: []ManifestEntry{
					{ChaletID: "c1", Name: "Alpine Retreat", Status: "success"},
					{ChaletID: "c2", Name: "Pine Lodge", Status: "success"},
				},
			}

			if err := WriteManifest(m, path); err != nil {
				t.Fatalf("WriteManifest failed: %v", err)
			}

			content := th.MustReadFile(t, path)
			if !strings.Contains(content, `"format": "csv"`) {
				t.Errorf("Manifest missing format field")
			}
			if !strings.Contains(content, `"total_chalets": 2`) {
				t.Errorf("Manifest missing total_chalets field")
			}
			if !strings.Contains(content, `"successful_exports": 2`) {
				t.Errorf("Manifest missing successful_exports field")
			}
			if !strings.Contains(content, `"Alpine Retreat"`) {
				t.Errorf("Manifest missing chalet name")
			}
			if m.GeneratedAt.IsZero() {
				t.Errorf("expected GeneratedAt to be stamped")
			}
		})

		t.Run("WithFailedExports", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "manifest.json")
			m := &Manifest{
				Format:     "markdown",
				Total:      2,
				Successful: 1,
				Failed:     1,
				Entries: []ManifestEntry{
					{ChaletID: "c1", Name: "Alpine Retreat", Status: "success"},
					{ChaletID: "c9", Status: "failed", Error: "chalet not found"},
				},
			}

			if err := WriteManifest(m, path); err != nil {
				t.Fatalf("WriteManifest failed: %v", err)
			}

			content := th.MustReadFile(t, path)
			if !strings.Contains(content, `"failed_exports": 1`) {
				t.Errorf("Manifest missing failed count")
			}
			if !strings.Contains(content, `"error": "chalet not found"`) {
				t.Errorf("Manifest missing error message")
			}
		})

		t.Run("UnwritablePath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nope", "manifest.json")
			if err := WriteManifest(&Manifest{}, path); err == nil {
				t.Error("expected error")
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Error("manifest should not exist")
			}
		})
	})
}
