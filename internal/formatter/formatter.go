// package formatter provides functions to export chalet listings to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/shared"
)

// Summary is the metadata written next to listing exports.
type Summary struct {
	Count        int       `json:"count"`
	TotalLikes   int       `json:"total_likes"`
	AveragePrice float64   `json:"average_price"`
	Locations    []string  `json:"locations,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Summarize computes listing totals. Unpriced chalets are left out of the average.
func Summarize(chalets []models.Chalet) Summary {
	s := Summary{Count: len(chalets), GeneratedAt: time.Now().UTC()}
	seen := map[string]bool{}
	priced := 0
	total := 0.0
	for _, c := range chalets {
		s.TotalLikes += c.LikeCount
		if c.Price > 0 {
			priced++
			total += c.Price
		}
		if c.Location != "" && !seen[c.Location] {
			seen[c.Location] = true
			s.Locations = append(s.Locations, c.Location)
		}
	}
	if priced > 0 {
		s.AveragePrice = total / float64(priced)
	}
	return s
}

// ExportToCSV converts chalets to CSV format with columns: ID, Name, Location, Bedrooms, Guests, Price, Likes, Images
func ExportToCSV(chalets []models.Chalet) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Location", "Bedrooms", "Guests", "Price", "Likes", "Images"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range chalets {
		record := []string{
			c.ID,
			c.Name,
			c.Location,
			strconv.Itoa(c.Bedrooms),
			strconv.Itoa(c.Guests),
			strconv.FormatFloat(c.Price, 'f', -1, 64),
			strconv.Itoa(c.LikeCount),
			strconv.Itoa(len(c.Images)),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ChaletToMarkdown renders a single listing with an optional cover image
func ChaletToMarkdown(c models.Chalet, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", displayName(c)))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if c.Description != "" {
		buf.WriteString(fmt.Sprintf("%s\n\n", c.Description))
	}

	if c.Location != "" {
		buf.WriteString(fmt.Sprintf("**Location**: %s\n", c.Location))
	}
	buf.WriteString(fmt.Sprintf("**Bedrooms**: %d\n", c.Bedrooms))
	buf.WriteString(fmt.Sprintf("**Guests**: %d\n", c.Guests))
	buf.WriteString(fmt.Sprintf("**Price**: %s\n", shared.FormatPrice(c.Price)))
	buf.WriteString(fmt.Sprintf("**Likes**: %d\n\n", c.LikeCount))

	if len(c.Amenities) > 0 {
		buf.WriteString("## Amenities\n\n")
		for _, a := range c.Amenities {
			buf.WriteString(fmt.Sprintf("- %s\n", a))
		}
		buf.WriteString("\n")
	}

	if len(c.Images) > 0 {
		buf.WriteString("## Gallery\n\n")
		for i, img := range c.Images {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, img))
		}
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a listing index with one line per chalet
func ExportToMarkdown(title string, chalets []models.Chalet) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Chalets**: %d\n\n", len(chalets)))

	for i, c := range chalets {
		locationPart := ""
		if c.Location != "" {
			locationPart = fmt.Sprintf(" (%s)", c.Location)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s - %d bd, %d guests [%s]\n",
			i+1, displayName(c), locationPart, c.Bedrooms, c.Guests, shared.FormatPrice(c.Price)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts chalets to plain text format
func ExportToText(chalets []models.Chalet) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Chalets: %d\n\n", len(chalets)))

	for i, c := range chalets {
		buf.WriteString(fmt.Sprintf("%d. %s", i+1, displayName(c)))
		if c.Location != "" {
			buf.WriteString(fmt.Sprintf(" - %s", c.Location))
		}
		buf.WriteString(fmt.Sprintf(" - %s\n", shared.FormatPrice(c.Price)))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts chalets to an indented JSON array
func ExportToJSON(chalets []models.Chalet) ([]byte, error) {
	if chalets == nil {
		chalets = []models.Chalet{}
	}
	return shared.MarshalJSON(chalets, true)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToSummaryJSON generates the JSON metadata for a listing export
func ToSummaryJSON(chalets []models.Chalet) ([]byte, error) {
	return shared.MarshalJSON(Summarize(chalets), true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ChaletsFile  string
	MetadataFile string
}

// WriteCSVExport exports chalets to CSV format with accompanying metadata JSON file.
//
// Defaults to "chalets" as the base filename & creates {base}.csv and {base}_metadata.json
func WriteCSVExport(chalets []models.Chalet, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "chalets"
	}

	csvData, err := ExportToCSV(chalets)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	chaletsFile := baseFilepath + ".csv"
	if err := os.WriteFile(chaletsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToSummaryJSON(chalets)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		ChaletsFile:  chaletsFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports one chalet to Markdown format in a dedicated directory.
//
// Directory name defaults to the chalet ID.
// The cover parameter is optional - when non-empty it is saved as cover.jpg and referenced from the README.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(c models.Chalet, outputDir string, cover []byte) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = c.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if len(cover) > 0 {
		coverImagePath := filepath.Join(outputDir, "cover.jpg")
		if err := os.WriteFile(coverImagePath, cover, 0644); err != nil {
			return nil, fmt.Errorf("failed to save cover image: %w", err)
		}
		coverImageFilename = "cover.jpg"
		result.CoverImage = coverImagePath
		result.Files = append(result.Files, coverImagePath)
	}

	mdData, err := ChaletToMarkdown(c, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteMarkdownIndex writes the listing index to path, defaulting to README.md.
func WriteMarkdownIndex(title string, chalets []models.Chalet, path string) (string, error) {
	if path == "" {
		path = "README.md"
	}

	data, err := ExportToMarkdown(title, chalets)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return path, nil
}

// WriteTextExport exports chalets to plain text format.
//
// Defaults to chalets.txt as the filename.
func WriteTextExport(chalets []models.Chalet, path string) (string, error) {
	if path == "" {
		path = "chalets.txt"
	}

	textData, err := ExportToText(chalets)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport exports chalets as a JSON array.
//
// Defaults to chalets.json as the filename.
func WriteJSONExport(chalets []models.Chalet, path string) (string, error) {
	if path == "" {
		path = "chalets.json"
	}

	data, err := ExportToJSON(chalets)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

// ManifestEntry records the outcome for one chalet in an export.
type ManifestEntry struct {
	ChaletID string   `json:"chalet_id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Files    []string `json:"files,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Manifest summarizes an export run.
type Manifest struct {
	Format          string          `json:"format"`
	OutputDirectory string          `json:"output_directory"`
	Total           int             `json:"total_chalets"`
	Successful      int             `json:"successful_exports"`
	Failed          int             `json:"failed_exports"`
	Files           []string        `json:"files"`
	Entries         []ManifestEntry `json:"entries"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m *Manifest, path string) error {
	if m.GeneratedAt.IsZero() {
		m.GeneratedAt = time.Now().UTC()
	}
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to generate manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func displayName(c models.Chalet) string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Chalet %s", c.ID)
}
