package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/shared"
)

var (
	_ list.Item = chaletItem{}
)

// chaletItem wraps [models.Chalet] to implement [list.Item].
type chaletItem struct {
	chalet models.Chalet
	liked  bool
}

func (i chaletItem) FilterValue() string { return i.chalet.Name }
func (i chaletItem) Title() string {
	name := i.chalet.Name
	if name == "" {
		name = fmt.Sprintf("Chalet %s", i.chalet.ID)
	}
	return fmt.Sprintf("%s %s", styles.Heart(i.liked), name)
}
func (i chaletItem) Description() string {
	parts := []string{}
	if i.chalet.Location != "" {
		parts = append(parts, i.chalet.Location)
	}
	parts = append(parts,
		fmt.Sprintf("%d bd · %d guests", i.chalet.Bedrooms, i.chalet.Guests),
		shared.FormatPrice(i.chalet.Price),
	)
	return strings.Join(parts, " • ")
}

func chaletItems(chalets []models.Chalet, liked func(id string) bool) []list.Item {
	items := make([]list.Item, len(chalets))
	for i, c := range chalets {
		items[i] = chaletItem{chalet: c, liked: liked(c.ID)}
	}
	return items
}
