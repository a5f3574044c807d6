package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#8B5E34", "#2E8B57", "#D7263D", "#E0A458", "#7A7A7A", "#E8505B")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	heart  lipgloss.Style
	banner lipgloss.Style
	faint  lipgloss.Style
}

func NewPalette(t, s, e, w, h, l string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		heart:  NewBold(l),
		banner: NewBold("#FFFFFF").Background(lipgloss.Color(w)).Padding(0, 1),
		faint:  NewStyle(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Heart renders the like marker.
func (p *Palette) Heart(liked bool) string {
	if liked {
		return p.heart.Render("♥")
	}
	return p.faint.Render("♡")
}
