package tasks

import "github.com/desertthunder/chalet/internal/models"

// DefaultPerPage is the listing page size used when none is configured.
const DefaultPerPage = 9

// PageInfo describes one page of a client-side paginated list.
//
// Start and End are slice bounds into the full list, so items[Start:End] is the page.
type PageInfo struct {
	Page       int
	PerPage    int
	TotalPages int
	Start      int
	End        int
	HasPrev    bool
	HasNext    bool
}

// Paginate computes page bounds for total items.
//
// perPage falls back to [DefaultPerPage] when not positive, TotalPages is at least 1, and page is clamped into [1, TotalPages].
func Paginate(total, page, perPage int) PageInfo {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}

	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * perPage
	end := min(start+perPage, total)
	if start > end {
		start = end
	}

	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		TotalPages: pages,
		Start:      start,
		End:        end,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
}

// PageSlice returns the chalets on the page described by info.
func PageSlice(chalets []models.Chalet, info PageInfo) []models.Chalet {
	start := min(info.Start, len(chalets))
	end := min(info.End, len(chalets))
	return chalets[start:end]
}

// PageNumbers lists the page numbers to render in a compact pager.
//
// The first and last pages are always present, along with window pages on each side of current.
// A 0 marks an elided run, so (5, 12, 1) yields [1 0 4 5 6 0 12].
// A gap of exactly one page is filled in rather than elided.
func PageNumbers(current, total, window int) []int {
	if total < 1 {
		return []int{1}
	}
	if window < 0 {
		window = 0
	}
	current = max(1, min(current, total))

	lo := max(1, current-window)
	hi := min(total, current+window)

	pages := []int{1}
	if lo > 1 {
		pages = appendGap(pages, lo)
		for p := lo; p <= hi; p++ {
			if p > 1 {
				pages = append(pages, p)
			}
		}
	} else {
		for p := 2; p <= hi; p++ {
			pages = append(pages, p)
		}
	}

	if hi < total {
		pages = appendGap(pages, total)
		pages = append(pages, total)
	}
	return pages
}

// appendGap bridges the last page in pages to next, exclusive.
func appendGap(pages []int, next int) []int {
	last := pages[len(pages)-1]
	switch next - last {
	case 0, 1:
		return pages
	case 2:
		return append(pages, last+1)
	default:
		return append(pages, 0)
	}
}
