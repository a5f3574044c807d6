package tasks

import (
	"fmt"

	"github.com/desertthunder/chalet/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchChalets Phase = iota
	FetchProfile
	FetchStats
	FetchFavorites
	PrefetchDetails
	ExportChalets
)

func (p Phase) String() string {
	switch p {
	case FetchChalets:
		return "fetch_chalets"
	case FetchProfile:
		return "fetch_profile"
	case FetchStats:
		return "fetch_stats"
	case FetchFavorites:
		return "fetch_favorites"
	case PrefetchDetails:
		return "prefetch_details"
	case ExportChalets:
		return "export_chalets"
	default:
		return ""
	}
}

func operationUpdate(endpoint endpointOperation, step int, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   endpoint.phase,
		Step:    step,
		Total:   total,
		Message: endpoint.message,
	}
}

func fetchChaletsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchChalets,
		Step:    step,
		Total:   total,
		Message: "Fetching chalets...",
	}
}

func foundChaletsUpdate(step, total, matched, all int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchChalets,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found %d of %d chalets", matched, all),
	}
}

func prefetchingUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PrefetchDetails,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Loading details for %d chalets...", total),
	}
}

func prefetchedUpdate(step, total int, c *models.Chalet) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PrefetchDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, c.Name),
		Data:    c,
	}
}

func prefetchFailedUpdate(step, total int, id string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PrefetchDetails,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, id, err),
	}
}

func exportingUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportChalets,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportChalets,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportChalets,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
