package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/desertthunder/chalet/internal/models"
)

// Backend payloads for the same entity vary by endpoint and version. Each canonical
// field is read from the first alias present.
var (
	chaletIDKeys       = []string{"_id", "id", "chaletId"}
	chaletNameKeys     = []string{"name", "title"}
	chaletBedroomKeys  = []string{"bedrooms", "bedroom", "nbBedrooms", "rooms"}
	chaletGuestKeys    = []string{"guests", "maxGuests", "capacity"}
	chaletPriceKeys    = []string{"price", "pricePerNight", "nightlyRate"}
	chaletLocationKeys = []string{"location", "city", "address"}
	chaletImageKeys    = []string{"images", "photos", "gallery"}
	chaletLikeKeys     = []string{"likes", "likeCount", "favoritesCount"}
	chaletDescKeys     = []string{"description", "desc", "summary"}
	chaletAmenityKeys  = []string{"amenities", "features"}
)

// NormalizeChalet maps a raw backend chalet object onto [models.Chalet].
func NormalizeChalet(raw map[string]any) models.Chalet {
	return models.Chalet{
		ID:          firstString(raw, chaletIDKeys),
		Name:        firstString(raw, chaletNameKeys),
		Description: firstString(raw, chaletDescKeys),
		Location:    firstLocation(raw, chaletLocationKeys),
		Bedrooms:    int(firstNumber(raw, chaletBedroomKeys)),
		Guests:      int(firstNumber(raw, chaletGuestKeys)),
		Price:       firstNumber(raw, chaletPriceKeys),
		Images:      firstStringList(raw, chaletImageKeys, "url"),
		Amenities:   firstStringList(raw, chaletAmenityKeys, "name"),
		LikeCount:   firstCount(raw, chaletLikeKeys),
	}
}

// NormalizeChalets maps a list of raw entries, skipping those without an id.
//
// Entries may be chalet objects, bare id strings, or favorite records that wrap or reference a chalet.
func NormalizeChalets(raw []any) []models.Chalet {
	chalets := make([]models.Chalet, 0, len(raw))
	for _, item := range raw {
		var c models.Chalet
		switch v := item.(type) {
		case string:
			c = models.Chalet{ID: v}
		case map[string]any:
			c = normalizeRecord(v)
		}
		if c.ID == "" {
			continue
		}
		chalets = append(chalets, c)
	}
	return chalets
}

func normalizeRecord(obj map[string]any) models.Chalet {
	for _, key := range []string{"chalet", "chaletId"} {
		if inner, ok := obj[key].(map[string]any); ok {
			return NormalizeChalet(inner)
		}
	}
	if ref, ok := obj["chaletId"].(string); ok && firstString(obj, chaletNameKeys) == "" {
		return models.Chalet{ID: ref}
	}
	return NormalizeChalet(obj)
}

// NormalizeUser maps a raw backend user object onto [models.User].
func NormalizeUser(raw map[string]any) models.User {
	name := firstString(raw, []string{"name", "fullName", "username"})
	if name == "" {
		first := firstString(raw, []string{"firstName"})
		last := firstString(raw, []string{"lastName"})
		name = strings.TrimSpace(first + " " + last)
	}
	role := firstString(raw, []string{"role"})
	if role == "" {
		if admin, ok := raw["isAdmin"].(bool); ok && admin {
			role = string(models.RoleAdmin)
		}
	}
	return models.User{
		ID:    firstString(raw, []string{"_id", "id", "userId"}),
		Name:  name,
		Email: firstString(raw, []string{"email"}),
		Role:  models.ParseRole(role),
	}
}

func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// firstLocation accepts plain strings or {city, country} style objects.
func firstLocation(raw map[string]any, keys []string) string {
	if s := firstString(raw, keys); s != "" {
		return s
	}
	for _, k := range keys {
		obj, ok := raw[k].(map[string]any)
		if !ok {
			continue
		}
		var parts []string
		for _, field := range []string{"address", "city", "region", "country"} {
			if s, ok := obj[field].(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	return ""
}

func firstNumber(raw map[string]any, keys []string) float64 {
	for _, k := range keys {
		if n, ok := toNumber(raw[k]); ok {
			return n
		}
	}
	return 0
}

// firstCount reads a count that is either numeric or the length of an array of likers.
func firstCount(raw map[string]any, keys []string) int {
	for _, k := range keys {
		if arr, ok := raw[k].([]any); ok {
			return len(arr)
		}
		if n, ok := toNumber(raw[k]); ok {
			return int(n)
		}
	}
	return 0
}

func firstStringList(raw map[string]any, keys []string, objKey string) []string {
	for _, k := range keys {
		arr, ok := raw[k].([]any)
		if !ok {
			if s, ok := raw[k].(string); ok && s != "" {
				return []string{s}
			}
			continue
		}
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			switch v := item.(type) {
			case string:
				if v != "" {
					out = append(out, v)
				}
			case map[string]any:
				if s, ok := v[objKey].(string); ok && s != "" {
					out = append(out, s)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// toNumber accepts finite JSON numbers and numeric strings with an optional "$" prefix.
func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(n, "$")), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
