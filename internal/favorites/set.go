package favorites

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DefaultKey is the well-known storage key of the favorite set.
const DefaultKey = "likedChalets"

// Set is a set of chalet ids.
type Set map[string]struct{}

// NewSet creates a [Set] containing ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id. Empty ids are ignored.
func (s Set) Add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

// Remove deletes id.
func (s Set) Remove(id string) {
	delete(s, id)
}

// Apply adds id when liked is true and removes it otherwise.
func (s Set) Apply(id string, liked bool) {
	if liked {
		s.Add(id)
	} else {
		s.Remove(id)
	}
}

// IDs returns the members in sorted order.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Diff returns the events that turn prev into next, sorted by id.
func Diff(prev, next Set) []Event {
	var events []Event
	for id := range next {
		if !prev.Has(id) {
			events = append(events, Event{ChaletID: id, IsLiked: true})
		}
	}
	for id := range prev {
		if !next.Has(id) {
			events = append(events, Event{ChaletID: id, IsLiked: false})
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ChaletID < events[j].ChaletID })
	return events
}

// Encode serializes the set as a JSON array of id strings.
func Encode(s Set) ([]byte, error) {
	return json.Marshal(s.IDs())
}

// Decode parses a JSON array of id strings. Anything else is an error.
func Decode(data []byte) (Set, error) {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("invalid favorite set: %w", err)
	}
	return NewSet(ids...), nil
}
