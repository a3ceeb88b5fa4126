package restaurants

import (
	"fmt"
	"sort"
)

// Selection is the cuisine filter chosen on the dashboard. The zero value
// selects everything. It is owned by the caller and not safe for concurrent mutation.
type Selection struct {
	cuisines map[string]struct{}
}

// NewSelection builds a selection from cuisine keys; blanks are ignored.
func NewSelection(cuisines ...string) Selection {
	var s Selection
	for _, c := range cuisines {
		if c != "" {
			s.add(c)
		}
	}

	return s
}

func (s *Selection) add(c string) {
	if s.cuisines == nil {
		s.cuisines = make(map[string]struct{})
	}
	s.cuisines[c] = struct{}{}
}

// Toggle adds or removes a cuisine and returns the updated selection.
func (s Selection) Toggle(cuisine string, on bool) Selection {
	next := NewSelection(s.List()...)
	if on {
		next.add(cuisine)
	} else {
		delete(next.cuisines, cuisine)
	}

	return next
}

// Clear returns the empty selection.
func (s Selection) Clear() Selection {
	return Selection{}
}

// Len is the number of selected cuisines.
func (s Selection) Len() int {
	return len(s.cuisines)
}

// Matches reports whether a cuisine passes the filter.
func (s Selection) Matches(cuisine string) bool {
	if len(s.cuisines) == 0 {
		return true
	}
	_, ok := s.cuisines[cuisine]

	return ok
}

// List returns the selected cuisines sorted.
func (s Selection) List() []string {
	out := make([]string, 0, len(s.cuisines))
	for c := range s.cuisines {
		out = append(out, c)
	}
	sort.Strings(out)

	return out
}

// Summary is the dropdown caption.
func (s Selection) Summary() string {
	switch len(s.cuisines) {
	case 0:
		return "All Cuisines"
	case 1:
		return Label(s.List()[0])
	default:
		return fmt.Sprintf("%d cuisines selected", len(s.cuisines))
	}
}
