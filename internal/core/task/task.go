// Package task defines the to-do task domain model and the rules for
// creating, toggling and editing tasks.
package task

import (
	"strings"
	"unicode"
)

// Priority is the urgency level attached to a Task. Values are stored by
// name. Edits store the submitted text verbatim, so a persisted Priority is
// not guaranteed to be one of the declared constants; use IsValid to check.
type Priority string

const (
	PriorityVeryLow  Priority = "VERY_LOW"
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityVeryHigh Priority = "VERY_HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// DefaultPriority is assigned to newly created tasks.
const DefaultPriority = PriorityMedium

// Priorities returns all declared priorities in ascending order of urgency.
func Priorities() []Priority {
	return []Priority{
		PriorityVeryLow,
		PriorityLow,
		PriorityMedium,
		PriorityHigh,
		PriorityVeryHigh,
		PriorityCritical,
	}
}

// IsValid reports whether p is one of the declared priorities.
func (p Priority) IsValid() bool {
	return p.Rank() >= 0
}

// Rank returns the position of p in the ordered enumeration, or -1 when p
// is not a declared priority.
func (p Priority) Rank() int {
	for i, v := range Priorities() {
		if v == p {
			return i
		}
	}
	return -1
}

// Label returns a human readable form of the priority name, e.g.
// "VERY_HIGH" becomes "Very High".
func (p Priority) Label() string {
	return TitleCase(string(p))
}

func (p Priority) String() string {
	return string(p)
}

// TitleCase replaces underscores with spaces, then uppercases every letter
// that follows a non-letter and lowercases all other letters.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range strings.ReplaceAll(s, "_", " ") {
		switch {
		case !unicode.IsLetter(r):
			prevLetter = false
		case prevLetter:
			r = unicode.ToLower(r)
		default:
			r = unicode.ToUpper(r)
			prevLetter = true
		}
		b.WriteRune(r)
	}

	return b.String()
}

// Task is a single to-do item.
type Task struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Progress    int      `json:"progress"`
	Completed   bool     `json:"completed"`
}

// New returns a task with the given description and default field values.
// The ID is assigned by the store.
func New(description string) Task {
	return Task{
		Description: description,
		Priority:    DefaultPriority,
		Progress:    0,
		Completed:   false,
	}
}
