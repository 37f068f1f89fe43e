package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Priority represents how urgent a todo is
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority values
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Rank returns the sort weight of a priority: high > medium > low
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

const (
	// MinTitleLength is the minimum todo title length after trimming
	MinTitleLength = 2
	// MaxTitleLength is the maximum todo title length after trimming
	MaxTitleLength = 100
	// MaxDescriptionLength is the maximum todo description length
	MaxDescriptionLength = 500
	// MaxTags is the maximum number of tags on a single todo
	MaxTags = 10
	// MaxTagLength is the maximum length of a single tag
	MaxTagLength = 20
)

var tagPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Todo represents a single task record
type Todo struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	FolderID    *uuid.UUID `json:"folderId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// RecordID returns the todo's identifier
func (t *Todo) RecordID() uuid.UUID { return t.ID }

// SetRecordID assigns the todo's identifier
func (t *Todo) SetRecordID(id uuid.UUID) { t.ID = id }

// Stamp sets both timestamps, used on insert
func (t *Todo) Stamp(now time.Time) {
	t.CreatedAt = now
	t.UpdatedAt = now
}

// Touch refreshes the update timestamp, used on every mutation
func (t *Todo) Touch(now time.Time) { t.UpdatedAt = now }

// Updated returns the last-modified timestamp
func (t *Todo) Updated() time.Time { return t.UpdatedAt }

// Clone returns a deep copy so callers cannot mutate store state
func (t *Todo) Clone() *Todo {
	c := *t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.FolderID != nil {
		f := *t.FolderID
		c.FolderID = &f
	}
	return &c
}

// Validate checks all field constraints. It does not touch timestamps,
// which are owned by the store.
func (t *Todo) Validate() error {
	title := strings.TrimSpace(t.Title)
	// length limits are in characters, so multibyte text counts by rune
	if n := utf8.RuneCountInString(title); n < MinTitleLength || n > MaxTitleLength {
		return fmt.Errorf("title must be %d-%d characters, got %d", MinTitleLength, MaxTitleLength, n)
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return fmt.Errorf("description exceeds %d characters", MaxDescriptionLength)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("invalid priority: %s (must be 'low', 'medium', or 'high')", t.Priority)
	}
	if len(t.Tags) > MaxTags {
		return fmt.Errorf("too many tags: %d (maximum %d)", len(t.Tags), MaxTags)
	}
	seen := make(map[string]struct{}, len(t.Tags))
	for _, tag := range t.Tags {
		if tag == "" || utf8.RuneCountInString(tag) > MaxTagLength {
			return fmt.Errorf("tag %q must be 1-%d characters", tag, MaxTagLength)
		}
		if !tagPattern.MatchString(tag) {
			return fmt.Errorf("tag %q contains invalid characters (allowed: letters, digits, '-', '_')", tag)
		}
		if _, dup := seen[tag]; dup {
			return fmt.Errorf("duplicate tag: %q", tag)
		}
		seen[tag] = struct{}{}
	}
	return nil
}

// HasTag reports whether the todo carries the given tag
func (t *Todo) HasTag(tag string) bool {
	for _, got := range t.Tags {
		if got == tag {
			return true
		}
	}
	return false
}

// NormalizeTags trims whitespace, drops empties and removes duplicates
// while preserving first-seen order for display
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
