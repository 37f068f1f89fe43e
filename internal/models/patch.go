package models

import (
	"time"

	"github.com/google/uuid"
)

// TodoPatch is a partial update of a todo. Each field is independently
// optional; nil leaves the current value untouched. ClearDueDate removes
// an existing due date, which a nil DueDate alone cannot express.
type TodoPatch struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Completed    *bool      `json:"completed,omitempty"`
	Priority     *Priority  `json:"priority,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ClearDueDate bool       `json:"clearDueDate,omitempty"`
	FolderID     *uuid.UUID `json:"folderId,omitempty"`
}

// IsZero reports whether the patch changes nothing
func (p TodoPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil &&
		p.Priority == nil && p.Tags == nil && p.DueDate == nil &&
		!p.ClearDueDate && p.FolderID == nil
}

// Apply merges the patch into the todo. Validation happens against the
// merged record before the store accepts the mutation.
func (p TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Tags != nil {
		t.Tags = NormalizeTags(p.Tags)
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.FolderID != nil {
		f := *p.FolderID
		t.FolderID = &f
	}
}

// FolderPatch is a partial update of a folder's display attributes.
// Reparenting is a separate move operation with cycle checking.
type FolderPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// IsZero reports whether the patch changes nothing
func (p FolderPatch) IsZero() bool {
	return p.Name == nil && p.Color == nil
}

// Apply merges the patch into the folder
func (p FolderPatch) Apply(f *Folder) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Color != nil {
		f.Color = *p.Color
	}
}
