package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// RootFolderID is the identifier of the distinguished root folder. It is
// created once at first store initialization and is never deleted or moved.
var RootFolderID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// MaxFolderNameLength is the maximum folder display name length
const MaxFolderNameLength = 60

// Folder represents a node in the folder hierarchy. ParentID is nil exactly
// for the root folder; every other folder has an existing parent.
type Folder struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Color     string     `json:"color,omitempty"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewRootFolder builds the permanent root folder
func NewRootFolder(now time.Time) *Folder {
	return &Folder{
		ID:        RootFolderID,
		Name:      "All",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsRoot reports whether this folder is the distinguished root
func (f *Folder) IsRoot() bool { return f.ID == RootFolderID }

// RecordID returns the folder's identifier
func (f *Folder) RecordID() uuid.UUID { return f.ID }

// SetRecordID assigns the folder's identifier
func (f *Folder) SetRecordID(id uuid.UUID) { f.ID = id }

// Stamp sets both timestamps, used on insert
func (f *Folder) Stamp(now time.Time) {
	f.CreatedAt = now
	f.UpdatedAt = now
}

// Touch refreshes the update timestamp, used on every mutation
func (f *Folder) Touch(now time.Time) { f.UpdatedAt = now }

// Updated returns the last-modified timestamp
func (f *Folder) Updated() time.Time { return f.UpdatedAt }

// Clone returns a deep copy so callers cannot mutate store state
func (f *Folder) Clone() *Folder {
	c := *f
	if f.ParentID != nil {
		p := *f.ParentID
		c.ParentID = &p
	}
	return &c
}

// Validate checks folder field constraints
func (f *Folder) Validate() error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return fmt.Errorf("folder name must not be empty")
	}
	if utf8.RuneCountInString(name) > MaxFolderNameLength {
		return fmt.Errorf("folder name exceeds %d characters", MaxFolderNameLength)
	}
	if f.ParentID == nil && f.ID != RootFolderID {
		return fmt.Errorf("only the root folder may have no parent")
	}
	return nil
}
