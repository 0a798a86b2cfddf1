// Package models defines the client-side data types shared by the backend
// facade, the view model and the CLI: notes, their transport record, the
// authentication status and the application state.
package models

import (
	"slices"
	"time"
)

// Note is a single memory shown to the user.
type Note struct {
	// ID is assigned on the client at creation time and never changes.
	ID string

	// Name is the non-empty display title.
	Name string

	// Description is optional free text; empty means absent.
	Description string

	// ImageName is the blob key of the attached image; empty means no image.
	ImageName string

	// CreatedAt is set by the backend, or by the client on creation.
	CreatedAt *time.Time

	// ImageURL is resolved asynchronously from ImageName and is never
	// persisted. It may be empty or stale even when ImageName is set.
	ImageURL string
}

// NoteData is the record exchanged with the remote record API.
type NoteData struct {
	ID          string
	Name        string
	Description *string
	Image       *string
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

// FromTransport maps a remote record onto a Note. ImageURL is left empty;
// resolving it is the caller's job.
func FromTransport(d NoteData) Note {
	n := Note{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	}
	if d.Description != nil {
		n.Description = *d.Description
	}
	if d.Image != nil {
		n.ImageName = *d.Image
	}
	return n
}

// ToTransport maps n onto a remote record. A missing CreatedAt defaults to now.
func (n Note) ToTransport(now time.Time) NoteData {
	d := NoteData{ID: n.ID, Name: n.Name}
	if n.Description != "" {
		desc := n.Description
		d.Description = &desc
	}
	if n.ImageName != "" {
		img := n.ImageName
		d.Image = &img
	}
	createdAt := now
	if n.CreatedAt != nil {
		createdAt = *n.CreatedAt
	}
	d.CreatedAt = &createdAt
	return d
}

// HasImage reports whether an image blob is attached.
func (n Note) HasImage() bool {
	return n.ImageName != ""
}

// DisplayDate renders CreatedAt as a short date, or "" when unknown.
func (n Note) DisplayDate() string {
	if n.CreatedAt == nil {
		return ""
	}
	return n.CreatedAt.Local().Format("1/2/06")
}

// CompareCreatedAtDesc orders notes newest first. Notes without a
// timestamp sort after every timestamped note and compare equal to each
// other, which keeps the order total.
func CompareCreatedAtDesc(a, b Note) int {
	switch {
	case a.CreatedAt == nil && b.CreatedAt == nil:
		return 0
	case a.CreatedAt == nil:
		return 1
	case b.CreatedAt == nil:
		return -1
	default:
		return b.CreatedAt.Compare(*a.CreatedAt)
	}
}

// SortByCreatedAtDesc sorts notes in place, newest first, keeping the
// relative order of notes that compare equal.
func SortByCreatedAtDesc(notes []Note) {
	slices.SortStableFunc(notes, CompareCreatedAtDesc)
}
