package entity

import "time"

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// File is the metadata of an uploaded object owned by exactly one user.
// StoredName addresses the bytes in blob storage; OriginalName is never used for addressing.
type File struct {
	ID           string
	OwnerID      string
	OriginalName string
	StoredName   string
	Mime         string
	Size         int64
	Visibility   Visibility
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
