package model

import (
	"time"
)

const (
	FileTypeImage = "image"
	FileTypeAudio = "audio"
)

// File is an uploaded media object referenced by URL from content blocks
// and hint images. The bytes live in object storage; this row only tracks
// the reference.
type File struct {
	ID           string    `db:"id"`
	GiftID       *string   `db:"gift_id"` // optional owning gift
	Type         string    `db:"type"`
	Filename     string    `db:"filename"`
	OriginalName string    `db:"original_name"`
	MimeType     string    `db:"mime_type"`
	Size         int64     `db:"size"`
	StoragePath  string    `db:"storage_path"`
	CreatedAt    time.Time `db:"created_at"`
}
