package model

import (
	"time"
)

type Gift struct {
	ID                 string     `db:"id" json:"id"`
	Number             int        `db:"number" json:"number"`
	Title              *string    `db:"title" json:"title,omitempty"`
	Author             *string    `db:"author" json:"author,omitempty"`
	Nickname           *string    `db:"nickname" json:"nickname,omitempty"`
	OpenDate           time.Time  `db:"open_date" json:"openDate"`
	EnglishDescription string     `db:"english_description" json:"englishDescription"`
	HintImageURL       string     `db:"hint_image_url" json:"hintImageUrl"`
	HintText           string     `db:"hint_text" json:"hintText"`
	CodeText           string     `db:"code_text" json:"codeText"`
	IsSecret           bool       `db:"is_secret" json:"isSecret"`
	Code               *string    `db:"code" json:"code,omitempty"`
	ContentPath        string     `db:"content_path" json:"contentPath"`
	ContentURL         *string    `db:"content_url" json:"contentUrl,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`

	// Loaded separately; not a gifts table column.
	MemoryPhoto *MemoryPhoto `db:"-" json:"memoryPhoto,omitempty"`
}

// MemoryPhoto is an optional one-to-one photograph attached to a gift.
// It unlocks under the same open_date/is_secret rules as its parent.
type MemoryPhoto struct {
	GiftID    string    `db:"gift_id" json:"-"`
	PhotoURL  string    `db:"photo_url" json:"photoUrl"`
	PhotoDate time.Time `db:"photo_date" json:"photoDate"`
}
