package model

import (
	"encoding/json"
	"fmt"
)

// Block types form a closed set. Decoding rejects unknown tags instead of
// silently dropping them.
const (
	BlockTypeText    = "text"
	BlockTypeQuote   = "quote"
	BlockTypeSecret  = "secret"
	BlockTypeImage   = "image"
	BlockTypeGallery = "gallery"
	BlockTypeAudio   = "audio"
)

// ContentDocument is the body of a gift: an ordered sequence of tagged
// blocks plus sender metadata.
type ContentDocument struct {
	Blocks   []Block         `json:"blocks"`
	Metadata ContentMetadata `json:"metadata"`
}

type ContentMetadata struct {
	SenderName  string `json:"senderName"`
	Description string `json:"description"`
}

// Block is one tagged unit of gift content. Exactly the fields for its
// type are meaningful; the rest stay zero.
type Block struct {
	Type string `json:"type"`

	// text, quote, secret
	Text string `json:"text,omitempty"`

	// quote
	Attribution string `json:"attribution,omitempty"`

	// image, audio
	URL     string `json:"url,omitempty"`
	Caption string `json:"caption,omitempty"`

	// gallery
	Images []string `json:"images,omitempty"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	type raw Block
	var r raw
	err := json.Unmarshal(data, &r)
	if err != nil {
		return err
	}

	switch r.Type {
	case BlockTypeText, BlockTypeQuote, BlockTypeSecret, BlockTypeImage, BlockTypeGallery, BlockTypeAudio:
	default:
		return fmt.Errorf("unknown content block type %q", r.Type)
	}

	*b = Block(r)
	return nil
}

// ParseContentDocument decodes a JSON content document, validating every
// block tag.
func ParseContentDocument(data []byte) (*ContentDocument, error) {
	var doc ContentDocument
	err := json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content document: %w", err)
	}
	return &doc, nil
}
