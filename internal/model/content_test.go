package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentDocument(t *testing.T) {
	raw := []byte(`{
		"blocks": [
			{"type": "text", "text": "hello **you**"},
			{"type": "quote", "text": "a line", "attribution": "someone"},
			{"type": "secret", "text": "just for her"},
			{"type": "image", "url": "/media/images/a.jpg", "caption": "us"},
			{"type": "gallery", "images": ["/a.jpg", "/b.jpg"]},
			{"type": "audio", "url": "/media/audios/song.mp3"}
		],
		"metadata": {"senderName": "O.", "description": "gift one"}
	}`)

	doc, err := ParseContentDocument(raw)
	require.NoError(t, err)

	require.Len(t, doc.Blocks, 6)
	assert.Equal(t, BlockTypeText, doc.Blocks[0].Type)
	assert.Equal(t, "someone", doc.Blocks[1].Attribution)
	assert.Equal(t, []string{"/a.jpg", "/b.jpg"}, doc.Blocks[4].Images)
	assert.Equal(t, "O.", doc.Metadata.SenderName)
}

func TestParseContentDocumentUnknownBlockType(t *testing.T) {
	raw := []byte(`{"blocks": [{"type": "video", "url": "/clip.mp4"}]}`)

	_, err := ParseContentDocument(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown content block type")
}

func TestParseContentDocumentInvalidJSON(t *testing.T) {
	_, err := ParseContentDocument([]byte(`{"blocks": [`))
	assert.Error(t, err)
}
