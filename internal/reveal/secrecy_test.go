package reveal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisible(t *testing.T) {
	tests := []struct {
		name          string
		isSecret      bool
		authenticated bool
		want          bool
	}{
		{"public gift, guest", false, false, true},
		{"public gift, authenticated", false, true, true},
		{"secret gift, guest", true, false, false},
		{"secret gift, authenticated", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(tt.isSecret, tt.authenticated))
		})
	}
}
