package service

import (
	"encoding/json"
	"fmt"
	"os"
)

// defaultWords is the built-in word-of-day table. The cycle is periodic
// on purpose, the table does not need to cover the whole campaign.
var defaultWords = []string{
	"радость",
	"чудо",
	"мечта",
	"тепло",
	"забота",
	"нежность",
	"улыбка",
	"вдохновение",
	"счастье",
	"волшебство",
	"доброта",
	"свет",
	"уют",
	"искренность",
	"любовь",
}

// LoadWords reads a word table from a JSON array file, falling back to
// the built-in table when no path is configured.
func LoadWords(path string) ([]string, error) {
	if path == "" {
		return defaultWords, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read words file: %w", err)
	}

	var words []string
	err = json.Unmarshal(raw, &words)
	if err != nil {
		return nil, fmt.Errorf("failed to parse words file: %w", err)
	}
	if len(words) == 0 {
		return defaultWords, nil
	}

	return words, nil
}
