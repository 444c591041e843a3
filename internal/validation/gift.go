package validation

import (
	"errors"
)

// GiftInput carries the fields required at gift creation/update time.
type GiftInput struct {
	Number             int
	OpenDateSet        bool
	EnglishDescription string
}

// ValidateGift rejects missing required fields before any store
// interaction happens.
func ValidateGift(in GiftInput) error {
	if in.Number <= 0 {
		return errors.New("number must be a positive integer")
	}
	if !in.OpenDateSet {
		return errors.New("open date is required")
	}
	if in.EnglishDescription == "" {
		return errors.New("description is required")
	}
	return nil
}
