package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/okoval/giftbox/internal/model"
	"github.com/okoval/giftbox/internal/repository"
	"github.com/okoval/giftbox/internal/validation"
)

var (
	ErrInvalidGiftInput = errors.New("invalid gift input")
	ErrNumberTaken      = errors.New("gift number already taken")
)

// renderInvalidator is the hook into the reveal render cache. Every
// mutation here must flush it so a stale unlock state is never served
// across an admin edit.
type renderInvalidator interface {
	InvalidateCache()
}

type GiftService struct {
	repo        repository.GiftRepository
	contentRepo repository.ContentRepository
	invalidator renderInvalidator
}

func NewGiftService(repo repository.GiftRepository, contentRepo repository.ContentRepository, invalidator renderInvalidator) *GiftService {
	return &GiftService{
		repo:        repo,
		contentRepo: contentRepo,
		invalidator: invalidator,
	}
}

// GiftInput carries admin-supplied gift fields.
type GiftInput struct {
	Number             int
	Title              *string
	Author             *string
	Nickname           *string
	OpenDate           time.Time
	EnglishDescription string
	HintImageURL       string
	HintText           string
	CodeText           string
	IsSecret           bool
	Code               *string
	ContentPath        string
	ContentURL         *string
}

func (in GiftInput) validate() error {
	err := validation.ValidateGift(validation.GiftInput{
		Number:             in.Number,
		OpenDateSet:        !in.OpenDate.IsZero(),
		EnglishDescription: in.EnglishDescription,
	})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidGiftInput, err)
	}
	return nil
}

// Create creates a gift together with its content document. The number
// uniqueness check runs before any write; if the content write fails
// after the gift row was created, the row is deleted again so no gift
// ever exists without content.
func (s *GiftService) Create(in GiftInput, doc *model.ContentDocument) (*model.Gift, error) {
	err := in.validate()
	if err != nil {
		return nil, err
	}

	_, err = s.repo.ByNumber(in.Number)
	if err == nil {
		return nil, ErrNumberTaken
	}
	if !errors.Is(err, repository.ErrGiftNotFound) {
		return nil, fmt.Errorf("failed to check gift number: %w", err)
	}

	now := time.Now()
	gift := &model.Gift{
		ID:                 uuid.New().String(),
		Number:             in.Number,
		Title:              in.Title,
		Author:             in.Author,
		Nickname:           in.Nickname,
		OpenDate:           in.OpenDate,
		EnglishDescription: in.EnglishDescription,
		HintImageURL:       in.HintImageURL,
		HintText:           in.HintText,
		CodeText:           in.CodeText,
		IsSecret:           in.IsSecret,
		Code:               in.Code,
		ContentPath:        in.ContentPath,
		ContentURL:         in.ContentURL,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.repo.Create(gift)
	if errors.Is(err, repository.ErrNumberConflict) {
		// Lost the race against a concurrent create; the store stays
		// untouched and the second writer gets the conflict.
		return nil, ErrNumberTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create gift: %w", err)
	}

	if doc == nil {
		doc = &model.ContentDocument{}
	}
	err = s.contentRepo.Save(gift.ID, doc)
	if err != nil {
		// Rollback: delete the gift row so no orphan survives. The
		// cleanup error must not mask the original failure.
		delErr := s.repo.Delete(gift.ID)
		if delErr != nil {
			slog.Error("failed to delete gift during rollback", "error", delErr, "gift_id", gift.ID)
		}
		return nil, fmt.Errorf("failed to save gift content: %w", err)
	}

	s.invalidator.InvalidateCache()
	return gift, nil
}

func (s *GiftService) ByID(giftID string) (*model.Gift, error) {
	return s.repo.ByID(giftID)
}

func (s *GiftService) ByNumber(number int) (*model.Gift, error) {
	return s.repo.ByNumber(number)
}

func (s *GiftService) Gifts(sortBy string) ([]*model.Gift, error) {
	return s.repo.Gifts(sortBy)
}

func (s *GiftService) Content(giftID string) (*model.ContentDocument, error) {
	return s.contentRepo.ByGiftID(giftID)
}

func (s *GiftService) Update(giftID string, in GiftInput) (*model.Gift, error) {
	err := in.validate()
	if err != nil {
		return nil, err
	}

	gift, err := s.repo.ByID(giftID)
	if err != nil {
		return nil, err
	}

	if in.Number != gift.Number {
		existing, err := s.repo.ByNumber(in.Number)
		if err == nil && existing.ID != giftID {
			return nil, ErrNumberTaken
		}
		if err != nil && !errors.Is(err, repository.ErrGiftNotFound) {
			return nil, fmt.Errorf("failed to check gift number: %w", err)
		}
	}

	gift.Number = in.Number
	gift.Title = in.Title
	gift.Author = in.Author
	gift.Nickname = in.Nickname
	gift.OpenDate = in.OpenDate
	gift.EnglishDescription = in.EnglishDescription
	gift.HintImageURL = in.HintImageURL
	gift.HintText = in.HintText
	gift.CodeText = in.CodeText
	gift.IsSecret = in.IsSecret
	gift.Code = in.Code
	gift.ContentPath = in.ContentPath
	gift.ContentURL = in.ContentURL
	gift.UpdatedAt = time.Now()

	err = s.repo.Update(gift)
	if errors.Is(err, repository.ErrNumberConflict) {
		return nil, ErrNumberTaken
	}
	if err != nil {
		return nil, err
	}

	s.invalidator.InvalidateCache()
	return gift, nil
}

// UpdateContent replaces the gift's content document.
func (s *GiftService) UpdateContent(giftID string, doc *model.ContentDocument) error {
	_, err := s.repo.ByID(giftID)
	if err != nil {
		return err
	}

	err = s.contentRepo.Save(giftID, doc)
	if err != nil {
		return fmt.Errorf("failed to save gift content: %w", err)
	}

	s.invalidator.InvalidateCache()
	return nil
}

func (s *GiftService) SetMemoryPhoto(giftID, photoURL string, photoDate time.Time) error {
	_, err := s.repo.ByID(giftID)
	if err != nil {
		return err
	}

	err = s.repo.SetMemoryPhoto(&model.MemoryPhoto{
		GiftID:    giftID,
		PhotoURL:  photoURL,
		PhotoDate: photoDate,
	})
	if err != nil {
		return fmt.Errorf("failed to set memory photo: %w", err)
	}

	s.invalidator.InvalidateCache()
	return nil
}

func (s *GiftService) DeleteMemoryPhoto(giftID string) error {
	err := s.repo.DeleteMemoryPhoto(giftID)
	if err != nil {
		return err
	}

	s.invalidator.InvalidateCache()
	return nil
}

// Delete removes the gift and its content together. The gifts row goes
// first: if that fails, gift and content both survive intact, and once
// it is gone no content-less gift can ever be observed. Contents cascade
// with the row where the store enforces FKs; the explicit delete covers
// stores that do not, and only an orphaned, unreachable contents row is
// at stake if it fails.
func (s *GiftService) Delete(giftID string) error {
	_, err := s.repo.ByID(giftID)
	if err != nil {
		return err
	}

	err = s.repo.Delete(giftID)
	if err != nil {
		return err
	}

	err = s.contentRepo.Delete(giftID)
	if err != nil {
		slog.Error("failed to delete gift content after gift row", "error", err, "gift_id", giftID)
	}

	s.invalidator.InvalidateCache()
	return nil
}
