package service

import (
	"testing"
	"time"

	"github.com/okoval/giftbox/internal/model"
	"github.com/okoval/giftbox/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGiftInput(number int) GiftInput {
	return GiftInput{
		Number:             number,
		OpenDate:           time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		EnglishDescription: "a little surprise",
		HintText:           "look closer",
		ContentPath:        "/content/gift-1.json",
	}
}

func sampleDoc() *model.ContentDocument {
	return &model.ContentDocument{
		Blocks: []model.Block{
			{Type: model.BlockTypeText, Text: "hello"},
		},
		Metadata: model.ContentMetadata{SenderName: "O.", Description: "first gift"},
	}
}

func TestGiftServiceCreate(t *testing.T) {
	repo := newFakeGiftRepo()
	contentRepo := newFakeContentRepo()
	inv := &spyInvalidator{}
	svc := NewGiftService(repo, contentRepo, inv)

	gift, err := svc.Create(validGiftInput(1), sampleDoc())
	require.NoError(t, err)
	require.NotNil(t, gift)

	assert.NotEmpty(t, gift.ID)
	assert.Equal(t, 1, gift.Number)

	stored, err := repo.ByID(gift.ID)
	require.NoError(t, err)
	assert.Equal(t, gift.Number, stored.Number)

	doc, err := contentRepo.ByGiftID(gift.ID)
	require.NoError(t, err)
	assert.Len(t, doc.Blocks, 1)

	assert.Equal(t, 1, inv.calls)
}

func TestGiftServiceCreateInvalidInput(t *testing.T) {
	repo := newFakeGiftRepo()
	svc := NewGiftService(repo, newFakeContentRepo(), &spyInvalidator{})

	tests := []struct {
		name   string
		mutate func(*GiftInput)
	}{
		{"missing number", func(in *GiftInput) { in.Number = 0 }},
		{"negative number", func(in *GiftInput) { in.Number = -3 }},
		{"missing open date", func(in *GiftInput) { in.OpenDate = time.Time{} }},
		{"missing description", func(in *GiftInput) { in.EnglishDescription = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validGiftInput(1)
			tt.mutate(&in)

			_, err := svc.Create(in, sampleDoc())
			assert.ErrorIs(t, err, ErrInvalidGiftInput)
		})
	}

	// Rejected synchronously, before any store interaction.
	assert.Equal(t, 0, repo.createCalls)
	assert.Empty(t, repo.gifts)
}

func TestGiftServiceCreateDuplicateNumber(t *testing.T) {
	repo := newFakeGiftRepo()
	contentRepo := newFakeContentRepo()
	svc := NewGiftService(repo, contentRepo, &spyInvalidator{})

	first, err := svc.Create(validGiftInput(7), sampleDoc())
	require.NoError(t, err)

	second := validGiftInput(7)
	second.EnglishDescription = "different gift, same number"
	_, err = svc.Create(second, sampleDoc())
	assert.ErrorIs(t, err, ErrNumberTaken)

	// Store state untouched: still exactly one gift with that number.
	gifts, err := repo.Gifts("")
	require.NoError(t, err)
	require.Len(t, gifts, 1)
	assert.Equal(t, first.ID, gifts[0].ID)
}

func TestGiftServiceCreateContentSaveFails(t *testing.T) {
	repo := newFakeGiftRepo()
	contentRepo := newFakeContentRepo()
	contentRepo.failSave = errSaveFailed
	svc := NewGiftService(repo, contentRepo, &spyInvalidator{})

	_, err := svc.Create(validGiftInput(3), sampleDoc())
	require.Error(t, err)
	assert.ErrorIs(t, err, errSaveFailed)

	// Compensating delete: no gift with the attempted number survives.
	_, err = repo.ByNumber(3)
	assert.Error(t, err)
	assert.Empty(t, repo.gifts)
}

func TestGiftServiceUpdate(t *testing.T) {
	repo := newFakeGiftRepo()
	inv := &spyInvalidator{}
	svc := NewGiftService(repo, newFakeContentRepo(), inv)

	gift, err := svc.Create(validGiftInput(1), sampleDoc())
	require.NoError(t, err)

	in := validGiftInput(1)
	in.IsSecret = true
	in.OpenDate = gift.OpenDate.AddDate(0, 0, 14)

	updated, err := svc.Update(gift.ID, in)
	require.NoError(t, err)
	assert.True(t, updated.IsSecret)
	assert.Equal(t, gift.OpenDate.AddDate(0, 0, 14), updated.OpenDate)
	assert.GreaterOrEqual(t, inv.calls, 2)
}

func TestGiftServiceUpdateNumberConflict(t *testing.T) {
	repo := newFakeGiftRepo()
	svc := NewGiftService(repo, newFakeContentRepo(), &spyInvalidator{})

	_, err := svc.Create(validGiftInput(1), sampleDoc())
	require.NoError(t, err)
	second, err := svc.Create(validGiftInput(2), sampleDoc())
	require.NoError(t, err)

	in := validGiftInput(1)
	_, err = svc.Update(second.ID, in)
	assert.ErrorIs(t, err, ErrNumberTaken)
}

func TestGiftServiceDelete(t *testing.T) {
	repo := newFakeGiftRepo()
	contentRepo := newFakeContentRepo()
	svc := NewGiftService(repo, contentRepo, &spyInvalidator{})

	gift, err := svc.Create(validGiftInput(1), sampleDoc())
	require.NoError(t, err)

	err = svc.Delete(gift.ID)
	require.NoError(t, err)

	_, err = repo.ByID(gift.ID)
	assert.Error(t, err)
	_, err = contentRepo.ByGiftID(gift.ID)
	assert.Error(t, err)
}

func TestGiftServiceDeleteGiftRowFirst(t *testing.T) {
	repo := newFakeGiftRepo()
	contentRepo := newFakeContentRepo()
	svc := NewGiftService(repo, contentRepo, &spyInvalidator{})

	gift, err := svc.Create(validGiftInput(1), sampleDoc())
	require.NoError(t, err)

	// A failing content delete must never leave a gift without content:
	// the gift row goes first, the orphaned contents row is unreachable.
	contentRepo.failDelete = errSaveFailed

	err = svc.Delete(gift.ID)
	require.NoError(t, err)

	_, err = repo.ByID(gift.ID)
	assert.ErrorIs(t, err, repository.ErrGiftNotFound)
}

func TestGiftServiceMemoryPhoto(t *testing.T) {
	repo := newFakeGiftRepo()
	svc := NewGiftService(repo, newFakeContentRepo(), &spyInvalidator{})

	gift, err := svc.Create(validGiftInput(1), sampleDoc())
	require.NoError(t, err)

	photoDate := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	err = svc.SetMemoryPhoto(gift.ID, "https://example.com/photo.jpg", photoDate)
	require.NoError(t, err)

	got, err := repo.ByID(gift.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MemoryPhoto)
	assert.Equal(t, "https://example.com/photo.jpg", got.MemoryPhoto.PhotoURL)

	err = svc.DeleteMemoryPhoto(gift.ID)
	require.NoError(t, err)

	got, err = repo.ByID(gift.ID)
	require.NoError(t, err)
	assert.Nil(t, got.MemoryPhoto)
}
