package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okoval/giftbox/internal/model"
	"github.com/okoval/giftbox/internal/repository"
	"github.com/okoval/giftbox/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var revealZone = time.FixedZone("UTC+5", 5*60*60)

func newRevealFixture(t *testing.T, now time.Time) (*RevealService, *fakeGiftRepo, *fakeContentRepo) {
	t.Helper()

	repo := newFakeGiftRepo()
	contentRepo := newFakeContentRepo()
	svc := NewRevealService(repo, contentRepo, timeutil.NewFixedClock(now), RevealConfig{
		Location:        revealZone,
		Words:           []string{"sun", "moon", "star"},
		WordCycleStart:  time.Date(2025, 6, 1, 0, 0, 0, 0, revealZone),
		WordCycleLength: 3,
		Birthday:        time.Date(2025, 11, 14, 0, 0, 0, 0, revealZone),
		BirthdayWord:    "happy birthday",
		CountdownTarget: time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone),
		CacheTTL:        time.Second,
	})
	return svc, repo, contentRepo
}

func seedGift(t *testing.T, repo *fakeGiftRepo, contentRepo *fakeContentRepo, number int, openDate time.Time, isSecret bool) *model.Gift {
	t.Helper()

	title := "gift title"
	code := "ЛЮ"
	gift := &model.Gift{
		ID:                 "gift-" + time.Now().Format("150405.000000") + "-" + string(rune('a'+number)),
		Number:             number,
		Title:              &title,
		OpenDate:           openDate,
		EnglishDescription: "a surprise",
		HintImageURL:       "https://example.com/hint.jpg",
		HintText:           "something warm",
		CodeText:           "piece of the cipher",
		IsSecret:           isSecret,
		Code:               &code,
	}
	require.NoError(t, repo.Create(gift))
	contentRepo.docs[gift.ID] = &model.ContentDocument{
		Blocks: []model.Block{
			{Type: model.BlockTypeText, Text: "dear reader"},
			{Type: model.BlockTypeImage, URL: "https://example.com/img.jpg", Caption: "us"},
		},
		Metadata: model.ContentMetadata{SenderName: "O.", Description: "memories"},
	}
	return gift
}

func TestRenderGiftLockedPlaceholder(t *testing.T) {
	open := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, revealZone)

	svc, repo, contentRepo := newRevealFixture(t, now)
	gift := seedGift(t, repo, contentRepo, 1, open, false)

	got, err := svc.RenderGift(context.Background(), gift.ID, false)
	require.NoError(t, err)

	assert.False(t, got.Unlocked)
	assert.Equal(t, open, got.OpenDate)
	// Nothing leaks: no title, code, hints or body.
	assert.Nil(t, got.Title)
	assert.Nil(t, got.Code)
	assert.Empty(t, got.HintText)
	assert.Empty(t, got.HintImageURL)
	assert.Empty(t, got.Blocks)
	assert.Empty(t, got.SenderName)
	assert.Nil(t, got.MemoryPhoto)
}

func TestRenderGiftExactBoundary(t *testing.T) {
	open := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)

	svc, repo, contentRepo := newRevealFixture(t, open)
	gift := seedGift(t, repo, contentRepo, 1, open, false)

	got, err := svc.RenderGift(context.Background(), gift.ID, false)
	require.NoError(t, err)

	assert.True(t, got.Unlocked)
	assert.True(t, got.BodyVisible)
	require.Len(t, got.Blocks, 2)
	assert.Equal(t, "dear reader", got.Blocks[0].Text)
	assert.Contains(t, got.Blocks[0].HTML, "<p>dear reader</p>")
	assert.Equal(t, "O.", got.SenderName)
}

func TestRenderGiftSecretForGuest(t *testing.T) {
	open := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)
	now := open.Add(time.Hour)

	svc, repo, contentRepo := newRevealFixture(t, now)
	gift := seedGift(t, repo, contentRepo, 1, open, true)

	got, err := svc.RenderGift(context.Background(), gift.ID, false)
	require.NoError(t, err)

	assert.True(t, got.Unlocked)
	assert.False(t, got.BodyVisible)

	// Preview fields stay visible.
	require.NotNil(t, got.Title)
	assert.Equal(t, "something warm", got.HintText)
	require.NotNil(t, got.Code)
	assert.Equal(t, "ЛЮ", *got.Code)

	// Every body block is substituted, never partially redacted.
	require.Len(t, got.Blocks, 2)
	for _, b := range got.Blocks {
		assert.True(t, b.AccessDenied)
		assert.Equal(t, accessDeniedText, b.Text)
		assert.Empty(t, b.URL)
		assert.Empty(t, b.HTML)
	}
}

func TestRenderGiftSecretForAuthenticated(t *testing.T) {
	open := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)

	svc, repo, contentRepo := newRevealFixture(t, open.Add(time.Minute))
	gift := seedGift(t, repo, contentRepo, 1, open, true)

	got, err := svc.RenderGift(context.Background(), gift.ID, true)
	require.NoError(t, err)

	assert.True(t, got.BodyVisible)
	require.Len(t, got.Blocks, 2)
	assert.Equal(t, "dear reader", got.Blocks[0].Text)
	assert.False(t, got.Blocks[0].AccessDenied)
}

func TestRenderGiftSecretMemoryPhotoHidden(t *testing.T) {
	open := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)
	now := open.Add(time.Hour)

	svc, repo, contentRepo := newRevealFixture(t, now)
	gift := seedGift(t, repo, contentRepo, 1, open, true)
	require.NoError(t, repo.SetMemoryPhoto(&model.MemoryPhoto{
		GiftID:    gift.ID,
		PhotoURL:  "https://example.com/private.jpg",
		PhotoDate: open,
	}))

	// The memory photo is body content: a guest sees nothing of it on an
	// unlocked secret gift.
	guest, err := svc.RenderGift(context.Background(), gift.ID, false)
	require.NoError(t, err)
	assert.True(t, guest.Unlocked)
	assert.Nil(t, guest.MemoryPhoto)

	authed, err := svc.RenderGift(context.Background(), gift.ID, true)
	require.NoError(t, err)
	require.NotNil(t, authed.MemoryPhoto)
	assert.Equal(t, "https://example.com/private.jpg", authed.MemoryPhoto.PhotoURL)
}

func TestRenderGiftMemoryPhotoForGuestNonSecret(t *testing.T) {
	open := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)

	svc, repo, contentRepo := newRevealFixture(t, open)
	gift := seedGift(t, repo, contentRepo, 1, open, false)
	require.NoError(t, repo.SetMemoryPhoto(&model.MemoryPhoto{
		GiftID:    gift.ID,
		PhotoURL:  "https://example.com/shared.jpg",
		PhotoDate: open,
	}))

	got, err := svc.RenderGift(context.Background(), gift.ID, false)
	require.NoError(t, err)
	require.NotNil(t, got.MemoryPhoto)
	assert.Equal(t, "https://example.com/shared.jpg", got.MemoryPhoto.PhotoURL)
}

func TestRenderGiftNotFound(t *testing.T) {
	svc, _, _ := newRevealFixture(t, time.Now())

	_, err := svc.RenderGift(context.Background(), "missing", false)
	assert.ErrorIs(t, err, repository.ErrGiftNotFound)
}

func TestRenderGiftContentURLPrecedence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"blocks":[{"type":"text","text":"from the url"}],"metadata":{"senderName":"remote","description":""}}`))
	}))
	defer server.Close()

	open := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)
	svc, repo, contentRepo := newRevealFixture(t, open)
	gift := seedGift(t, repo, contentRepo, 1, open, false)

	// Both a stored document and an external URL: the URL wins.
	stored, _ := repo.ByID(gift.ID)
	stored.ContentURL = &server.URL
	require.NoError(t, repo.Update(stored))

	got, err := svc.RenderGift(context.Background(), gift.ID, false)
	require.NoError(t, err)

	require.Len(t, got.Blocks, 1)
	assert.Equal(t, "from the url", got.Blocks[0].Text)
	assert.Equal(t, "remote", got.SenderName)
}

func TestRenderGiftUnknownBlockFromURLRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"blocks":[{"type":"hologram"}],"metadata":{}}`))
	}))
	defer server.Close()

	open := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)
	svc, repo, contentRepo := newRevealFixture(t, open)
	gift := seedGift(t, repo, contentRepo, 1, open, false)

	stored, _ := repo.ByID(gift.ID)
	stored.ContentURL = &server.URL
	require.NoError(t, repo.Update(stored))

	_, err := svc.RenderGift(context.Background(), gift.ID, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown content block type")
}

func TestRenderGiftCache(t *testing.T) {
	open := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)
	svc, repo, contentRepo := newRevealFixture(t, open)
	gift := seedGift(t, repo, contentRepo, 1, open, false)

	first, err := svc.RenderGift(context.Background(), gift.ID, false)
	require.NoError(t, err)

	// Mutate behind the cache's back: the cached render is served until
	// invalidation.
	contentRepo.docs[gift.ID].Metadata.SenderName = "edited"
	second, err := svc.RenderGift(context.Background(), gift.ID, false)
	require.NoError(t, err)
	assert.Equal(t, first.SenderName, second.SenderName)

	// The admin mutation hook purges; the next render sees the edit.
	svc.InvalidateCache()
	third, err := svc.RenderGift(context.Background(), gift.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "edited", third.SenderName)
}

func TestRenderGiftCacheKeyedOnAuth(t *testing.T) {
	open := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)
	svc, repo, contentRepo := newRevealFixture(t, open)
	gift := seedGift(t, repo, contentRepo, 1, open, true)

	guest, err := svc.RenderGift(context.Background(), gift.ID, false)
	require.NoError(t, err)
	authed, err := svc.RenderGift(context.Background(), gift.ID, true)
	require.NoError(t, err)

	// A guest render must never be served to an authenticated viewer.
	assert.False(t, guest.BodyVisible)
	assert.True(t, authed.BodyVisible)
}

func TestOverview(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, revealZone)
	svc, repo, contentRepo := newRevealFixture(t, now)

	seedGift(t, repo, contentRepo, 1, now.AddDate(0, 0, -1), false)
	seedGift(t, repo, contentRepo, 2, now.AddDate(0, 0, 1), false)

	items, err := svc.Overview(false)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.True(t, items[0].Unlocked)
	assert.NotNil(t, items[0].Title)

	assert.False(t, items[1].Unlocked)
	assert.Nil(t, items[1].Title)
	assert.Nil(t, items[1].Code)
	// List never carries bodies.
	assert.Empty(t, items[0].Blocks)
}

func TestCipherPieces(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)
	svc, repo, contentRepo := newRevealFixture(t, now)

	seedGift(t, repo, contentRepo, 2, now.AddDate(0, 0, -2), false) // unlocked
	seedGift(t, repo, contentRepo, 1, now.AddDate(0, 0, -5), false) // unlocked
	seedGift(t, repo, contentRepo, 3, now.AddDate(0, 0, 5), false)  // locked

	pieces, assembled, err := svc.CipherPieces()
	require.NoError(t, err)

	// Number order, locked gifts contribute nothing.
	assert.Equal(t, []string{"ЛЮ", "ЛЮ"}, pieces)
	assert.Equal(t, "ЛЮЛЮ", assembled)
}

func TestCountdownToNextGift(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)
	svc, repo, contentRepo := newRevealFixture(t, now)

	seedGift(t, repo, contentRepo, 1, now.AddDate(0, 0, -1), false)
	next := seedGift(t, repo, contentRepo, 2, now.Add(36*time.Hour), false)
	seedGift(t, repo, contentRepo, 3, now.AddDate(0, 0, 10), false)

	rem, gift, err := svc.CountdownToNextGift()
	require.NoError(t, err)
	require.NotNil(t, gift)
	assert.Equal(t, next.Number, gift.Number)
	assert.Equal(t, 1, rem.Days)
	assert.Equal(t, 12, rem.Hours)
}

func TestCountdownAllUnlocked(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, revealZone)
	svc, repo, contentRepo := newRevealFixture(t, now)
	seedGift(t, repo, contentRepo, 1, now.AddDate(0, 0, -1), false)

	rem, gift, err := svc.CountdownToNextGift()
	require.NoError(t, err)
	assert.Nil(t, gift)
	assert.True(t, rem.IsZero())
}

func TestWordOfDayThroughService(t *testing.T) {
	svc, _, _ := newRevealFixture(t, time.Date(2025, 6, 2, 10, 0, 0, 0, revealZone))
	assert.Equal(t, "moon", svc.WordOfDay())
}
