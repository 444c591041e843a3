package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okoval/giftbox/internal/cache"
	"github.com/okoval/giftbox/internal/model"
	"github.com/okoval/giftbox/internal/repository"
	"github.com/okoval/giftbox/internal/reveal"
	"github.com/okoval/giftbox/internal/timeutil"
	"github.com/yuin/goldmark"
)

var (
	ErrGiftNotFound    = repository.ErrGiftNotFound
	ErrContentNotFound = repository.ErrContentNotFound
)

// accessDeniedText replaces secret block bodies for unauthenticated
// viewers of an unlocked secret gift.
const accessDeniedText = "Oops, only Lesya sees this content"

// maxContentDocumentSize caps external content document fetches.
const maxContentDocumentSize = 1 << 20 // 1MB

// RevealConfig carries the schedule settings the reveal service runs on.
type RevealConfig struct {
	Location        *time.Location
	Words           []string
	WordCycleStart  time.Time
	WordCycleLength int
	Birthday        time.Time
	BirthdayWord    string
	CountdownTarget time.Time
	CacheSize       int
	CacheTTL        time.Duration
	FetchTimeout    time.Duration
}

// RevealService assembles the viewer-facing state of the site: rendered
// gifts, the countdown, the word of the day and the cipher pieces. All
// time comes from the injected clock.
type RevealService struct {
	giftRepo    repository.GiftRepository
	contentRepo repository.ContentRepository
	clock       timeutil.Clock
	cfg         RevealConfig
	cache       *cache.Cache[*RenderedGift]
	httpClient  *http.Client
	markdown    goldmark.Markdown
}

func NewRevealService(giftRepo repository.GiftRepository, contentRepo repository.ContentRepository, clock timeutil.Clock, cfg RevealConfig) *RevealService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Second
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}

	return &RevealService{
		giftRepo:    giftRepo,
		contentRepo: contentRepo,
		clock:       clock,
		cfg:         cfg,
		cache:       cache.New[*RenderedGift](cfg.CacheSize, cfg.CacheTTL),
		httpClient:  &http.Client{Timeout: cfg.FetchTimeout},
		markdown:    goldmark.New(),
	}
}

// RenderedBlock is one viewer-facing content block. Text blocks carry
// markdown rendered to HTML; secret blocks seen by guests carry the
// access-denied text instead of their content.
type RenderedBlock struct {
	Type         string   `json:"type"`
	Text         string   `json:"text,omitempty"`
	HTML         string   `json:"html,omitempty"`
	Attribution  string   `json:"attribution,omitempty"`
	URL          string   `json:"url,omitempty"`
	Caption      string   `json:"caption,omitempty"`
	Images       []string `json:"images,omitempty"`
	AccessDenied bool     `json:"accessDenied,omitempty"`
}

// RenderedGift is the final view model for one gift. A locked gift is a
// placeholder: open date only, no title, code or body.
type RenderedGift struct {
	ID       string    `json:"id"`
	Number   int       `json:"number"`
	OpenDate time.Time `json:"openDate"`
	Unlocked bool      `json:"unlocked"`

	Title              *string `json:"title,omitempty"`
	Author             *string `json:"author,omitempty"`
	Nickname           *string `json:"nickname,omitempty"`
	EnglishDescription string  `json:"englishDescription,omitempty"`
	HintImageURL       string  `json:"hintImageUrl,omitempty"`
	HintText           string  `json:"hintText,omitempty"`
	CodeText           string  `json:"codeText,omitempty"`
	Code               *string `json:"code,omitempty"`
	IsSecret           bool    `json:"isSecret,omitempty"`

	// BodyVisible is false when the secrecy gate replaced the blocks.
	BodyVisible bool            `json:"bodyVisible"`
	Blocks      []RenderedBlock `json:"blocks,omitempty"`
	SenderName  string          `json:"senderName,omitempty"`
	Description string          `json:"description,omitempty"`

	MemoryPhoto *model.MemoryPhoto `json:"memoryPhoto,omitempty"`
}

// RenderGift produces the viewable payload for a gift id: lookup, unlock
// check, secrecy gate, content load, block substitution. Results are
// cached keyed on (gift, now-bucket, authenticated) so a cached entry can
// never cross an unlock boundary wider than the TTL; admin mutations
// purge the cache outright.
func (s *RevealService) RenderGift(ctx context.Context, giftID string, isAuthenticated bool) (*RenderedGift, error) {
	now := s.clock.Now()

	key := s.cacheKey(giftID, now, isAuthenticated)
	cached, ok := s.cache.Get(key)
	if ok {
		return cached, nil
	}

	gift, err := s.giftRepo.ByID(giftID)
	if err != nil {
		return nil, err
	}

	rendered, err := s.render(ctx, gift, now, isAuthenticated)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, rendered)
	return rendered, nil
}

// RenderGiftByNumber is RenderGift addressed by the public ordering key.
func (s *RevealService) RenderGiftByNumber(ctx context.Context, number int, isAuthenticated bool) (*RenderedGift, error) {
	gift, err := s.giftRepo.ByNumber(number)
	if err != nil {
		return nil, err
	}
	return s.RenderGift(ctx, gift.ID, isAuthenticated)
}

func (s *RevealService) render(ctx context.Context, gift *model.Gift, now time.Time, isAuthenticated bool) (*RenderedGift, error) {
	rendered := &RenderedGift{
		ID:       gift.ID,
		Number:   gift.Number,
		OpenDate: gift.OpenDate,
	}

	if !reveal.Unlocked(gift.OpenDate, now) {
		// Locked placeholder: nothing beyond the open date leaks.
		return rendered, nil
	}

	rendered.Unlocked = true
	rendered.Title = gift.Title
	rendered.Author = gift.Author
	rendered.Nickname = gift.Nickname
	rendered.EnglishDescription = gift.EnglishDescription
	rendered.HintImageURL = gift.HintImageURL
	rendered.HintText = gift.HintText
	rendered.CodeText = gift.CodeText
	rendered.Code = gift.Code
	rendered.IsSecret = gift.IsSecret

	doc, err := s.loadDocument(ctx, gift)
	if err != nil {
		return nil, err
	}

	rendered.SenderName = doc.Metadata.SenderName
	rendered.Description = doc.Metadata.Description

	visible := reveal.Visible(gift.IsSecret, isAuthenticated)
	rendered.BodyVisible = visible
	rendered.Blocks = s.renderBlocks(doc.Blocks, visible)

	// The memory photo follows the body, not the preview: a guest
	// viewing an unlocked secret gift must not see it.
	if visible {
		rendered.MemoryPhoto = gift.MemoryPhoto
	}

	return rendered, nil
}

func (s *RevealService) renderBlocks(blocks []model.Block, visible bool) []RenderedBlock {
	out := make([]RenderedBlock, 0, len(blocks))
	for _, b := range blocks {
		if !visible {
			// Block-level substitution: a hidden body is replaced whole,
			// never partially redacted.
			out = append(out, RenderedBlock{
				Type:         b.Type,
				Text:         accessDeniedText,
				AccessDenied: true,
			})
			continue
		}

		rb := RenderedBlock{
			Type:        b.Type,
			Text:        b.Text,
			Attribution: b.Attribution,
			URL:         b.URL,
			Caption:     b.Caption,
			Images:      b.Images,
		}

		if b.Type == model.BlockTypeText {
			var buf bytes.Buffer
			err := s.markdown.Convert([]byte(b.Text), &buf)
			if err == nil {
				rb.HTML = buf.String()
			}
		}

		out = append(out, rb)
	}
	return out
}

// loadDocument loads the gift's content: an external contentUrl takes
// precedence over the stored document when both are present.
func (s *RevealService) loadDocument(ctx context.Context, gift *model.Gift) (*model.ContentDocument, error) {
	if gift.ContentURL != nil && *gift.ContentURL != "" {
		return s.fetchDocument(ctx, *gift.ContentURL)
	}
	return s.contentRepo.ByGiftID(gift.ID)
}

func (s *RevealService) fetchDocument(ctx context.Context, url string) (*model.ContentDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build content request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrContentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content fetch returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxContentDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read content document: %w", err)
	}

	return model.ParseContentDocument(raw)
}

// Overview lists every gift in open-date order as locked placeholders or
// unlocked previews. Bodies are never included here.
func (s *RevealService) Overview(isAuthenticated bool) ([]*RenderedGift, error) {
	now := s.clock.Now()

	gifts, err := s.giftRepo.Gifts(repository.GiftSortOpenDate)
	if err != nil {
		return nil, err
	}

	out := make([]*RenderedGift, 0, len(gifts))
	for _, gift := range gifts {
		item := &RenderedGift{
			ID:       gift.ID,
			Number:   gift.Number,
			OpenDate: gift.OpenDate,
		}
		if reveal.Unlocked(gift.OpenDate, now) {
			item.Unlocked = true
			item.Title = gift.Title
			item.EnglishDescription = gift.EnglishDescription
			item.HintImageURL = gift.HintImageURL
			item.HintText = gift.HintText
			item.CodeText = gift.CodeText
			item.IsSecret = gift.IsSecret
			// The cipher code is a preview field: visible to everyone
			// once unlocked, secrecy only hides bodies.
			item.Code = gift.Code
		}
		out = append(out, item)
	}

	return out, nil
}

// WordOfDay returns today's word in the configured zone.
func (s *RevealService) WordOfDay() string {
	return reveal.WordForDate(
		s.cfg.WordCycleStart,
		s.cfg.WordCycleLength,
		s.clock.Now(),
		s.cfg.Words,
		s.cfg.Birthday,
		s.cfg.BirthdayWord,
		s.cfg.Location,
	)
}

// HasCountdownTarget reports whether a fixed countdown target is
// configured. Without one the countdown falls back to the next locked
// gift.
func (s *RevealService) HasCountdownTarget() bool {
	return !s.cfg.CountdownTarget.IsZero()
}

// Countdown returns the time remaining to the configured target,
// interpreted at the start of its calendar day in the reveal zone.
func (s *RevealService) Countdown() (reveal.Remaining, time.Time) {
	target := reveal.DayStart(s.cfg.CountdownTarget, s.cfg.Location)
	return reveal.TimeRemaining(s.clock.Now(), target), target
}

// CountdownToNextGift counts down to the earliest still-locked gift.
// The boolean is false when everything is already unlocked.
func (s *RevealService) CountdownToNextGift() (reveal.Remaining, *model.Gift, error) {
	now := s.clock.Now()

	gifts, err := s.giftRepo.Gifts(repository.GiftSortOpenDate)
	if err != nil {
		return reveal.Remaining{}, nil, err
	}

	for _, gift := range gifts {
		if !reveal.Unlocked(gift.OpenDate, now) {
			return reveal.TimeRemaining(now, gift.OpenDate), gift, nil
		}
	}

	return reveal.Remaining{}, nil, nil
}

// CipherPieces returns the cipher code fragments of currently unlocked
// gifts in number order. Locked gifts contribute nothing.
func (s *RevealService) CipherPieces() ([]string, string, error) {
	now := s.clock.Now()

	gifts, err := s.giftRepo.Gifts(repository.GiftSortNumber)
	if err != nil {
		return nil, "", err
	}

	var pieces []string
	for _, gift := range gifts {
		if gift.Code == nil || *gift.Code == "" {
			continue
		}
		if !reveal.Unlocked(gift.OpenDate, now) {
			continue
		}
		pieces = append(pieces, *gift.Code)
	}

	return pieces, strings.Join(pieces, ""), nil
}

// InvalidateCache flushes the render cache. Wired into every admin
// mutation of gifts or content.
func (s *RevealService) InvalidateCache() {
	s.cache.Purge()
}

func (s *RevealService) cacheKey(giftID string, now time.Time, isAuthenticated bool) string {
	bucketSecs := int64(s.cfg.CacheTTL / time.Second)
	if bucketSecs < 1 {
		bucketSecs = 1
	}
	bucket := now.Unix() / bucketSecs
	return giftID + "|" + strconv.FormatInt(bucket, 10) + "|" + strconv.FormatBool(isAuthenticated)
}
