package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/okoval/giftbox/internal/ctxkeys"
	"github.com/okoval/giftbox/internal/reveal"
	"github.com/okoval/giftbox/internal/service"
)

// GiftHandler serves the viewer-facing API: the gift overview, rendered
// gifts, the countdown, the word of the day and the cipher.
type GiftHandler struct {
	revealService *service.RevealService
}

func NewGiftHandler(revealService *service.RevealService) *GiftHandler {
	return &GiftHandler{
		revealService: revealService,
	}
}

func (h *GiftHandler) Gifts(w http.ResponseWriter, r *http.Request) {
	authed := ctxkeys.IsAuthenticated(r.Context())

	gifts, err := h.revealService.Overview(authed)
	if err != nil {
		slog.Error("failed to list gifts", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load gifts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"gifts": gifts})
}

func (h *GiftHandler) Gift(w http.ResponseWriter, r *http.Request) {
	authed := ctxkeys.IsAuthenticated(r.Context())
	giftID := r.PathValue("id")

	rendered, err := h.revealService.RenderGift(r.Context(), giftID, authed)
	if err != nil {
		h.renderError(w, err, "gift_id", giftID)
		return
	}

	respondJSON(w, http.StatusOK, rendered)
}

func (h *GiftHandler) GiftByNumber(w http.ResponseWriter, r *http.Request) {
	authed := ctxkeys.IsAuthenticated(r.Context())

	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number < 1 {
		respondError(w, http.StatusBadRequest, "invalid gift number")
		return
	}

	rendered, err := h.revealService.RenderGiftByNumber(r.Context(), number, authed)
	if err != nil {
		h.renderError(w, err, "number", number)
		return
	}

	respondJSON(w, http.StatusOK, rendered)
}

func (h *GiftHandler) renderError(w http.ResponseWriter, err error, key string, value any) {
	if errors.Is(err, service.ErrGiftNotFound) {
		respondError(w, http.StatusNotFound, "gift not found")
		return
	}
	if errors.Is(err, service.ErrContentNotFound) {
		respondError(w, http.StatusNotFound, "gift content not found")
		return
	}
	slog.Error("failed to render gift", "error", err, key, value)
	respondError(w, http.StatusInternalServerError, "failed to load gift")
}

func (h *GiftHandler) WordOfDay(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"word": h.revealService.WordOfDay()})
}

type countdownResponse struct {
	Remaining  reveal.Remaining `json:"remaining"`
	Target     *time.Time       `json:"target,omitempty"`
	NextNumber *int             `json:"nextNumber,omitempty"`
	Done       bool             `json:"done"`
}

// Countdown reports the time to the configured target date. When no
// target is configured it falls back to the next still-locked gift.
func (h *GiftHandler) Countdown(w http.ResponseWriter, r *http.Request) {
	if h.revealService.HasCountdownTarget() {
		remaining, target := h.revealService.Countdown()
		respondJSON(w, http.StatusOK, countdownResponse{
			Remaining: remaining,
			Target:    &target,
			Done:      remaining.IsZero(),
		})
		return
	}

	remaining, next, err := h.revealService.CountdownToNextGift()
	if err != nil {
		slog.Error("failed to compute countdown", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to compute countdown")
		return
	}
	if next == nil {
		respondJSON(w, http.StatusOK, countdownResponse{Done: true})
		return
	}

	respondJSON(w, http.StatusOK, countdownResponse{
		Remaining:  remaining,
		Target:     &next.OpenDate,
		NextNumber: &next.Number,
	})
}

func (h *GiftHandler) Cipher(w http.ResponseWriter, r *http.Request) {
	pieces, combined, err := h.revealService.CipherPieces()
	if err != nil {
		slog.Error("failed to collect cipher pieces", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load cipher")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"pieces":   pieces,
		"combined": combined,
	})
}
