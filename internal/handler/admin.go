package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/okoval/giftbox/internal/ctxkeys"
	"github.com/okoval/giftbox/internal/model"
	"github.com/okoval/giftbox/internal/repository"
	"github.com/okoval/giftbox/internal/service"
	"github.com/okoval/giftbox/internal/timeutil"
	"github.com/okoval/giftbox/internal/validation"
)

const maxUploadMemory = 32 << 20 // 32MB

// AdminHandler serves the management API: gift CRUD, content documents,
// media uploads and the demo clock.
type AdminHandler struct {
	giftService *service.GiftService
	fileService *service.FileService
	authService *service.AuthService
	clock       *timeutil.AdjustableClock
	location    *time.Location
}

func NewAdminHandler(giftService *service.GiftService, fileService *service.FileService, authService *service.AuthService, clock *timeutil.AdjustableClock, location *time.Location) *AdminHandler {
	return &AdminHandler{
		giftService: giftService,
		fileService: fileService,
		authService: authService,
		clock:       clock,
		location:    location,
	}
}

type giftRequest struct {
	Number             int     `json:"number"`
	Title              *string `json:"title"`
	Author             *string `json:"author"`
	Nickname           *string `json:"nickname"`
	OpenDate           string  `json:"openDate"`
	EnglishDescription string  `json:"englishDescription"`
	HintImageURL       string  `json:"hintImageUrl"`
	HintText           string  `json:"hintText"`
	CodeText           string  `json:"codeText"`
	IsSecret           bool    `json:"isSecret"`
	Code               *string `json:"code"`
	ContentPath        string  `json:"contentPath"`
	ContentURL         *string `json:"contentUrl"`

	Content *model.ContentDocument `json:"content"`
}

// input converts the request into a service input. A date-only openDate
// means the start of that calendar day in the reveal zone.
func (req giftRequest) input(location *time.Location) (service.GiftInput, error) {
	in := service.GiftInput{
		Number:             req.Number,
		Title:              req.Title,
		Author:             req.Author,
		Nickname:           req.Nickname,
		EnglishDescription: req.EnglishDescription,
		HintImageURL:       req.HintImageURL,
		HintText:           req.HintText,
		CodeText:           req.CodeText,
		IsSecret:           req.IsSecret,
		Code:               req.Code,
		ContentPath:        req.ContentPath,
		ContentURL:         req.ContentURL,
	}

	if req.OpenDate == "" {
		return in, nil
	}

	openDate, err := time.ParseInLocation("2006-01-02", req.OpenDate, location)
	if err != nil {
		openDate, err = time.Parse(time.RFC3339, req.OpenDate)
	}
	if err != nil {
		return in, errors.New("openDate must be YYYY-MM-DD or RFC 3339")
	}

	in.OpenDate = openDate
	return in, nil
}

func (h *AdminHandler) giftError(w http.ResponseWriter, err error, op, giftID string) {
	switch {
	case errors.Is(err, service.ErrInvalidGiftInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNumberTaken):
		respondError(w, http.StatusConflict, "gift number already taken")
	case errors.Is(err, repository.ErrGiftNotFound):
		respondError(w, http.StatusNotFound, "gift not found")
	default:
		slog.Error("admin gift operation failed", "op", op, "error", err, "gift_id", giftID)
		respondError(w, http.StatusInternalServerError, "operation failed")
	}
}

func (h *AdminHandler) Gifts(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = repository.GiftSortOpenDate
	}

	gifts, err := h.giftService.Gifts(sortBy)
	if err != nil {
		slog.Error("failed to list gifts", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load gifts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"gifts": gifts})
}

func (h *AdminHandler) Gift(w http.ResponseWriter, r *http.Request) {
	giftID := r.PathValue("id")

	gift, err := h.giftService.ByID(giftID)
	if err != nil {
		h.giftError(w, err, "get", giftID)
		return
	}

	// External content documents are fetched by the render path, not here.
	var content *model.ContentDocument
	if gift.ContentURL == nil || *gift.ContentURL == "" {
		content, err = h.giftService.Content(giftID)
		if err != nil && !errors.Is(err, repository.ErrContentNotFound) {
			h.giftError(w, err, "get content", giftID)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"gift":    gift,
		"content": content,
	})
}

func (h *AdminHandler) CreateGift(w http.ResponseWriter, r *http.Request) {
	var req giftRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.input(h.location)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	gift, err := h.giftService.Create(in, req.Content)
	if err != nil {
		h.giftError(w, err, "create", "")
		return
	}

	respondJSON(w, http.StatusCreated, gift)
}

func (h *AdminHandler) UpdateGift(w http.ResponseWriter, r *http.Request) {
	giftID := r.PathValue("id")

	var req giftRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.input(h.location)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	gift, err := h.giftService.Update(giftID, in)
	if err != nil {
		h.giftError(w, err, "update", giftID)
		return
	}

	if req.Content != nil {
		err = h.giftService.UpdateContent(giftID, req.Content)
		if err != nil {
			h.giftError(w, err, "update content", giftID)
			return
		}
	}

	respondJSON(w, http.StatusOK, gift)
}

func (h *AdminHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	giftID := r.PathValue("id")

	var doc model.ContentDocument
	err := decodeJSON(r, &doc)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid content document")
		return
	}

	err = h.giftService.UpdateContent(giftID, &doc)
	if err != nil {
		h.giftError(w, err, "update content", giftID)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *AdminHandler) DeleteGift(w http.ResponseWriter, r *http.Request) {
	giftID := r.PathValue("id")

	err := h.giftService.Delete(giftID)
	if err != nil {
		h.giftError(w, err, "delete", giftID)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type memoryPhotoRequest struct {
	PhotoURL  string `json:"photoUrl"`
	PhotoDate string `json:"photoDate"` // YYYY-MM-DD
}

func (h *AdminHandler) SetMemoryPhoto(w http.ResponseWriter, r *http.Request) {
	giftID := r.PathValue("id")

	var req memoryPhotoRequest
	err := decodeJSON(r, &req)
	if err != nil || req.PhotoURL == "" {
		respondError(w, http.StatusBadRequest, "photoUrl is required")
		return
	}

	photoDate, err := time.ParseInLocation("2006-01-02", req.PhotoDate, h.location)
	if err != nil {
		respondError(w, http.StatusBadRequest, "photoDate must be YYYY-MM-DD")
		return
	}

	err = h.giftService.SetMemoryPhoto(giftID, req.PhotoURL, photoDate)
	if err != nil {
		h.giftError(w, err, "set memory photo", giftID)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *AdminHandler) DeleteMemoryPhoto(w http.ResponseWriter, r *http.Request) {
	giftID := r.PathValue("id")

	err := h.giftService.DeleteMemoryPhoto(giftID)
	if err != nil {
		h.giftError(w, err, "delete memory photo", giftID)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UploadMedia accepts a multipart upload. The "type" field selects the
// constraint set: image (default) or audio.
func (h *AdminHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(maxUploadMemory)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	fileType := r.FormValue("type")
	if fileType == "" {
		fileType = model.FileTypeImage
	}

	switch fileType {
	case model.FileTypeImage:
		err = validation.ValidateFile(header, validation.ImageConstraints)
	case model.FileTypeAudio:
		err = validation.ValidateFile(header, validation.AudioConstraints)
	default:
		respondError(w, http.StatusBadRequest, "type must be image or audio")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var giftID *string
	if v := r.FormValue("gift_id"); v != "" {
		_, err = h.giftService.ByID(v)
		if err != nil {
			h.giftError(w, err, "upload media", v)
			return
		}
		giftID = &v
	}

	uploaded, err := h.fileService.Upload(giftID, fileType, file, header)
	if err != nil {
		slog.Error("failed to upload media", "error", err)
		respondError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"file": uploaded,
		"url":  h.fileService.URL(uploaded),
	})
}

func (h *AdminHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("id")

	err := h.fileService.Delete(fileID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			respondError(w, http.StatusNotFound, "file not found")
			return
		}
		slog.Error("failed to delete media", "error", err, "file_id", fileID)
		respondError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type clockRequest struct {
	Time     string `json:"time"`     // RFC 3339, for override
	Duration string `json:"duration"` // Go duration, for advance
}

func (h *AdminHandler) clockState() map[string]any {
	return map[string]any{
		"now":        h.clock.Now(),
		"overridden": h.clock.Overridden(),
	}
}

func (h *AdminHandler) Clock(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.clockState())
}

// OverrideClock freezes site time at the given instant so unlock
// behavior can be demonstrated without waiting for real dates.
func (h *AdminHandler) OverrideClock(w http.ResponseWriter, r *http.Request) {
	var req clockRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		respondError(w, http.StatusBadRequest, "time must be RFC 3339")
		return
	}

	h.clock.Override(t)
	slog.Info("clock overridden", "time", t, "admin", ctxkeys.User(r.Context()).Username)
	respondJSON(w, http.StatusOK, h.clockState())
}

func (h *AdminHandler) AdvanceClock(w http.ResponseWriter, r *http.Request) {
	var req clockRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		respondError(w, http.StatusBadRequest, "duration must be a Go duration like 24h")
		return
	}

	if !h.clock.Overridden() {
		respondError(w, http.StatusConflict, "clock is not overridden")
		return
	}

	h.clock.Advance(d)
	respondJSON(w, http.StatusOK, h.clockState())
}

func (h *AdminHandler) ResetClock(w http.ResponseWriter, r *http.Request) {
	h.clock.Reset()
	slog.Info("clock reset to live time")
	respondJSON(w, http.StatusOK, h.clockState())
}

type passwordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req passwordRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.authService.ChangePassword(user.ID, req.NewPassword)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}
