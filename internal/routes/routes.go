package routes

import (
	"net/http"

	"github.com/okoval/giftbox/internal/app"
	"github.com/okoval/giftbox/internal/handler"
	"github.com/okoval/giftbox/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	gift := handler.NewGiftHandler(app.RevealService)
	admin := handler.NewAdminHandler(app.GiftService, app.FileService, app.AuthService, app.Clock, app.Cfg.RevealLocation())

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Viewer API. Locked gifts come back as placeholders; secret bodies
	// are substituted for unauthenticated viewers.
	mux.HandleFunc("GET /api/gifts", gift.Gifts)
	mux.HandleFunc("GET /api/gifts/{id}", gift.Gift)
	mux.HandleFunc("GET /api/gifts/number/{number}", gift.GiftByNumber)
	mux.HandleFunc("GET /api/word-of-day", gift.WordOfDay)
	mux.HandleFunc("GET /api/countdown", gift.Countdown)
	mux.HandleFunc("GET /api/cipher", gift.Cipher)

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /auth/logout", auth.Logout)
	mux.HandleFunc("GET /auth/session", auth.Session)

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	mux.HandleFunc("GET /admin/gifts", middleware.RequireAuth(admin.Gifts))
	mux.HandleFunc("GET /admin/gifts/{id}", middleware.RequireAuth(admin.Gift))
	mux.HandleFunc("POST /admin/gifts", middleware.RequireAuth(admin.CreateGift))
	mux.HandleFunc("PUT /admin/gifts/{id}", middleware.RequireAuth(admin.UpdateGift))
	mux.HandleFunc("PUT /admin/gifts/{id}/content", middleware.RequireAuth(admin.UpdateContent))
	mux.HandleFunc("DELETE /admin/gifts/{id}", middleware.RequireAuth(admin.DeleteGift))
	mux.HandleFunc("PUT /admin/gifts/{id}/memory-photo", middleware.RequireAuth(admin.SetMemoryPhoto))
	mux.HandleFunc("DELETE /admin/gifts/{id}/memory-photo", middleware.RequireAuth(admin.DeleteMemoryPhoto))

	// Media uploads
	mux.HandleFunc("POST /admin/media", middleware.RequireAuth(admin.UploadMedia))
	mux.HandleFunc("DELETE /admin/media/{id}", middleware.RequireAuth(admin.DeleteMedia))

	// Demo clock
	mux.HandleFunc("GET /admin/clock", middleware.RequireAuth(admin.Clock))
	mux.HandleFunc("PUT /admin/clock", middleware.RequireAuth(admin.OverrideClock))
	mux.HandleFunc("POST /admin/clock/advance", middleware.RequireAuth(admin.AdvanceClock))
	mux.HandleFunc("DELETE /admin/clock", middleware.RequireAuth(admin.ResetClock))

	// Account
	mux.HandleFunc("PUT /admin/password", middleware.RequireAuth(admin.ChangePassword))

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		mux,
		middleware.Config(app.Cfg),
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)

	return h
}
