package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/antonvlk/emberline/internal/services/auth"
	decksvc "github.com/antonvlk/emberline/internal/services/deck"
	matchsvc "github.com/antonvlk/emberline/internal/services/matches"
	modsvc "github.com/antonvlk/emberline/internal/services/moderation"
	photosvc "github.com/antonvlk/emberline/internal/services/photos"
	profilesvc "github.com/antonvlk/emberline/internal/services/profiles"
	swipesvc "github.com/antonvlk/emberline/internal/services/swipes"
	userssvc "github.com/antonvlk/emberline/internal/services/users"
	"github.com/antonvlk/emberline/internal/transport/http/handlers"
)

type Dependencies struct {
	Verifier          *authsvc.Verifier
	ProfileService    *profilesvc.Service
	SwipeService      *swipesvc.Service
	DeckService       *decksvc.Service
	MatchService      *matchsvc.Service
	PhotoService      *photosvc.Service
	ModerationService *modsvc.Service
	UserService       *userssvc.Service
	Logger            *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	profileHandler := handlers.NewProfileHandler(deps.ProfileService, deps.ModerationService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	deckHandler := handlers.NewDeckHandler(deps.DeckService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	photosHandler := handlers.NewPhotosHandler(deps.PhotoService, deps.ModerationService)
	adminHandler := handlers.NewAdminHandler(deps.ModerationService, deps.UserService)

	authMW := AuthMiddleware(deps.Verifier, deps.ProfileService, deps.Logger)

	r.Get("/healthz", handlers.Healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)

		r.Get("/me", profileHandler.Me)
		r.Post("/me/verify", profileHandler.VerifyAccount)
		r.Put("/profile", profileHandler.Update)

		r.Get("/deck", deckHandler.Get)
		r.Post("/deck/reset-passes", deckHandler.ResetPasses)

		r.Post("/swipes", swipeHandler.Handle)

		r.Get("/matches", matchesHandler.List)
		r.Post("/blocks", matchesHandler.Block)
		r.Post("/reports", matchesHandler.Report)

		r.Post("/photos", photosHandler.Upload)
		r.Get("/photos", photosHandler.List)
		r.Delete("/photos/{id}", photosHandler.Delete)
		r.Post("/photos/{id}/like", photosHandler.ToggleLike)
		r.Post("/photos/{id}/verification", photosHandler.RequestVerification)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)

			r.Post("/photos/{id}/approve", adminHandler.ApprovePhoto)
			r.Post("/photos/{id}/reject", adminHandler.RejectPhoto)
			r.Post("/users/{id}/verify", adminHandler.VerifyUser)
			r.Post("/users/{id}/ban", adminHandler.BanUser)
			r.Delete("/users/{id}", adminHandler.DeleteUser)
			r.Get("/reports", adminHandler.ListReports)
			r.Post("/reports/{id}/resolve", adminHandler.ResolveReport)
		})
	})
}
