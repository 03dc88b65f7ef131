package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/amora-app/backend/internal/services/auth"
	closuresvc "github.com/amora-app/backend/internal/services/closure"
	compatsvc "github.com/amora-app/backend/internal/services/compatibility"
	discoverysvc "github.com/amora-app/backend/internal/services/discovery"
	healthsvc "github.com/amora-app/backend/internal/services/health"
	matchessvc "github.com/amora-app/backend/internal/services/matches"
	mediasvc "github.com/amora-app/backend/internal/services/media"
	profilesvc "github.com/amora-app/backend/internal/services/profiles"
	ratesvc "github.com/amora-app/backend/internal/services/rate"
	swipesvc "github.com/amora-app/backend/internal/services/swipes"
	"github.com/amora-app/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService          *authsvc.Service
	DiscoveryService     *discoverysvc.Service
	SwipeService         *swipesvc.Service
	MatchService         *matchessvc.Service
	CompatibilityService *compatsvc.Service
	HealthService        *healthsvc.Service
	ClosureService       *closuresvc.Service
	ProfileService       *profilesvc.Service
	MediaService         *mediasvc.Service
	RateLimiter          *ratesvc.Limiter
	Logger               *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	discoveryHandler := handlers.NewDiscoveryHandler(deps.DiscoveryService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService, deps.SwipeService)
	compatibilityHandler := handlers.NewCompatibilityHandler(deps.CompatibilityService)
	conversationsHandler := handlers.NewConversationsHandler(deps.HealthService, deps.MatchService, deps.ClosureService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)

		r.With(RateLimitMiddleware(deps.RateLimiter, "discovery", deps.Logger)).
			Get("/discovery", discoveryHandler.List)
		r.With(RateLimitMiddleware(deps.RateLimiter, "swipes", deps.Logger)).
			Post("/swipes", swipeHandler.Record)
		r.With(RateLimitMiddleware(deps.RateLimiter, "matches", deps.Logger)).
			Get("/matches", matchesHandler.List)
		r.With(RateLimitMiddleware(deps.RateLimiter, "matches", deps.Logger)).
			Get("/matches/{user_id}", matchesHandler.Status)
		r.With(RateLimitMiddleware(deps.RateLimiter, "compatibility", deps.Logger)).
			Get("/compatibility/{user_id}", compatibilityHandler.Compute)

		r.Route("/conversations", func(r chi.Router) {
			r.Use(RateLimitMiddleware(deps.RateLimiter, "conversations", deps.Logger))
			r.Get("/health", conversationsHandler.HealthState)
			r.Post("/open", matchesHandler.OpenConversation)
			r.Get("/{id}/messages", conversationsHandler.ListMessages)
			r.Post("/{id}/messages", conversationsHandler.RecordMessage)
			r.Post("/{id}/snooze", conversationsHandler.Snooze)
			r.Post("/{id}/close", conversationsHandler.Close)
		})

		r.Get("/closure/templates", conversationsHandler.Templates)
		r.With(RateLimitMiddleware(deps.RateLimiter, "profile", deps.Logger)).
			Get("/profile", profileHandler.GetOwn)
		r.With(RateLimitMiddleware(deps.RateLimiter, "preferences", deps.Logger)).
			Put("/preferences", profileHandler.UpsertPreferences)
		r.With(RateLimitMiddleware(deps.RateLimiter, "media", deps.Logger)).
			Get("/media/photo-url", mediaHandler.PhotoURL)
	})
}
