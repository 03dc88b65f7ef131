package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/amora-app/backend/internal/config"
	s3infra "github.com/amora-app/backend/internal/infra/s3"
	pgrepo "github.com/amora-app/backend/internal/repo/postgres"
	redrepo "github.com/amora-app/backend/internal/repo/redis"
	authsvc "github.com/amora-app/backend/internal/services/auth"
	closuresvc "github.com/amora-app/backend/internal/services/closure"
	compatsvc "github.com/amora-app/backend/internal/services/compatibility"
	discoverysvc "github.com/amora-app/backend/internal/services/discovery"
	geosvc "github.com/amora-app/backend/internal/services/geo"
	healthsvc "github.com/amora-app/backend/internal/services/health"
	matchessvc "github.com/amora-app/backend/internal/services/matches"
	mediasvc "github.com/amora-app/backend/internal/services/media"
	profilesvc "github.com/amora-app/backend/internal/services/profiles"
	ratesvc "github.com/amora-app/backend/internal/services/rate"
	swipesvc "github.com/amora-app/backend/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	notifyRepo := redrepo.NewNotifyRepo(redisClient, log)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	profileRepo := pgrepo.NewProfileRepo(pool)
	preferenceRepo := pgrepo.NewPreferenceRepo(pool)
	discoveryRepo := pgrepo.NewDiscoveryRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	conversationRepo := pgrepo.NewConversationRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	scoreRepo := pgrepo.NewScoreRepo(pool)
	templateRepo := pgrepo.NewClosureTemplateRepo(pool)
	reputationRepo := pgrepo.NewReputationRepo(pool)

	geoService := geosvc.NewService(cfg.Engine.FuzzRadiusMiles)
	mediaService := mediasvc.NewService(s3Client, mediasvc.Config{
		Bucket: cfg.S3.Bucket,
		URLTTL: cfg.Engine.PhotoURLTTL,
	})
	rateLimiter := ratesvc.NewLimiter(rateRepo, ratesvc.Config{
		MaxRequests: cfg.Engine.RateMaxRequests,
		Window:      cfg.Engine.RateWindow,
	})
	authService := authsvc.NewService(cfg.Auth.JWTSecret)

	discoveryService := discoverysvc.NewService(discoverysvc.Dependencies{
		Candidates:  discoveryRepo,
		Swipes:      swipeRepo,
		Preferences: preferenceRepo,
		Profiles:    profileRepo,
		Photos:      mediaService,
		Fuzzer:      geoService,
		Distance:    geosvc.DistanceMiles,
		Logger:      log,
		MaxFeedSize: cfg.Engine.DiscoveryMaxSize,
	})
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:       pool,
		SwipeStore: swipeRepo,
		MatchStore: matchRepo,
	})
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		Pool:              pool,
		MatchStore:        matchRepo,
		ConversationStore: conversationRepo,
		MessageStore:      messageRepo,
	})
	compatibilityService := compatsvc.NewService(compatsvc.Dependencies{
		Profiles:     profileRepo,
		Preferences:  preferenceRepo,
		Interactions: swipeRepo,
		Matches:      matchRepo,
		Scores:       scoreRepo,
		Distance:     geosvc.DistanceMiles,
	})
	healthService := healthsvc.NewService(healthsvc.Dependencies{
		Conversations: conversationRepo,
	}, healthsvc.Config{
		NudgeAfter: cfg.Engine.NudgeAfter,
		BlockAfter: cfg.Engine.BlockAfter,
		SnoozeFor:  cfg.Engine.SnoozeFor,
	})
	closureService := closuresvc.NewService(closuresvc.Dependencies{
		Pool:          pool,
		Conversations: conversationRepo,
		Templates:     templateRepo,
		Reputation:    reputationRepo,
		Notifier:      notifyRepo,
		Logger:        log,
	})
	profileService := profilesvc.NewService(profilesvc.Dependencies{
		Profiles:    profileRepo,
		Preferences: preferenceRepo,
		Photos:      mediaService,
		Fuzzer:      geoService,
		Reputation:  reputationRepo,
	})

	RegisterRoutes(r, Dependencies{
		AuthService:          authService,
		DiscoveryService:     discoveryService,
		SwipeService:         swipeService,
		MatchService:         matchesService,
		CompatibilityService: compatibilityService,
		HealthService:        healthService,
		ClosureService:       closureService,
		ProfileService:       profileService,
		MediaService:         mediaService,
		RateLimiter:          rateLimiter,
		Logger:               log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

// ConversationRepo exposes the repo the maintenance job needs.
func (a *App) ConversationRepo() *pgrepo.ConversationRepo {
	return pgrepo.NewConversationRepo(a.postgres)
}
