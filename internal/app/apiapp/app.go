package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/antonvlk/emberline/internal/config"
	s3infra "github.com/antonvlk/emberline/internal/infra/s3"
	pgrepo "github.com/antonvlk/emberline/internal/repo/postgres"
	redrepo "github.com/antonvlk/emberline/internal/repo/redis"
	authsvc "github.com/antonvlk/emberline/internal/services/auth"
	decksvc "github.com/antonvlk/emberline/internal/services/deck"
	matchsvc "github.com/antonvlk/emberline/internal/services/matches"
	modsvc "github.com/antonvlk/emberline/internal/services/moderation"
	photosvc "github.com/antonvlk/emberline/internal/services/photos"
	profilesvc "github.com/antonvlk/emberline/internal/services/profiles"
	ratesvc "github.com/antonvlk/emberline/internal/services/rate"
	swipesvc "github.com/antonvlk/emberline/internal/services/swipes"
	userssvc "github.com/antonvlk/emberline/internal/services/users"
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

	userRepo := pgrepo.NewUserRepo(pool)
	likeRepo := pgrepo.NewLikeRepo(pool)
	passRepo := pgrepo.NewPassRepo(pool)
	blockRepo := pgrepo.NewBlockRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	reportRepo := pgrepo.NewReportRepo(pool)
	photoRepo := pgrepo.NewPhotoRepo(pool)
	deckRepo := pgrepo.NewDeckRepo(pool)

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
	photoStorage := photosvc.NewStorage(s3Client, cfg.S3.Bucket)
	if s3Client != nil {
		if err := photoStorage.EnsureBucket(ctx); err != nil {
			log.Warn("bucket init failed", zap.Error(err))
		}
	}

	runTx := func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		if pool == nil {
			return fmt.Errorf("postgres is unavailable")
		}
		return pgrepo.WithTx(ctx, pool, fn)
	}

	verifier := authsvc.NewVerifier(cfg.Auth.JWTSecret)
	rateLimiter := ratesvc.NewLimiter(rateRepo, ratesvc.Config{
		SwipesPerMinute: cfg.Limits.SwipesPerMinute,
		SwipesPer10Sec:  cfg.Limits.SwipesPer10Sec,
	})
	profileService := profilesvc.New(profilesvc.Dependencies{
		Users:  userRepo,
		Logger: log,
	})
	swipeService := swipesvc.New(swipesvc.Dependencies{
		Users:   userRepo,
		Likes:   likeRepo,
		Passes:  passRepo,
		Matches: matchRepo,
		Photos:  photoRepo,
		Limiter: rateLimiter,
		RunTx:   runTx,
		Logger:  log,
	})
	deckService := decksvc.New(decksvc.Dependencies{
		Candidates: deckRepo,
		Users:      userRepo,
		Passes:     passRepo,
		Signer:     photoStorage,
		Logger:     log,
	}, decksvc.Config{
		DefaultLimit: cfg.Deck.DefaultLimit,
		MaxLimit:     cfg.Deck.MaxLimit,
		PhotoURLTTL:  cfg.Photos.URLTTL,
	})
	matchService := matchsvc.New(matchsvc.Dependencies{
		Matches: matchRepo,
		Blocks:  blockRepo,
		Reports: reportRepo,
		Users:   userRepo,
		Signer:  photoStorage,
		RunTx:   runTx,
		Logger:  log,
	}, matchsvc.Config{
		PhotoURLTTL: cfg.Photos.URLTTL,
	})
	photoService := photosvc.New(photosvc.Dependencies{
		Photos:  photoRepo,
		Storage: photoStorage,
		Logger:  log,
	}, photosvc.Config{
		PhotoURLTTL: cfg.Photos.URLTTL,
	})
	moderationService := modsvc.New(modsvc.Dependencies{
		Photos:  photoRepo,
		Users:   userRepo,
		Reports: reportRepo,
		RunTx:   runTx,
		Logger:  log,
	})
	userService := userssvc.New(userssvc.Dependencies{
		Users:   userRepo,
		Storage: photoStorage,
		RunTx:   runTx,
		Logger:  log,
	})

	RegisterRoutes(r, Dependencies{
		Verifier:          verifier,
		ProfileService:    profileService,
		SwipeService:      swipeService,
		DeckService:       deckService,
		MatchService:      matchService,
		PhotoService:      photoService,
		ModerationService: moderationService,
		UserService:       userService,
		Logger:            log,
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
