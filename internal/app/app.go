package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/hairtrack/hairtrack-api/internal/config"
	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
	"github.com/hairtrack/hairtrack-api/internal/domain/auth"
	"github.com/hairtrack/hairtrack-api/internal/domain/capture"
	"github.com/hairtrack/hairtrack-api/internal/domain/history"
	"github.com/hairtrack/hairtrack-api/internal/domain/profile"
	"github.com/hairtrack/hairtrack-api/internal/domain/realtime"
	"github.com/hairtrack/hairtrack-api/internal/domain/reminder"
	"github.com/hairtrack/hairtrack-api/internal/domain/specialist"
	"github.com/hairtrack/hairtrack-api/internal/domain/treatment"
	"github.com/hairtrack/hairtrack-api/internal/domain/user"
	"github.com/hairtrack/hairtrack-api/internal/pkg/classifier"
	"github.com/hairtrack/hairtrack-api/internal/pkg/database"
	"github.com/hairtrack/hairtrack-api/internal/pkg/email"
	"github.com/hairtrack/hairtrack-api/internal/pkg/imaging"
	"github.com/hairtrack/hairtrack-api/internal/pkg/jwt"
	"github.com/hairtrack/hairtrack-api/internal/pkg/storage"
)

// App holds the wired services shared by the API server and the CLI.
type App struct {
	Config *config.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	JWT    *jwt.Service

	Store storage.ObjectStore
	local *storage.LocalStorage

	Hub        *realtime.Hub
	Pipeline   *analysis.Pipeline
	Capture    *capture.Service
	History    *history.Service
	Auth       *auth.Service
	Profiles   *profile.Service
	Treatments *treatment.Service
	Clinics    *specialist.Directory
	Reminders  *reminder.Service
}

// Option overrides a dependency New would otherwise build from config.
type Option func(*options)

type options struct {
	classifier classifier.Classifier
	mailer     email.Sender
	store      storage.ObjectStore
	redis      *redis.Client
	useRedis   bool
}

// WithClassifier replaces the configured AI provider.
func WithClassifier(c classifier.Classifier) Option {
	return func(o *options) { o.classifier = c }
}

// WithStore replaces the configured object store.
func WithStore(s storage.ObjectStore) Option {
	return func(o *options) { o.store = s }
}

// WithMailer replaces the configured email sender.
func WithMailer(s email.Sender) Option {
	return func(o *options) { o.mailer = s }
}

// WithRedis uses client instead of dialing REDIS_URL. A nil client disables Redis.
func WithRedis(client *redis.Client) Option {
	return func(o *options) {
		o.redis = client
		o.useRedis = true
	}
}

// New connects infrastructure, applies migrations and wires every domain.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := database.Migrate(ctx, db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	a := &App{Config: cfg, DB: db}

	if o.useRedis {
		a.Redis = o.redis
	} else {
		a.Redis, err = database.NewRedis(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}

	a.Store = o.store
	if a.Store == nil {
		if a.Store, a.local, err = newStore(cfg); err != nil {
			a.Close()
			return nil, err
		}
	}

	ai := o.classifier
	if ai == nil {
		if ai, err = newClassifier(cfg); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.JWT = jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	profileRepo := profile.NewRepository(db)
	analysisRepo := analysis.NewRepository(db)
	treatmentRepo := treatment.NewRepository(db)

	// ---------- Services ----------
	a.Auth = auth.NewService(userRepo, profileRepo, a.JWT, a.Redis)
	a.Profiles = profile.NewService(profileRepo, userRepo)
	a.Treatments = treatment.NewService(treatmentRepo)

	uploads := analysis.NewUploadStage(a.Store, cfg.StorageBucket, cfg.SignedURLTTL)
	a.Pipeline = analysis.NewPipeline(analysisRepo, uploads, ai)
	a.History = history.NewService(analysisRepo, uploads)

	a.Hub = realtime.NewHub(a.Redis)
	go a.Hub.Run()

	a.Capture = capture.NewService(
		capture.NewStore(a.Redis, cfg.WizardTTL),
		capture.NewLocker(a.Redis),
		capture.NewAcquirer(imaging.NewProcessor(imaging.DefaultConfig())),
		a.Pipeline,
		a.Hub,
	)

	if a.Clinics, err = specialist.NewDirectory(); err != nil {
		a.Close()
		return nil, err
	}

	sender := o.mailer
	if sender == nil {
		sender = email.NewSender(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		})
	}
	mailer, err := email.NewService(sender)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Reminders = reminder.NewService(reminder.NewRepository(db), analysisRepo, mailer, cfg.AppURL)

	return a, nil
}

func newStore(cfg *config.Config) (storage.ObjectStore, *storage.LocalStorage, error) {
	switch strings.ToLower(cfg.StorageBackend) {
	case "s3":
		s, err := storage.NewS3Store(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PathStyle: cfg.S3Endpoint != "",
		})
		return s, nil, err
	case "r2":
		s, err := storage.NewR2Store(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
		})
		return s, nil, err
	case "azure":
		s, err := storage.NewAzureStore(cfg.AzureStorageAccount, cfg.AzureStorageKey)
		return s, nil, err
	case "local", "":
		s, err := storage.NewLocalStorage(cfg.LocalStoragePath, cfg.LocalStorageURL, cfg.LocalStorageSecret)
		return s, s, err
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

func newClassifier(cfg *config.Config) (classifier.Classifier, error) {
	switch strings.ToLower(cfg.AIProvider) {
	case "gateway", "":
		if cfg.AIAPIKey == "" {
			log.Warn().Msg("AI_API_KEY not configured, analysis requests will fail")
		}
		return classifier.NewGateway(classifier.GatewayConfig{
			BaseURL:   cfg.AIGatewayURL,
			APIKey:    cfg.AIAPIKey,
			Model:     cfg.AIModel,
			Timeout:   cfg.AITimeout(),
			UserAgent: "hairtrack-api",
		}), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
		return classifier.NewGemini(classifier.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: cfg.AITimeout(),
		}), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.AIProvider)
	}
}

// Close releases infrastructure connections.
func (a *App) Close() {
	if a.Hub != nil {
		a.Hub.Shutdown()
	}
	database.CloseRedis(a.Redis)
	database.Close(a.DB)
}
