// Package server initializes and runs the address book backend: it opens the
// database and optional Redis, runs migrations, wires services and serves the
// REST API plus an optional gRPC health endpoint until shut down.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/logging"
	"github.com/dmitrijs2005/addressbook/internal/server/avatars"
	"github.com/dmitrijs2005/addressbook/internal/server/cache"
	"github.com/dmitrijs2005/addressbook/internal/server/config"
	"github.com/dmitrijs2005/addressbook/internal/server/mail"
	"github.com/dmitrijs2005/addressbook/internal/server/ratelimit"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/addressbook/internal/server/rest"
	"github.com/dmitrijs2005/addressbook/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/addressbook/internal/server/grpc"
)

// janitorInterval is how often expired refresh token rows are purged.
const janitorInterval = time.Hour

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	redis          *redis.Client
	limiter        ratelimit.Limiter
	authService    *services.AuthService
	userService    *services.UserService
	contactService *services.ContactService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db, repomanager: rm}

	var (
		userCache services.UserCache
		resets    services.ResetTokenStore
	)
	if c.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, c.RedisURL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.redis = client
		userCache = cache.NewRedisUserCache(client, c.UserCacheTTL, logger.With("module", "user_cache"))
		resets = cache.NewRedisResetTokens(client)
		app.limiter = ratelimit.NewRedisLimiter(client)
	} else {
		logger.Warn(ctx, "Redis not configured, using in-process rate limiting and no user cache")
		userCache = cache.NopUserCache{}
		resets = cache.NewMemoryResetTokens()
		app.limiter = ratelimit.NewLocalLimiter()
	}

	var transport mail.Transport
	if c.SendGridAPIKey != "" {
		transport = mail.NewSendGridTransport(c.SendGridAPIKey, c.MailFromAddress, c.MailFromName)
	} else {
		logger.Warn(ctx, "SendGrid key not configured, emails will be logged")
		transport = mail.NewLogTransport(logger.With("module", "mail"))
	}
	mailer := mail.NewMailer(transport, c)

	storage, err := avatars.NewS3Storage(ctx, c)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("image host init error: %w", err)
	}

	app.authService = services.NewAuthService(db, rm, c, mailer, resets, userCache)
	app.userService = services.NewUserService(db, rm, userCache, storage)
	app.contactService = services.NewContactService(db, rm)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config, app.logger, app.db,
		app.authService, app.userService, app.contactService, app.limiter)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrHealth, app.logger, app.db)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeExpiredTokens removes refresh token rows past their expiry until ctx
// is done.
func (app *App) purgeExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.repomanager.RefreshTokens(app.db).DeleteExpired(ctx, time.Now())
			if err != nil {
				app.logger.Error(ctx, "purging expired refresh tokens failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "purged expired refresh tokens", "count", n)
			}
		}
	}
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	_ = app.db.Close()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrHealth != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHealthServer(ctx, cancelFunc)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.purgeExpiredTokens(ctx)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}
