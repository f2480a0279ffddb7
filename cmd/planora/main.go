package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"planora/internal/config"
	"planora/internal/database"
	httpapi "planora/internal/http"
	"planora/internal/logger"
	"planora/internal/notify"
	"planora/internal/oauth"
	"planora/internal/repository"
	"planora/internal/rooms"
	"planora/internal/rsvp"
	"planora/internal/service"
	"planora/internal/store"
	"planora/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "planora")
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	kv := store.NewRedisKV(redisClient)

	events := repository.NewPostgresEventsRepo(db)
	guests := repository.NewPostgresGuestsRepo(db)
	ceremonies := repository.NewPostgresCeremoniesRepo(db)
	attendance := repository.NewPostgresAttendanceRepo(db)
	travel := repository.NewPostgresTravelRepo(db)
	messages := repository.NewPostgresMessagesRepo(db)
	hotels := repository.NewPostgresHotelsRepo(db)
	templates := repository.NewPostgresTemplatesRepo(db)
	wizard := repository.NewPostgresWizardRepo(db)
	organizers := repository.NewPostgresOrganizersRepo(db)
	notifications := repository.NewPostgresNotificationsRepo(db)
	stage2 := repository.NewPostgresRSVPRepo(db)

	codec := token.NewCodec(
		[]byte(cfg.RSVP.TokenSecret),
		token.WithTTL(time.Duration(cfg.RSVP.TokenTTLDays)*24*time.Hour),
	)

	providerTimeout := time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
	oauthManager := oauth.NewManager(oauth.GoogleConfig{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.GoogleRedirectURL,
	}, kv, resty.New().SetTimeout(providerTimeout), log)

	assigner := rooms.NewAssigner(events, guests, travel, hotels, log)
	rsvpSvc := rsvp.NewService(rsvp.Deps{
		Codec:      codec,
		Events:     events,
		Guests:     guests,
		Ceremonies: ceremonies,
		Attendance: attendance,
		Travel:     travel,
		Messages:   messages,
		Stage2:     stage2,
		Rooms:      assigner,
		Logger:     log,
	})

	senders := notify.NewRestySenderFactory(providerTimeout, oauthManager)
	dispatcher := notify.NewDispatcher(senders, templates, notifications, log)

	authSvc := service.NewAuthService(organizers, kv, log)
	eventSvc := service.NewEventService(service.EventServiceDeps{
		Events:        events,
		Guests:        guests,
		Ceremonies:    ceremonies,
		Attendance:    attendance,
		Travel:        travel,
		Messages:      messages,
		Hotels:        hotels,
		Templates:     templates,
		Wizard:        wizard,
		Notifications: notifications,
		Logger:        log,
	})
	guestSvc := service.NewGuestService(events, guests, notifications, codec, cfg.RSVP.PublicBaseURL, log)

	limiter := httpapi.NewRateLimiter(cfg.RateLimit.PerSecond, int64(cfg.RateLimit.Burst))
	defer limiter.Close()

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Auth:    authSvc,
		AuthAPI: httpapi.NewAuthHandler(authSvc, log),
		RSVP:    httpapi.NewRSVPHandler(rsvpSvc, dispatcher, events, guests, log),
		Events:  httpapi.NewEventHandler(eventSvc, log),
		Guests:  httpapi.NewGuestHandler(guestSvc, log),
		OAuth:   httpapi.NewOAuthHandler(oauthManager, eventSvc, log),
		Limiter: limiter,
		Logger:  log,
	})

	server := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal("server failed", zap.Error(err))
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
