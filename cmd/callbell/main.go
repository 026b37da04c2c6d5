package main

import (
	"context"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/callbell/modules/admin"
	"github.com/dmitrymomot/callbell/modules/intercom"
	"github.com/dmitrymomot/callbell/modules/voice"
	"github.com/dmitrymomot/callbell/pkg/broadcast"
	"github.com/dmitrymomot/callbell/pkg/channelstore"
	"github.com/dmitrymomot/callbell/pkg/config"
	"github.com/dmitrymomot/callbell/pkg/httpserver"
	"github.com/dmitrymomot/callbell/pkg/logger"
	"github.com/dmitrymomot/callbell/pkg/requestid"
	"github.com/dmitrymomot/callbell/pkg/session"
	"github.com/dmitrymomot/callbell/pkg/voicevox"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Server   httpserver.Config
	Session  session.Config
	Channels channelstore.Config
	Intercom intercom.Config
	Admin    admin.Config
	Voicevox voicevox.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "callbell"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := channelstore.New(cfg.Channels.Path, log.With(logger.Component("channelstore")))
	if cfg.Channels.WatchFile {
		go func() {
			if err := store.Watch(ctx); err != nil {
				log.Error("channel file watcher stopped", logger.Error(err))
			}
		}()
	}

	registry := broadcast.NewRegistry(log.With(logger.Component("broadcast")))
	sessions := session.NewFromConfig(cfg.Session)

	vvClient := voicevox.NewClient(cfg.Voicevox, log.With(logger.Component("voicevox")))
	vvSettings := voicevox.NewSettingsManager(cfg.Voicevox, log.With(logger.Component("voicevox")))

	intercomSvc := intercom.NewService(cfg.Intercom, store, sessions, registry,
		log.With(logger.Component("intercom")))
	voiceSvc := voice.NewService(vvClient, vvSettings, log.With(logger.Component("voice")))

	adminSvc, err := admin.NewService(cfg.Admin, store, sessions, log.With(logger.Component("admin")))
	if err != nil {
		log.Error("failed to initialize admin module", logger.Error(err))
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(session.Middleware(sessions))

	r.Get("/health", httpserver.HealthCheckHandler(ctx, log, store.Healthy))
	r.Get("/events", intercomSvc.Events)
	r.Route("/api", func(api chi.Router) {
		api.Mount("/voicevox", voiceSvc.Handle())
		api.Mount("/", intercomSvc.Handle())
	})
	r.Mount("/admin", adminSvc.Handle())

	srv := httpserver.NewFromConfig(cfg.Server, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}
