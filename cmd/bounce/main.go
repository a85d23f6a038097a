package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-bounce/internal/app"
	"github.com/coreman2200/funtimes-bounce/internal/config"
	diag "github.com/coreman2200/funtimes-bounce/internal/diagnostics"
	"github.com/coreman2200/funtimes-bounce/internal/store"
	"github.com/coreman2200/funtimes-bounce/internal/ws"
)

func main() {
	// ---- Flags (remain usable; config.yaml and BOUNCE_* override them) ----
	cfg := config.Default()
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		envPath    = flag.String("env", ".env", "path to .env file")
	)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&cfg.DB, "db", cfg.DB, "movie library database (empty disables)")
	flag.StringVar(&cfg.Movie, "movie", cfg.Movie, "movie JSON file or library id to load at start")
	flag.StringVar(&cfg.Ping, "ping", cfg.Ping, "wav played when a target is hit")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug | info | warn | error")
	flag.Var(&cfg.FrameRate, "fps", "frame rate, e.g. 60Hz")
	flag.Float64Var(&cfg.Rate, "rate", cfg.Rate, "playback rate for autoplay")
	flag.BoolVar(&cfg.Autoplay, "autoplay", cfg.Autoplay, "start playing once loaded")
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config ----
	if err := config.LoadInto(*configPath, cfg); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	}
	if err := config.ApplyEnv(cfg, *envPath); err != nil {
		log.Fatal().Err(err).Msg("environment")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// ---- Library ----
	var lib *store.Store
	if cfg.DB != "" {
		s, err := store.Open(cfg.DB)
		if err != nil {
			log.Warn().Err(err).Str("db", cfg.DB).Msg("movie library unavailable")
		} else {
			lib = s
			defer lib.Close()
		}
	}

	// ---- Core + hub ----
	state := ws.NewState(nil, nil)
	core, err := app.NewCore(app.Options{
		Rig:       cfg.Rig,
		Driver:    state,
		FrameRate: cfg.FrameRate.Frequency,
		Ping:      cfg.Ping,
		Diag:      diag.Sink(state.Push),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("core")
	}
	state.Player = core
	if lib != nil {
		state.Library = &app.Library{Store: lib, Core: core}
	}

	if cfg.Movie != "" {
		m, err := app.OpenMovie(cfg.Movie, lib)
		if err != nil {
			log.Fatal().Err(err).Str("movie", cfg.Movie).Msg("load movie")
		}
		core.Load(m)
		if cfg.Autoplay {
			core.Play(cfg.Rate)
		}
	}

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", state.HandleFramesWS)
	mux.HandleFunc("/diag", state.HandleDiagWS)
	mux.HandleFunc("/control", state.HandleControlWS)
	mux.HandleFunc("/health", state.HandleHealth)
	mux.HandleFunc("/movies", state.HandleMovies)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- Run frame loop & server ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = core.Run(ctx)
	}()
	go func() {
		log.Info().Str("addr", cfg.Addr).Stringer("fps", cfg.FrameRate).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	log.Info().Msg("shutting down")
	_ = srv.Close()
	<-done
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
