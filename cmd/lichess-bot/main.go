package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lichess-bot/internal/bot"
	"lichess-bot/internal/config"
	"lichess-bot/internal/engine"
	"lichess-bot/internal/lichess"
	"lichess-bot/internal/logging"
	"lichess-bot/internal/notify"
	"lichess-bot/internal/store"
	httptransport "lichess-bot/internal/transport/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

var version = "dev"

var errNotBot = errors.New("account is not a bot account; rerun with --upgrade")

type options struct {
	upgrade    bool
	verbose    bool
	configPath string
	logFile    string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("lichess_bot_failed")
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("lichess-bot", pflag.ContinueOnError)
	fs.BoolVarP(&opts.upgrade, "upgrade", "u", false, "upgrade the account to a bot account")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.StringVarP(&opts.logFile, "logfile", "l", "", "write logs to this file")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	logCfg, err := config.LoadLog()
	if err != nil {
		return fmt.Errorf("load log config: %w", err)
	}
	if err := logging.Init(logCfg.WithFlags(opts.verbose, opts.logFile)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	cfg, err := config.LoadBot(opts.configPath)
	if err != nil {
		return fmt.Errorf("load bot config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := lichess.NewClient(cfg.URL, cfg.Token, version, 0)
	profile, err := ensureBot(ctx, client, opts.upgrade)
	if err != nil {
		return err
	}
	log.Info().Str("username", profile.Username).Str("url", client.BaseURL()).Str("version", version).Msg("lichess_bot_start")
	if cfg.Challenge.Concurrency > 1 {
		log.Warn().Int("concurrency", cfg.Challenge.Concurrency).Msg("concurrency_unsupported_playing_one_game")
	}

	var (
		recorders []bot.Recorder
		db        httptransport.Pinger
	)
	if cfg.PostgresDSN != "" {
		st, err := store.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("store init: %w", err)
		}
		defer st.Close()
		if err := st.Ping(ctx); err != nil {
			return fmt.Errorf("db ping: %w", err)
		}
		recorders = append(recorders, st)
		db = st
	}
	notifier := notify.New(notify.ConfigFromBot(cfg.Notify, client.GameURL))
	if notifier.Enabled() {
		notifier.Start(context.Background())
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			notifier.Stop(stopCtx)
		}()
		recorders = append(recorders, notifier)
	}

	guard := bot.NewSessionGuard()
	dispatcher := bot.NewDispatcher(bot.DispatcherConfig{
		Platform: bot.NewLichessPlatform(client),
		Acceptor: bot.NewChallengePolicy(cfg.Challenge),
		Session: bot.SessionConfig{
			NewEngine: engineFactory(cfg.Engine),
			Username:  profile.Username,
			AbortTime: cfg.AbortDuration(),
		},
		Retry:    bot.DefaultRetryPolicy(),
		Recorder: bot.MultiRecorder(recorders...),
		Guard:    guard,
	})

	if cfg.StatusAddr != "" {
		shutdown := startStatusServer(cfg.StatusAddr, httptransport.NewStatusHandlers(guard, db, profile.Username))
		defer shutdown()
	}

	if err := dispatcher.Run(ctx); err != nil {
		return err
	}
	log.Info().Msg("lichess_bot_stopped")
	return nil
}

type accountAPI interface {
	GetProfile(ctx context.Context) (lichess.Profile, error)
	UpgradeToBot(ctx context.Context) error
}

// ensureBot returns the profile of a bot account, upgrading it first when
// asked to.
func ensureBot(ctx context.Context, api accountAPI, upgrade bool) (lichess.Profile, error) {
	profile, err := api.GetProfile(ctx)
	if err != nil {
		return lichess.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if profile.IsBot() {
		return profile, nil
	}
	if !upgrade {
		return lichess.Profile{}, errNotBot
	}
	log.Info().Str("username", profile.Username).Msg("account_upgrade")
	if err := api.UpgradeToBot(ctx); err != nil {
		return lichess.Profile{}, fmt.Errorf("upgrade to bot: %w", err)
	}
	profile.Title = "BOT"
	return profile, nil
}

func engineFactory(cfg config.EngineConfig) bot.EngineFactory {
	return func() (bot.MoveEngine, error) {
		eng, err := engine.Start(engine.Options{Path: cfg.Path, UCIOptions: cfg.UCIOptions})
		if err != nil {
			return nil, err
		}
		return eng, nil
	}
}

func startStatusServer(addr string, status *httptransport.StatusHandlers) func() {
	r := httptransport.NewRouter(status)
	httptransport.LogRoutes(r)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("status_listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("status_server_stopped")
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
