package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/menchan-Rub/Shard-Bot-sub001/auditstore"
	"github.com/menchan-Rub/Shard-Bot-sub001/automod"
	"github.com/menchan-Rub/Shard-Bot-sub001/automod/keyword"
	"github.com/menchan-Rub/Shard-Bot-sub001/automod/rules"
	"github.com/menchan-Rub/Shard-Bot-sub001/automod/timeline"
	"github.com/menchan-Rub/Shard-Bot-sub001/automod/toxicity"
	"github.com/menchan-Rub/Shard-Bot-sub001/discord"
)

type Server struct {
	logger          *slog.Logger
	engine          *automod.Engine
	session         *discordgo.Session
	audit           *auditstore.Store
	janitorInterval time.Duration
}

type Config struct {
	DiscordToken    string
	RedisURL        string
	AuditDBPath     string
	PoliciesJSON    string
	BannedWords     string
	ToxicityHost    string
	ToxicityToken   string
	JanitorInterval time.Duration
	Logger          *slog.Logger
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	var timelines timeline.TimelineStore
	if config.RedisURL != "" {
		tl, err := timeline.NewRedisTimelineStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis timeline store: %v", err)
		}
		timelines = tl
		logger.Info("using redis timeline store")
	} else {
		timelines = timeline.NewMemTimelineStore()
	}

	var audit *auditstore.Store
	if config.AuditDBPath != "" {
		if err := os.MkdirAll(filepath.Dir(config.AuditDBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating audit db directory: %v", err)
		}
		store, err := auditstore.New(config.AuditDBPath)
		if err != nil {
			return nil, fmt.Errorf("opening audit db: %v", err)
		}
		audit = store
		logger.Info("audit log enabled", "path", config.AuditDBPath)
	}

	policies, err := discord.LoadPolicyStore(config.PoliciesJSON)
	if err != nil {
		return nil, fmt.Errorf("loading policy overrides: %v", err)
	}
	if config.BannedWords != "" {
		base := automod.DefaultPolicy()
		base.BannedWords = keyword.ParseWordList(config.BannedWords)
		policies.SetBase(base)
		logger.Info("loaded global banned-word list", "count", len(base.BannedWords))
	}

	session, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("creating gateway session: %v", err)
	}
	session.Identify.Intents = discord.GatewayIntents

	engine := automod.Engine{
		Logger:        logger,
		Rules:         rules.DefaultRules(),
		Timelines:     timelines,
		Recent:        automod.NewRecentContentStore(10_000, 10*time.Minute),
		Actions:       discord.NewSink(session, logger),
		Notifications: automod.NewNotificationThrottle(automod.DefaultNotifyCooldown),
	}
	if audit != nil {
		engine.Audit = audit
	}
	if config.ToxicityHost != "" {
		logger.Info("configuring content scoring client", "host", config.ToxicityHost)
		engine.Classifier = toxicity.NewClient(config.ToxicityHost, config.ToxicityToken, logger)
	}

	consumer := &discord.Consumer{
		Engine:   &engine,
		Policies: policies,
		Logger:   logger,
	}
	consumer.Bind(session)

	s := &Server{
		logger:          logger,
		engine:          &engine,
		session:         session,
		audit:           audit,
		janitorInterval: config.JanitorInterval,
	}

	return s, nil
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

// Run opens the gateway connection and blocks until the context is cancelled,
// then shuts down cleanly.
func (s *Server) Run(ctx context.Context) error {
	if err := s.session.Open(); err != nil {
		return fmt.Errorf("opening gateway connection: %w", err)
	}
	s.logger.Info("gateway connected")

	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		if err := s.engine.RunJanitor(ctx, s.janitorInterval); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("janitor exited", "err", err)
		}
	}()

	<-ctx.Done()
	s.logger.Info("shutting down")

	if err := s.session.Close(); err != nil {
		s.logger.Error("closing gateway session", "err", err)
	}
	<-janitorDone
	if s.audit != nil {
		if err := s.audit.Close(); err != nil {
			s.logger.Error("closing audit db", "err", err)
		}
	}
	return nil
}
