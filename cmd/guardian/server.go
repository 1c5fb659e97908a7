package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	cli "github.com/urfave/cli/v2"

	"github.com/haven-social/guardian/classifier"
	"github.com/haven-social/guardian/lexicon"
	"github.com/haven-social/guardian/linksafety"
	"github.com/haven-social/guardian/pipeline"
	"github.com/haven-social/guardian/policy"
	"github.com/haven-social/guardian/queue"
	"github.com/haven-social/guardian/usage"
)

type Server struct {
	logger   *slog.Logger
	echo     *echo.Echo
	httpd    *http.Server
	engine   *pipeline.Engine
	policies policy.Store
	queue    queue.Store
}

func NewServer(cctx *cli.Context, logger *slog.Logger) (*Server, error) {

	db, err := setupDatabase(cctx.String("database-url"))
	if err != nil {
		return nil, err
	}

	var policies policy.Store
	policies, err = policy.NewGormStore(db)
	if err != nil {
		return nil, err
	}

	redisURL := cctx.String("redis-url")
	var tracker usage.Tracker
	if redisURL != "" {
		policies, err = policy.NewCachedStore(policies, redisURL, cctx.Duration("policy-cache-ttl"))
		if err != nil {
			return nil, fmt.Errorf("connecting policy cache: %w", err)
		}
		rt, err := usage.NewRedisTracker(redisURL)
		if err != nil {
			return nil, fmt.Errorf("connecting usage tracker: %w", err)
		}
		tracker = rt
	} else {
		tracker = usage.NewMemTracker()
	}

	if err := seedPolicies(cctx.Context, policies); err != nil {
		return nil, err
	}

	queueStore, err := queue.NewGormStore(db)
	if err != nil {
		return nil, err
	}

	var providers []linksafety.Provider
	if host := cctx.String("urlvote-host"); host != "" {
		providers = append(providers, linksafety.NewURLVoteClient(host, cctx.String("urlvote-api-key")))
	}
	if host := cctx.String("threatlist-host"); host != "" {
		providers = append(providers, linksafety.NewThreatListClient(host, cctx.String("threatlist-api-key")))
	}
	logger.Info("link reputation configured", "providers", len(providers))

	var classifierClient classifier.Client
	if host := cctx.String("classifier-host"); host != "" {
		classifierClient = classifier.NewHTTPClient(host, cctx.String("classifier-api-token"))
	} else {
		logger.Info("no classifier configured, AI tier will auto-pass")
	}

	var notifier pipeline.Notifier
	if url := cctx.String("slack-webhook-url"); url != "" {
		notifier = &pipeline.SlackNotifier{SlackWebhookURL: url}
	}

	var baseLexicon *lexicon.Lexicon
	if p := cctx.String("lexicon-file"); p != "" {
		baseLexicon, err = lexicon.LoadFromFileJSON(p)
		if err != nil {
			return nil, fmt.Errorf("loading lexicon file: %w", err)
		}
		logger.Info("loaded base lexicon", "terms", len(baseLexicon.Terms), "domains", len(baseLexicon.Domains))
	}

	engine := &pipeline.Engine{
		Logger:      logger,
		Policies:    policies,
		Matcher:     lexicon.NewMatcher(logger),
		Links:       linksafety.NewAnalyzer(logger, providers, tracker),
		Classifier:  classifierClient,
		Queue:       queueStore,
		Notifier:    notifier,
		Usage:       tracker,
		BaseLexicon: baseLexicon,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("4M"))

	srv := &Server{
		logger:   logger,
		echo:     e,
		engine:   engine,
		policies: policies,
		queue:    queueStore,
	}
	srv.httpd = &http.Server{
		Handler:        srv,
		WriteTimeout:   time.Minute,
		ReadTimeout:    time.Minute,
		MaxHeaderBytes: 1 * (1024 * 1024),
	}

	e.GET("/_health", srv.HandleHealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/api/moderation/check", srv.HandleModerationCheck)

	e.GET("/api/admin/policies", srv.HandleListPolicies)
	e.GET("/api/admin/policies/:workflow", srv.HandleGetPolicy)
	e.PUT("/api/admin/policies/:workflow", srv.HandleSavePolicy)
	e.PUT("/api/admin/policies/:workflow/lexicon", srv.HandleUpdateLexicon)
	e.GET("/api/admin/queue", srv.HandleListQueue)
	e.GET("/api/admin/queue/:id", srv.HandleGetQueueEntry)
	e.POST("/api/admin/queue/:id/resolve", srv.HandleResolveQueueEntry)
	e.GET("/api/admin/stats", srv.HandleStats)

	return srv, nil
}

// seedPolicies installs the built-in workflow defaults for any workflow that
// has never been configured.
func seedPolicies(ctx context.Context, store policy.Store) error {
	for _, wf := range []string{policy.WorkflowPublicChannel, policy.WorkflowPrivateGroup, policy.WorkflowAgentOutput} {
		existing, err := store.GetPolicy(ctx, wf)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := store.SavePolicy(ctx, policy.DefaultPolicy(wf)); err != nil {
			return err
		}
	}
	return nil
}

func (srv *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

func (srv *Server) RunAPI(bind string) error {
	srv.httpd.Addr = bind
	srv.logger.Info("starting server", "bind", bind)
	go func() {
		if err := srv.httpd.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				srv.logger.Error("HTTP server shutting down unexpectedly", "err", err)
			}
		}
	}()

	quit := make(chan struct{})
	exitSignals := make(chan os.Signal, 1)
	signal.Notify(exitSignals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-exitSignals
		srv.logger.Info("received OS exit signal", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.httpd.Shutdown(ctx); err != nil {
			srv.logger.Error("HTTP server shutdown error", "err", err)
		}
		close(quit)
	}()
	<-quit
	return nil
}
