package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/aquamind/analysis"
	"github.com/jrsteele09/aquamind/capture"
	"github.com/jrsteele09/aquamind/internal/config"
	"github.com/jrsteele09/aquamind/internal/logging"
	"github.com/jrsteele09/aquamind/metrics"
	"github.com/jrsteele09/aquamind/navigation"
	"github.com/jrsteele09/aquamind/reclaim"
	"github.com/jrsteele09/aquamind/server"
	"github.com/jrsteele09/aquamind/sessions"
	"github.com/jrsteele09/aquamind/toast"
)

func main() {
	if path := config.ConfigFile(); path != "" {
		if err := config.LoadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config file: %s\n", err)
			os.Exit(1)
		}
	}
	c := config.New()
	logger := logging.New("main", c.GetEnv())

	if err := run(c, logger); err != nil {
		logger.Fatal().Err(err).Msg("Error running server")
	}
	logger.Info().Msg("Server stopped")
}

func run(c config.Config, logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	ctx := context.Background()
	store, closeStore, err := openStorage(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	env := c.GetEnv()
	m := metrics.New()
	board := capture.NewBoard()
	registry := capture.NewRegistry()

	reclaimer := reclaim.New(board, registry, store,
		reclaim.WithLogger(logging.New("reclaim", env)),
		reclaim.WithMetrics(m))

	sessionStore := sessions.NewStore(store,
		sessions.WithMaxAge(c.GetMaxSessionAge()),
		sessions.WithReleaser(reclaimer),
		sessions.WithLogger(logging.New("sessions", env)))
	sessionStore.Subscribe(func(e sessions.Event) {
		m.SessionEvent(e.Kind.String())
	})

	policy := navigation.DefaultPolicy()
	policy.LoginPath = c.GetLoginRoute()
	policy.LandingPath = c.GetLandingRoute()
	guard := navigation.NewGuard(navigation.DefaultTable(), policy, sessionStore, reclaimer,
		navigation.WithLogger(logging.New("navigation", env)),
		navigation.WithMetrics(m))

	analysisLogger := logging.New("analysis", env)
	client := analysis.NewClient(c.GetAnalyticsBaseURL(),
		analysis.WithHTTPClient(&http.Client{Timeout: c.GetAnalyticsTimeout()}),
		analysis.WithClientLogger(analysisLogger),
		analysis.WithTokenFunc(func(ctx context.Context) (string, bool) {
			session, ok := sessionStore.Read(ctx)
			return session.Token, ok
		}))
	useCases := analysis.NewUseCases(client, sessionStore,
		analysis.WithLogger(analysisLogger),
		analysis.WithMetrics(m),
		analysis.WithSink(toast.LogSink{Logger: analysisLogger}))

	handler, err := server.New(c, server.Deps{
		Storage:  store,
		Sessions: sessionStore,
		Guard:    guard,
		Board:    board,
		Registry: registry,
		Analysis: useCases,
		Metrics:  m,
		Logger:   logging.New("server", env),
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer, logger) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}

	// Cameras still streaming when the process stops are released first.
	reclaimer.ReleaseAll(ctx)
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
