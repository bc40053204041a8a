package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tallycalc/tally/pkg/config"
	"github.com/tallycalc/tally/pkg/engine"
	"github.com/tallycalc/tally/pkg/events"
)

// autoClearIdleGrace is how long the session must be idle before a
// scheduled clear goes ahead.
const autoClearIdleGrace = time.Minute

var (
	conf      *config.File
	session   *Session
	sseHub    *events.EventHub
	autoClear *Scheduler
)

// streamsDone is closed when the server shuts down, ending event streams.
var streamsDone chan struct{}

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/state", getState)
	router.GET("/display", getDisplay)
	router.POST("/press", press)
	router.POST("/clear", clearSession)
	router.GET("/config", getConfig)
	router.PUT("/max-digits", setMaxDigits)
	router.PUT("/precision", setPrecision)
	router.PUT("/auto-clear", setAutoClear)
	router.PUT("/auto-clear/skip", skipAutoClear)
	router.GET("/events", streamEvents)
	router.GET("/version", getVersion)

	return router
}

// setupState builds the session and its helpers from the loaded config.
func setupState() {
	streamsDone = make(chan struct{})
	sseHub = events.NewEventHub()
	session = NewSession(sseHub,
		engine.WithMaxDigits(conf.MaxDigits()),
		engine.WithPrecision(conf.Precision()),
	)
	autoClear = NewScheduler(autoClearTask, autoClearPreCheck, func(err error) {
		logrus.Warnf("auto clear: %v", err)
	})
}

func autoClearTask() error {
	session.Clear()
	sseHub.Publish(events.SessionClear, events.SessionClearEvent{
		Reason: "scheduled",
		Ts:     time.Now().Unix(),
	})
	logrus.Info("session cleared by schedule")
	return nil
}

func autoClearPreCheck() error {
	if idle := session.IdleFor(); idle < autoClearIdleGrace {
		return errors.New("session is in use")
	}
	return nil
}

// applyConfig pushes the current config into the running session.
func applyConfig() {
	session.Configure(conf.MaxDigits(), conf.Precision())
	applyAutoClear(conf.AutoClear())
}

func applyAutoClear(expr string) {
	if expr == "" {
		autoClear.Unschedule()
		return
	}
	if err := autoClear.Schedule(expr); err != nil {
		logrus.Errorf("invalid auto clear schedule %q: %v", expr, err)
		return
	}
	next, _ := autoClear.Status()
	logrus.WithField("next", next.Format(time.DateTime)).Info("auto clear scheduled")
}

func reloadConfig() {
	if err := conf.Load(); err != nil {
		logrus.Errorf("failed to reload config: %v", err)
		return
	}
	applyConfig()
	logrus.WithFields(conf.LogrusFields()).Info("config reloaded")
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	router := setupRoutes()

	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).WithField("path", conf.Path()).Infof("config loaded")

	setupState()
	applyConfig()
	autoClear.Start()

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			reloadConfig()
		}
	}()

	stopWatching, err := watchConfig(conf.Path(), reloadConfig)
	if err != nil {
		logrus.Warnf("config changes will only be picked up on SIGHUP: %v", err)
		stopWatching = func() {}
	}

	srv := &http.Server{
		Handler: router,
	}
	srv.RegisterOnShutdown(func() { close(streamsDone) })

	if err := os.Remove(unixSocketPath); err == nil {
		logrus.Infof("removed stale socket %s", unixSocketPath)
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("stopping scheduler and config watcher")
	autoClear.Stop()
	stopWatching()

	logrus.Info("exiting")
	return nil
}
