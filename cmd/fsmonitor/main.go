package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"fsmonitor/internal/alerting"
	"fsmonitor/internal/config"
	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/metrics"
	"fsmonitor/internal/models"
	"fsmonitor/internal/monitor"
	"fsmonitor/internal/probe"
	"fsmonitor/internal/scheduler"
	"fsmonitor/internal/server"
	"fsmonitor/internal/storage"
	"fsmonitor/internal/watch"
)

const license = "fsmonitor watches report directories, the users file and the print services of a reporting host."

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to configuration file (YAML)")
		addr       = flag.String("addr", "", "address for the web server (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	var source config.Source = config.MapSource(cfg.Parameters)
	values, err := source.Values()
	if err != nil {
		log.Fatalf("read parameters: %v", err)
	}

	out, closer := eventlog.OpenOutput(eventlog.FileOptions{Path: cfg.LogFile})
	defer closer.Close()
	// Verify reports a bad level once the logger exists.
	level, err := strconv.Atoi(strings.TrimSpace(values[config.KeyLoggingLevel]))
	if err != nil {
		level = eventlog.DefaultLevel
	}
	logger := eventlog.New(eventlog.NewSlogSink(out), eventlog.NormalizeLevel(level))

	logger.Info(eventlog.License, license)
	logger.Info(eventlog.LoggerStarted, fmt.Sprintf("Logger started at level %d", logger.Level()))
	config.LogValues(values, logger)
	settings := config.Verify(values, logger)
	if settings.LoggingLevel != logger.Level() {
		logger.SetLevel(settings.LoggingLevel)
	}

	prom := metrics.NewPrometheus()
	fields, err := storage.NewFieldStore(filepath.Join(cfg.DataDirectory, "fields.json"), logger)
	if err != nil {
		log.Fatalf("initialise field storage: %v", err)
	}
	metrics.PublishFields(prom, fields.Fields())
	publisher := metrics.Multi{prom, fields}
	for _, field := range settings.Dropped {
		metrics.PublishUnknown(publisher, field)
	}

	alerts, err := storage.NewAlertStorage(filepath.Join(cfg.DataDirectory, "alerts.json"), storage.DefaultAlertLimit, logger)
	if err != nil {
		log.Fatalf("initialise alert storage: %v", err)
	}
	alerter := alerting.NewAlerter(logger)
	alerter.AddNotifier(alerts)

	serviceProbe, err := probe.New(cfg.ServiceProbe)
	if err != nil {
		log.Fatalf("service probe: %v", err)
	}

	evaluators := monitor.Build(settings, monitor.Deps{
		Publisher: publisher,
		Logger:    logger,
		Probe:     serviceProbe,
	})
	sched := scheduler.New(evaluators, scheduler.Options{
		Interval:    settings.PollInterval(),
		EvalTimeout: time.Duration(cfg.ProbeTimeoutSeconds) * time.Second,
		Window:      time.Duration(cfg.CoalesceWindowMS) * time.Millisecond,
		Subscriber: watch.FS{OnError: func(target models.Target, err error) {
			logger.Trace(eventlog.WatchSetupFail, err, "Watcher error for "+target.ID)
		}},
		Alerts: alerter,
		Logger: logger,
	})
	sched.Start()
	defer sched.Stop()

	srv := server.New(cfg.Addr, server.Deps{
		Fields:   fields,
		Targets:  sched,
		Alerts:   alerts,
		Gatherer: prom.Registry(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	targets := settings.Targets()
	ids := make([]string, 0, len(targets))
	for _, target := range targets {
		ids = append(ids, target.ID)
	}
	logger.Info(eventlog.ServiceStart, fmt.Sprintf("fsmonitor listening on %s (interval %g minutes, targets: %s)",
		cfg.Addr, settings.IntervalMinutes, strings.Join(ids, ", ")))
	if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Trace(eventlog.GenericError, err, "server error")
		sched.Stop()
		closer.Close()
		os.Exit(1)
	}
	logger.Info(eventlog.ServiceStop, "fsmonitor stopping")
}
