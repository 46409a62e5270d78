package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evtd/src-server/metric"
	"evtd/src-server/route"
	"evtd/src-server/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	level := slog.LevelDebug
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := level.UnmarshalText([]byte(lvl)); err != nil {
			slog.Warn("invalid LOG_LEVEL, using debug", "LOG_LEVEL", lvl)
			level = slog.LevelDebug
		}
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	// AppState holds the config, the database handles, the event store and
	// the bus its notifications go out on
	as := utils.NewAppState()

	metric.Init(as)

	muxer := http.NewServeMux()
	route.Events(muxer, as)
	route.Notifications(muxer, as)
	route.Health(muxer, as)

	server := &http.Server{
		Addr:              ":" + as.Config.GetPort(),
		Handler:           route.RequestLogger(muxer),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit", "port", as.Config.GetPort(), "events", as.Store.Count())

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan

	slog.Info("Gracefully shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), as.Config.GetShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	as.GracefulShutdown()
}
