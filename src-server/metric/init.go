package metric

import (
	"context"
	"log/slog"
	"time"

	"evtd/src-server/store"
	"evtd/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func databaseEmptyRead(as *utils.AppState, tickerInterval time.Duration) {
	databaseEmptyRead := promauto.With(as.Registry).NewGauge(prometheus.GaugeOpts{
		Name: "evtd_database_empty_read_microsec",
		Help: "The latency of an empty database read in microseconds",
	})
	slog.Debug("evtd_database_empty_read_microsec metric registered")

	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				as.Registry.Unregister(databaseEmptyRead)
				slog.Debug("evtd_database_empty_read_microsec metric unregistered")
				return
			case <-ticker.C:
				latency, err := database(context.Background(), as)
				if err != nil {
					slog.Error("can't get database latency", "error", err)
					continue
				}
				databaseEmptyRead.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

// a gauge that shows the latest sample from ch and falls back to 0 when idle
func latencyGauge(as *utils.AppState, name, help string, ch <-chan float64, clearTickerInterval time.Duration) {
	gauge := promauto.With(as.Registry).NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
	slog.Debug("metric registered", "name", name)

	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		clearTicker := time.NewTicker(clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				as.Registry.Unregister(gauge)
				slog.Debug("metric unregistered", "name", name)
				return
			case latency := <-ch:
				gauge.Set(latency)
				clearTicker.Reset(clearTickerInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

// events counts the notifications going through the bus and exposes how
// many events exist.
func events(as *utils.AppState) func() {
	notifications := promauto.With(as.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "evtd_notifications_total",
		Help: "Notifications published after successful event mutations",
	}, []string{"kind"})
	for _, kind := range []store.NotificationKind{store.EventCreated, store.EventUpdated} {
		notifications.WithLabelValues(string(kind))
	}

	promauto.With(as.Registry).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "evtd_events",
		Help: "Number of events created so far",
	}, func() float64 {
		return float64(as.Store.Count())
	})

	return as.Bus.Subscribe(func(_ context.Context, n store.Notification) {
		notifications.WithLabelValues(string(n.Kind)).Inc()
	})
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := as.Config.GetMetricCollectionInterval() * 2

	databaseEmptyRead(as, tickerInterval)
	latencyGauge(as, "evtd_database_read_microsec",
		"The latency of a database read in microseconds",
		as.MetricChans.DatabaseRead, clearTickerInterval)
	latencyGauge(as, "evtd_database_write_microsec",
		"The latency of a database write in microseconds",
		as.MetricChans.DatabaseWrite, clearTickerInterval)
	unsubscribe := events(as)

	go func() {
		<-as.CreateGracefulShutdownChan()
		unsubscribe()
	}()
}
