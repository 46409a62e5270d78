package route

import (
	"net/http"
	"runtime"

	"evtd/src-server/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthRespBody struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	GoVersion string `json:"goVersion"`
	Events    int64  `json:"events"`
}

func Health(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := as.RawDB.PingContext(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database unreachable")
			return
		}
		writeJSON(w, http.StatusOK, HealthRespBody{
			Status:    "ok",
			Uptime:    as.GetUptime().String(),
			GoVersion: runtime.Version(),
			Events:    as.Store.Count(),
		})
	})

	muxer.Handle("GET /metrics", promhttp.HandlerFor(as.Registry, promhttp.HandlerOpts{}))
}
