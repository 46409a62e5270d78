package route

import (
	"net/http"
	"strconv"
	"time"

	"evtd/src-server/model"
	"evtd/src-server/utils"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 500
)

type OneNotificationRespBody struct {
	Seq              int64  `json:"seq"`
	ID               string `json:"id"`
	Kind             string `json:"kind"`
	EventID          int64  `json:"eventId"`
	Name             string `json:"name"`
	MaxAttendance    int64  `json:"maxAttendance"`
	Owner            string `json:"owner,omitempty"`
	CreatedAtUnixUTC int64  `json:"createdAtUnixUTC"`
}

func toNotificationRespBody(notificationModels []model.Notification) []OneNotificationRespBody {
	respBody := make([]OneNotificationRespBody, 0, len(notificationModels))
	for _, n := range notificationModels {
		respBody = append(respBody, OneNotificationRespBody{
			Seq:              n.Seq,
			ID:               n.ID,
			Kind:             n.Kind,
			EventID:          n.EventID,
			Name:             n.Name,
			MaxAttendance:    n.MaxAttendance,
			Owner:            n.Owner,
			CreatedAtUnixUTC: n.CreatedAt,
		})
	}
	return respBody
}

// Notifications exposes the journal of EventCreated / EventUpdated entries.
func Notifications(muxer *http.ServeMux, as *utils.AppState) {
	// page through all notifications: ?after=<seq>&limit=<n>
	muxer.HandleFunc("GET /notifications", func(w http.ResponseWriter, r *http.Request) {
		after := int64(0)
		if v := r.URL.Query().Get("after"); v != "" {
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil || parsed < 0 {
				writeError(w, http.StatusBadRequest, "after must be a non-negative integer")
				return
			}
			after = parsed
		}
		limit := defaultNotificationLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed <= 0 || parsed > maxNotificationLimit {
				writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
				return
			}
			limit = parsed
		}

		startTimer := time.Now()
		notificationModels, err := as.Journal.List(r.Context(), after, limit)
		as.MetricChans.ObserveDatabaseRead(time.Since(startTimer))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toNotificationRespBody(notificationModels))
	})

	muxer.HandleFunc("GET /events/{id}/notifications", func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseEventID(w, r)
		if !ok {
			return
		}

		startTimer := time.Now()
		notificationModels, err := as.Journal.ListByEvent(r.Context(), id)
		as.MetricChans.ObserveDatabaseRead(time.Since(startTimer))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toNotificationRespBody(notificationModels))
	})
}
