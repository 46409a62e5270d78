package route

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"evtd/src-server/utils"
)

type EventReqBody struct {
	Name          string `json:"name"`
	MaxAttendance *int64 `json:"maxAttendance"`
}

type OneEventRespBody struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	MaxAttendance int64  `json:"maxAttendance"`
	Owner         string `json:"owner,omitempty"`
}

const maxEventReqBodyBytes = 1 << 20

func parseEventReqBody(w http.ResponseWriter, r *http.Request) (*EventReqBody, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEventReqBodyBytes)
	var reqBody EventReqBody
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if reqBody.MaxAttendance == nil {
		writeError(w, http.StatusBadRequest, "Please provide maxAttendance")
		return nil, false
	}
	return &reqBody, true
}

func parseEventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Event id must be an integer")
		return 0, false
	}
	return id, true
}

func Events(muxer *http.ServeMux, as *utils.AppState) {
	// create an event, responds with the stored event including its id
	muxer.HandleFunc("POST /events", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			reqBody, ok := parseEventReqBody(w, r)
			if !ok {
				return
			}

			startTimer := time.Now()
			event, err := as.Store.CreateEvent(r.Context(), reqBody.Name, *reqBody.MaxAttendance)
			as.MetricChans.ObserveDatabaseWrite(time.Since(startTimer))
			if err != nil {
				writeStoreError(w, err)
				return
			}

			writeJSON(w, http.StatusCreated, OneEventRespBody(event))
		}))

	muxer.HandleFunc("GET /events/{id}", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseEventID(w, r)
			if !ok {
				return
			}

			startTimer := time.Now()
			event, err := as.Store.GetEvent(r.Context(), id)
			as.MetricChans.ObserveDatabaseRead(time.Since(startTimer))
			if err != nil {
				writeStoreError(w, err)
				return
			}

			writeJSON(w, http.StatusOK, OneEventRespBody(event))
		}))

	// overwrite name and maxAttendance, the id never changes
	muxer.HandleFunc("PUT /events/{id}", AuthMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseEventID(w, r)
			if !ok {
				return
			}
			reqBody, ok := parseEventReqBody(w, r)
			if !ok {
				return
			}

			startTimer := time.Now()
			event, err := as.Store.UpdateEvent(r.Context(), id, reqBody.Name, *reqBody.MaxAttendance)
			as.MetricChans.ObserveDatabaseWrite(time.Since(startTimer))
			if err != nil {
				writeStoreError(w, err)
				return
			}

			writeJSON(w, http.StatusOK, OneEventRespBody(event))
		}))
}
