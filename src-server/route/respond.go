package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"evtd/src-server/store"
)

type ErrorRespBody struct {
	Description string `json:"description"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	respBodyJson, err := json.Marshal(body)
	if err != nil {
		slog.Error("can't marshal response body", "error", err)
		writeError(w, http.StatusInternalServerError, "Can't marshal response body")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(respBodyJson)
}

func writeError(w http.ResponseWriter, status int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	respBodyJson, _ := json.Marshal(ErrorRespBody{Description: description})
	w.Write(respBodyJson)
}

// maps store errors onto status codes
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		slog.Error("event store failure", "error", err)
		writeError(w, http.StatusInternalServerError, "Can't complete the request")
	}
}
