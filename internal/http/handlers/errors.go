package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hongminglow/usermanager-be/internal/directory"
	"github.com/hongminglow/usermanager-be/internal/http/respond"
	"github.com/hongminglow/usermanager-be/internal/middleware"
)

const maxBodyBytes = 1 << 20

var errInvalidJSON = errors.New("invalid JSON payload")

// statusFor maps a directory error kind to its HTTP status.
func statusFor(kind directory.Kind) int {
	switch kind {
	case directory.KindValidation:
		return http.StatusBadRequest
	case directory.KindNotFound:
		return http.StatusNotFound
	case directory.KindConflict:
		return http.StatusConflict
	case directory.KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := statusFor(directory.KindOf(err))
	if status == http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", middleware.RequestIDFrom(r.Context()),
			"user_id", middleware.CallerID(r.Context()),
		)
		respond.Error(w, status, "internal server error")
		return
	}
	respond.Error(w, status, directory.Message(err))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidJSON
	}
	return nil
}

// pathID parses the {id} wildcard. Unparseable values map to 0, which the
// directory rejects as an invalid id.
func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
