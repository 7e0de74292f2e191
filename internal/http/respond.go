package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

const defaultUserID = 1

// payload is a JSON response body. Handlers build it key by key and
// the write helpers add the success envelope.
type payload map[string]any

func writeJSON(w http.ResponseWriter, status int, body payload) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, body payload) {
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

// writeOutcome reports a non-error negative outcome (insufficient or
// missing data). The request itself succeeded, so the status is 200.
func writeOutcome(w http.ResponseWriter, message string, extra payload) {
	body := payload{"success": false, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, payload{"success": false, "message": message})
}

// writeError maps service errors onto the failure envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrGoalNotFound), errors.Is(err, core.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "Not found")
	case errors.Is(err, core.ErrGoalCompleted):
		writeFailure(w, http.StatusConflict, "Goal is already completed")
	case isValidationError(err):
		writeFailure(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"url", r.URL.Path, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidType,
		core.ErrInvalidDate,
		core.ErrEmptyName,
		core.ErrEmptyCategory,
		core.ErrPastTargetDate,
		core.ErrUnknownPriority,
		services.ErrEmptyQuestion,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// userID resolves the acting user from the X-User-ID header. Auth is
// out of scope; a missing or malformed header means the default user.
func userID(r *http.Request) int64 {
	v := r.Header.Get("X-User-ID")
	if v == "" {
		return defaultUserID
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return defaultUserID
	}
	return id
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeFailure(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// parseAmount converts a JSON amount (string or number) to Money.
func parseAmount(raw json.Number) (core.Money, error) {
	return core.ParseMoney(raw.String())
}

func parseDate(value string) (core.Date, error) {
	if value == "" {
		return core.Date{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	return core.DateOf(t), nil
}

// Currency rounds to 2 decimals, percentages to 1.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
