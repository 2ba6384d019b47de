package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
)

// envelope — успешный ответ API.
type envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// errorEnvelope — ответ API с ошибкой.
type errorEnvelope struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload any, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondOK заворачивает data в конверт.
func respondOK(w http.ResponseWriter, data any, message string, logger *slog.Logger) {
	respondWithJSON(w, http.StatusOK, envelope{Status: http.StatusOK, Data: data, Message: message}, logger)
}

// respondWithError переводит ошибку ядра в HTTP-ответ. Для повторяемых
// ошибок выставляется Retry-After.
func respondWithError(w http.ResponseWriter, err error, logger *slog.Logger) {
	code := apperrors.HTTPStatus(err)
	if apperrors.IsRetryable(err) {
		w.Header().Set("Retry-After", "1")
	}
	if code >= http.StatusInternalServerError {
		logger.Error("request failed", "kind", apperrors.KindOf(err), "error", err)
	}
	respondWithJSON(w, code, errorEnvelope{
		Status:  code,
		Message: apperrors.PublicMessage(err),
		Errors:  apperrors.DetailsOf(err),
	}, logger)
}

// queryInt читает необязательный целочисленный параметр; мусор считается отсутствием.
func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}
