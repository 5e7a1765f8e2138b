package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/logger"
)

type publicError interface {
	PublicMessage() string
}

var statusByKind = []struct {
	kind   error
	status int
}{
	{domain.ErrBadRequest, http.StatusBadRequest},
	{domain.ErrDuplicate, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrEmailNotVerified, http.StatusForbidden},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrDelivery, http.StatusInternalServerError},
}

// httpError maps a service error onto a status code and client message.
// Errors without a client-facing message are logged and reported generically.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	for _, m := range statusByKind {
		if errors.Is(err, m.kind) {
			status = m.status
			break
		}
	}

	var pe publicError
	if errors.As(err, &pe) {
		writeError(w, status, pe.PublicMessage())
		return
	}
	if status != http.StatusInternalServerError {
		writeError(w, status, http.StatusText(status))
		return
	}
	logger.WithModule("http").Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, status, "Server error")
}
