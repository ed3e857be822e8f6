package handlers

import (
	"net/http"

	"github.com/utilaudit/utilaudit/internal/pkg/errors"
	"github.com/utilaudit/utilaudit/internal/pkg/utils"
)

// writeServiceError maps a service error to an HTTP response, preserving
// AppError status codes and falling back to 500 for everything else.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if appErr, ok := err.(*errors.AppError); ok {
		utils.WriteError(w, appErr)
		return
	}
	utils.WriteError(w, errors.Internal(fallback, err))
}
