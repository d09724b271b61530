package handler

import (
	"errors"
	"net/http"

	"github.com/dtroode/currencyguard-server/internal/api/http/middleware"
	"github.com/dtroode/currencyguard-server/internal/apierror"
	"github.com/dtroode/currencyguard-server/internal/model"
)

// handleError writes err as a JSON error body. Only *apierror.APIError
// messages reach the caller, anything unrecognised becomes a generic 500.
func handleError(w http.ResponseWriter, err error) {
	if apiErr, ok := apierror.As(err); ok {
		middleware.WriteErrorResponse(w, apiErr)
		return
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		middleware.WriteErrorResponse(w, &apierror.APIError{
			Code:       apierror.CodeNotFound,
			Message:    "not found",
			HTTPStatus: http.StatusNotFound,
		})
	default:
		middleware.WriteInternalServerError(w)
	}
}
