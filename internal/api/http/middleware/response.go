// Package middleware contains the HTTP middleware chain and shared response writers.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/dtroode/currencyguard-server/internal/apierror"
)

// ErrorResponseBody is the JSON body of every failed request.
type ErrorResponseBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// WriteErrorResponse writes apiErr using its own status.
func WriteErrorResponse(w http.ResponseWriter, apiErr *apierror.APIError) {
	WriteJSON(w, apiErr.HTTPStatus, ErrorResponseBody{
		Error: apiErr.Message,
		Code:  apiErr.Code,
	})
}

// WriteInternalServerError writes the generic 500 body. Details belong in logs only.
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, apierror.NewErrInternal())
}
