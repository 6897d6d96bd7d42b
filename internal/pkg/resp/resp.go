/*
Package resp provides helper functions for sending HTTP JSON responses.

Successful responses carry the payload as-is. Every failure goes through RespondError,
the single boundary translator from an application error to `{"error":{"message","status"}}`.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"mocrs/internal/pkg/errs"
	"mocrs/internal/pkg/logx"
)

// ErrorBody is the JSON body written for every failed request.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the client-safe message and the HTTP status.
type ErrorDetail struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// RespondJSON sets the Content-Type and sends the JSON payload with httpStatus.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Ctx(r.Context()).Error().Err(err).Int("http_status", httpStatus).Msg("Error encoding JSON response")

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	_, _ = w.Write(response)
}

// RespondSuccess sends data with HTTP 200 OK.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, data)
}

// RespondCreated sends data with HTTP 201 Created.
func RespondCreated(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusCreated, data)
}

// RespondNoContent sends an empty HTTP 204 response.
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// RespondError sends the failure body for customErr. A nil error is reported as ErrUnknown.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	res := ErrorBody{
		Error: ErrorDetail{
			Message: customErr.Message,
			Status:  customErr.Status,
		},
	}
	RespondJSON(w, r, customErr.Status, res)
}
