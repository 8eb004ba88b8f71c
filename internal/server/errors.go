package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	wferrors "github.com/matzehuels/waterfall/pkg/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      wferrors.Code `json:"code"`
	Message   string        `json:"message"`
	RequestID string        `json:"request_id,omitempty"`
}

// writeError maps err to a status code and a JSON body. Internal errors are
// logged and their details withheld.
func writeError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	code := wferrors.GetCode(err)
	status := wferrors.HTTPStatus(code)
	message := wferrors.UserMessage(err)

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		code, status = wferrors.ErrCodeInvalidInput, http.StatusRequestEntityTooLarge
		message = "request body too large"
	case code == "":
		code = wferrors.ErrCodeInternal
	}
	if status >= 500 {
		logger.Error("request failed", "request_id", middleware.GetReqID(r.Context()), "err", err)
		if status == http.StatusInternalServerError {
			message = "internal error"
		}
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
