package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Envelope wraps every API response, successful or not.
type Envelope struct {
	Data       any        `json:"data"`
	Error      *ErrorBody `json:"error"`
	Status     int        `json:"status"`
	Successful bool       `json:"successful"`
	Timestamp  time.Time  `json:"timestamp"`
}

// ErrorBody is the error part of an Envelope. Detail is empty for unexpected
// failures.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// respond writes data in a successful Envelope.
func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{
		Data:       data,
		Status:     status,
		Successful: true,
		Timestamp:  time.Now().UTC(),
	})
}

// RespondError writes body in a failed Envelope.
func RespondError(c echo.Context, status int, body ErrorBody) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, Envelope{
		Error:     &body,
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
}
