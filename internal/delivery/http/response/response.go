// Package response contains the JSON helpers shared by all HTTP handlers.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MessageBody is the wire shape for message-only responses. Error responses
// use the same shape, written by the error handler.
type MessageBody struct {
	Message string `json:"message"`
}

// Data writes a success response whose body is the payload itself, without an
// envelope.
func Data(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, data)
}

// Message writes a success response carrying only a human-readable message.
func Message(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, MessageBody{Message: message})
}

// Error writes an error response. Handlers normally return errors and let the
// central error handler call this; it is exported for the few places that
// reply directly.
func Error(c echo.Context, statusCode int, message string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, MessageBody{Message: message})
}
