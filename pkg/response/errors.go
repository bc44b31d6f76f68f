package response

import (
	"errors"
	"fmt"
	"net/http"

	"OCLAdmin/internal/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NewHTTPErrorHandler renders every error returned by a handler or middleware
// as an Envelope. Unexpected errors are logged and answered generically.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("writing error response", zap.Error(err))
		}
	}
}

func render(err error) (int, Envelope) {
	if appErr, ok := apperr.As(err); ok {
		body := Envelope{Error: appErr.Message, Code: appErr.Code, Details: appErr.Details}
		if appErr.Kind == apperr.KindUnexpected && body.Error == "" {
			body.Error = "Internal server error."
		}
		return appErr.Kind.Status(), body
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if he.Code < http.StatusInternalServerError {
			message = fmt.Sprint(he.Message)
		}
		return he.Code, Envelope{Error: message}
	}

	return http.StatusInternalServerError, Envelope{Error: "Internal server error.", Code: "internal_error"}
}
