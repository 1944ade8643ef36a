package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const internalErrorMessage = "Internal server error"

// HTTPErrorHandler writes every error as a JSON body with a "message" key.
// Causes of 5xx responses are logged and never sent to the client.
func HTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			he = &echo.HTTPError{Code: http.StatusInternalServerError, Internal: err}
		}

		var body any
		if he.Code >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", he.Code,
				"error", err,
			)
			body = echo.Map{"message": internalErrorMessage}
		} else {
			switch m := he.Message.(type) {
			case echo.Map:
				body = m
			case string:
				body = echo.Map{"message": m}
			default:
				body = echo.Map{"message": http.StatusText(he.Code)}
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, body)
		}
		if err != nil {
			log.Error("failed to write error response", "error", err)
		}
	}
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+what+" ID")
	}
	return uint(id), nil
}

func validationError(field, rule string) error {
	return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
		"message": "Validation failed",
		"errors":  map[string]string{field: rule},
	})
}
