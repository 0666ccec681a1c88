package apperr

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Postgres error codes the boundary translates into expected failures.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

type errorResponse struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	StatusCode int          `json:"statusCode"`
	Details    []FieldError `json:"details,omitempty"`
}

// HTTPErrorHandler returns an echo error handler that maps typed domain
// failures, constraint violations, and echo HTTP errors onto the API error
// envelope. Unexpected errors are logged and reported as a generic 500; the
// internal message is only echoed back in development mode.
func HTTPErrorHandler(logger zerolog.Logger, dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		resp := errorResponse{
			Message:    "Internal Server Error",
			StatusCode: http.StatusInternalServerError,
		}

		var appErr *Error
		var pgErr *pgconn.PgError
		var httpErr *echo.HTTPError

		switch {
		case errors.As(err, &appErr):
			resp.StatusCode = appErr.StatusCode()
			resp.Message = appErr.Message
			resp.Details = appErr.Details

		case errors.As(err, &pgErr):
			switch pgErr.Code {
			case pgUniqueViolation:
				resp.StatusCode = http.StatusConflict
				resp.Message = "Resource already exists"
			case pgForeignKeyViolation:
				resp.StatusCode = http.StatusBadRequest
				resp.Message = "Invalid reference - related resource not found"
			case pgCheckViolation:
				resp.StatusCode = http.StatusBadRequest
				resp.Message = "Database operation failed"
			default:
				logger.Error().Err(err).Str("pg_code", pgErr.Code).Msg("database error")
			}

		case errors.As(err, &httpErr):
			resp.StatusCode = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				resp.Message = msg
			}

		default:
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).Str("request_id", rid).Msg("unhandled error")
			if dev {
				resp.Message = err.Error()
			}
		}

		if jsonErr := c.JSON(resp.StatusCode, resp); jsonErr != nil {
			logger.Error().Err(jsonErr).Msg("failed to write error response")
		}
	}
}
