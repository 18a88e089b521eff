package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/table"
	"github.com/labstack/echo/v4"
)

func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": ve.Error(), "title": "validation error"})
			return
		}

		var nf *NotFoundError
		if errors.As(err, &nf) {
			_ = c.JSON(http.StatusNotFound, map[string]string{"error": nf.Error()})
			return
		}

		var ce *table.CandidateInvocationError
		if errors.As(err, &ce) {
			_ = c.JSON(http.StatusUnprocessableEntity, map[string]any{
				"error":     ce.Error(),
				"title":     "candidate failed",
				"stage":     ce.Stage,
				"candidate": ce.Candidate,
				"row":       ce.Row,
			})
			return
		}

		if table.IsInputError(err) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error(), "title": "invalid pipeline"})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprintf("%v", he.Message)
			_ = c.JSON(he.Code, map[string]string{"error": msg})
			return
		}

		slog.Error("Unhandled error", "error", err)
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
