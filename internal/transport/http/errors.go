package http

import (
	"errors"
	"net/http"

	"github.com/IgorGrieder/linkhub/internal/apperr"
	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/internal/page"
	"github.com/IgorGrieder/linkhub/pkg/httputils"
	"go.uber.org/zap"
)

// apiError maps a service error onto the gateway's response codes. The
// message is always the user-facing text from apperr.UserMessage.
func apiError(err error) constants.APIError {
	msg := apperr.UserMessage(err)

	var tErr *apperr.TransportError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return constants.ErrInvalidRequestBody.WithMessage(msg)
	case errors.Is(err, page.ErrNotFound):
		return constants.ErrProfileNotFound
	case errors.As(err, &tErr):
		if tErr.Kind == apperr.KindTimeout {
			return constants.ErrUpstreamTimeout
		}
		return constants.ErrUpstreamUnavailable.WithMessage(msg)
	case apperr.IsPermissionDenied(err):
		return constants.ErrPermissionDenied
	case errors.Is(err, apperr.ErrRemote):
		return constants.ErrUpstreamRejected.WithMessage(msg)
	default:
		return constants.ErrInternalError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	apiErr := apiError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("op", op), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("op", op), zap.Error(err))
	}
	httputils.WriteAPIError(w, r, apiErr)
}

func writeBadBody(w http.ResponseWriter, r *http.Request, err error) {
	logger.Debug("invalid request body", zap.Error(err), zap.String("path", r.URL.Path))
	httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
}
