package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskapi/internal/access"
	"taskapi/internal/services"
	"taskapi/internal/storage"
)

var errInvalidRequestBody = errors.New("invalid request body")

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newForbiddenError(message string) apiError {
	return newAPIError(http.StatusForbidden, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// abortServiceError maps core error kinds onto transport status codes.
// The core layers never see HTTP statuses; this table is the only
// place the mapping exists.
func (h *handlerImpl) abortServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError

	switch {
	case errors.Is(err, storage.ErrNotFound):
		abort(c, newNotFoundError("task not found"))
	case errors.Is(err, access.ErrForbidden):
		abort(c, newForbiddenError(access.ErrForbidden.Error()))
	case errors.Is(err, storage.ErrDuplicateTitle),
		errors.Is(err, storage.ErrUsernameTaken),
		errors.Is(err, storage.ErrEmailTaken):
		abort(c, newConflictError(err.Error()))
	case errors.Is(err, access.ErrOwnerNotFound),
		errors.Is(err, services.ErrInvalidDate):
		abort(c, newBadRequestError(err.Error()))
	case errors.As(err, &validationErr):
		abort(c, newBadRequestError(validationErr.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		abort(c, newUnauthorizedError(err.Error()))
	case errors.Is(err, services.ErrInvalidToken):
		abort(c, newUnauthorizedError(err.Error()))
	default:
		h.logger.Error().
			Err(err).
			Str("path", c.FullPath()).
			Msg("request failed")
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}
