package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/haatbazar-api/internal/fulfillment"
	"github.com/flicky/haatbazar-api/internal/service"
)

var (
	badRequest = []error{
		service.ErrEmptyCart, service.ErrNoFulfillmentMode, service.ErrAddressRequired,
		service.ErrContactRequired, service.ErrCashUnavailable, service.ErrInvalidPayment,
		service.ErrInvalidTab, service.ErrInvalidQuantity, service.ErrLocationRequired,
		service.ErrInvalidHours, service.ErrInvalidPrice, service.ErrInvalidBusinessType,
		service.ErrInvalidRole, service.ErrInvalidRating, service.ErrInvalidPostType,
		service.ErrEmptyPost, service.ErrReviewOrderMismatch,
	}
	notFound = []error{
		service.ErrShopNotFound, service.ErrProductNotFound, service.ErrOrderNotFound,
		service.ErrUserNotFound, service.ErrCartItemNotFound,
	}
	forbidden = []error{
		service.ErrNotShopOwner, service.ErrNotAnOwner, service.ErrOrderAccessDenied,
	}
	conflict = []error{
		fulfillment.ErrInvalidTransition, service.ErrConcurrentUpdate, service.ErrCartShopMismatch,
		service.ErrUserAlreadyExists, service.ErrShopAlreadyExists, service.ErrCartChanged,
	}
)

func statusFor(err error) int {
	for _, group := range []struct {
		errs   []error
		status int
	}{
		{badRequest, http.StatusBadRequest},
		{notFound, http.StatusNotFound},
		{forbidden, http.StatusForbidden},
		{conflict, http.StatusConflict},
	} {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

// writeError maps service errors onto HTTP statuses. Unknown errors are
// attached to the context for the request logger and hidden from the client.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
