package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flicky/haatbazar-api/internal/dto"
	"github.com/flicky/haatbazar-api/internal/middleware"
	"github.com/flicky/haatbazar-api/internal/model"
	"github.com/flicky/haatbazar-api/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
	notifier     *service.NotificationService
	pollAfter    time.Duration
	refreshAfter time.Duration
}

// NewOrderHandler takes the hints returned to owner dashboards: pollAfter for
// notifications, refreshAfter for the order list.
func NewOrderHandler(orderService *service.OrderService, notifier *service.NotificationService, pollAfter, refreshAfter time.Duration) *OrderHandler {
	return &OrderHandler{orderService: orderService, notifier: notifier, pollAfter: pollAfter, refreshAfter: refreshAfter}
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.orderService.Checkout(c.Request.Context(), middleware.GetUserID(c), service.CheckoutInput{
		CustomerName:    req.CustomerName,
		CustomerMobile:  req.CustomerMobile,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryMode:    req.DeliveryMode,
		PaymentMethod:   req.PaymentMethod,
		AdvanceAmount:   req.AdvanceAmount,
		VisitDate:       req.VisitDate,
		VisitTime:       req.VisitTime,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(view))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	views, err := h.orderService.ListForCustomer(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	orders := toOrderResponses(views)
	c.JSON(http.StatusOK, dto.OrderListResponse{Orders: orders, Total: len(orders)})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := h.orderService.Get(c.Request.Context(), middleware.GetUserID(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(view))
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := h.orderService.Cancel(c.Request.Context(), middleware.GetUserID(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(view))
}

func (h *OrderHandler) ListShopOrders(c *gin.Context) {
	var req dto.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	views, err := h.orderService.ListForShop(c.Request.Context(), middleware.GetUserID(c), req.Tab)
	if err != nil {
		writeError(c, err)
		return
	}
	orders := toOrderResponses(views)
	c.JSON(http.StatusOK, dto.OrderListResponse{
		Orders: orders, Total: len(orders), PollAfterSeconds: int(h.refreshAfter / time.Second),
	})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.orderService.UpdateStatus(c.Request.Context(), middleware.GetUserID(c), orderID, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(view))
}

func (h *OrderHandler) Notifications(c *gin.Context) {
	list, err := h.notifier.ForOwner(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	c.JSON(http.StatusOK, dto.NotificationListResponse{
		Notifications: list, PollAfterSeconds: int(h.pollAfter / time.Second),
	})
}
