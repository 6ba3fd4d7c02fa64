package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/haatbazar-api/internal/middleware"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Auth    *AuthHandler
	Shop    *ShopHandler
	Cart    *CartHandler
	Order   *OrderHandler
	Review  *ReviewHandler
	Feed    *FeedHandler
	Assist  *AssistHandler
	Health  *HealthHandler
	Metrics http.Handler
}

func NewRouter(log *slog.Logger, jwtSecret string, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))
	router.GET("/healthz", h.Health.Healthz)
	router.GET("/readyz", h.Health.Readyz)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	auth := middleware.AuthMiddleware(jwtSecret)
	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", h.Auth.Register)
		v1.POST("/auth/login", h.Auth.Login)

		public := v1.Group("", middleware.OptionalAuth(jwtSecret))
		public.GET("/shops", h.Shop.ListNearby)
		public.GET("/shops/:id", h.Shop.GetShop)
		public.GET("/shops/:id/reviews", h.Review.List)
		public.GET("/products/:id", h.Shop.GetProduct)
		public.GET("/feed", h.Feed.Nearby)

		user := v1.Group("", auth)
		user.GET("/me", h.Auth.Me)
		user.PATCH("/me", h.Auth.UpdateMe)
		user.POST("/shops/:id/reviews", h.Review.Add)
		user.GET("/orders/:id", h.Order.GetOrder)
		user.GET("/assist/voice", h.Assist.VoiceGuidance)

		customer := v1.Group("", auth, middleware.RequireCustomer())
		customer.GET("/cart", h.Cart.GetCart)
		customer.DELETE("/cart", h.Cart.Clear)
		customer.POST("/cart/items", h.Cart.AddItem)
		customer.PATCH("/cart/items/:productId", h.Cart.UpdateItem)
		customer.DELETE("/cart/items/:productId", h.Cart.DeleteItem)
		customer.POST("/orders", h.Order.Checkout)
		customer.GET("/orders", h.Order.ListOrders)
		customer.POST("/orders/:id/cancel", h.Order.Cancel)
		customer.POST("/orders/:id/reorder", h.Cart.Reorder)

		owner := v1.Group("/owner", auth, middleware.RequireOwner())
		owner.POST("/shop", h.Shop.RegisterShop)
		owner.GET("/shop", h.Shop.MyShop)
		owner.PATCH("/shop", h.Shop.UpdateMyShop)
		owner.POST("/products", h.Shop.AddProduct)
		owner.PATCH("/products/:id", h.Shop.UpdateProduct)
		owner.POST("/products/draft", h.Assist.DraftProduct)
		owner.GET("/orders", h.Order.ListShopOrders)
		owner.PATCH("/orders/:id/status", h.Order.UpdateStatus)
		owner.GET("/notifications", h.Order.Notifications)
		owner.POST("/posts", h.Feed.Publish)
	}
	return router
}
