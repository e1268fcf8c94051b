package controllers

import (
	"github.com/franciscosanchezn/stellar-burgers-api/internal/middleware"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/session"
	"github.com/gin-gonic/gin"
)

// Handlers bundles what RegisterRoutes mounts
type Handlers struct {
	Catalog     CatalogController
	Constructor ConstructorController
	Orders      OrderController
	Feed        FeedController
	Parser      *session.TokenParser
	// SecureCookies marks the builder session cookie Secure
	SecureCookies bool
}

// RegisterRoutes defines the /api/v1 routes
func RegisterRoutes(router *gin.Engine, h Handlers) {
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authenticate(h.Parser), middleware.BuilderSession(h.SecureCookies))
	{
		publicApi := v1.Group("/public")
		{
			publicApi.GET("/ingredients", h.Catalog.GetIngredients)
			publicApi.GET("/ingredients/:id", h.Catalog.GetIngredientByID)

			publicApi.GET("/constructor", h.Constructor.GetConstructor)
			publicApi.DELETE("/constructor", h.Constructor.ClearConstructor)
			publicApi.POST("/constructor/items", h.Constructor.AddItem)
			publicApi.DELETE("/constructor/items/:placementId", h.Constructor.RemoveItem)
			publicApi.POST("/constructor/items/:placementId/up", h.Constructor.MoveItemUp)
			publicApi.POST("/constructor/items/:placementId/down", h.Constructor.MoveItemDown)
			publicApi.POST("/constructor/move", h.Constructor.MoveItem)

			publicApi.GET("/feed", h.Feed.GetFeed)
			publicApi.GET("/feed/board", h.Feed.GetBoard)
			publicApi.GET("/feed/stream", h.Feed.StreamFeed)
			publicApi.POST("/feed/connect", h.Feed.ConnectFeed)
			publicApi.POST("/feed/disconnect", h.Feed.DisconnectFeed)

			publicApi.GET("/orders/:number", h.Orders.GetOrderByNumber)
		}

		// Protected routes (requires a bearer token)
		protectedApi := v1.Group("/protected")
		protectedApi.Use(middleware.RequireAuth())
		{
			protectedApi.POST("/orders", h.Orders.PlaceOrder)
			protectedApi.GET("/orders", h.Orders.ListOwnOrders)
			protectedApi.GET("/orders/current", h.Orders.GetCurrentOrder)
			protectedApi.DELETE("/orders/current", h.Orders.ClearCurrentOrder)

			protectedApi.GET("/feed", h.Feed.GetProfileFeed)
			protectedApi.GET("/feed/stream", h.Feed.StreamProfileFeed)
			protectedApi.POST("/feed/connect", h.Feed.ConnectProfileFeed)
			protectedApi.POST("/feed/disconnect", h.Feed.DisconnectProfileFeed)

			adminApi := protectedApi.Group("/admin")
			adminApi.Use(middleware.RequireRole("admin"))
			{
				adminApi.POST("/catalog/reload", h.Catalog.ReloadCatalog)
				adminApi.PATCH("/orders/:number/status", h.Orders.AdvanceOrderStatus)
			}
		}
	}
}
