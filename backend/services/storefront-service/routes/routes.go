package routes

import (
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/controllers"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/middleware"
	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Accounts  *controllers.AccountController
	Catalog   *controllers.CatalogController
	Cart      *controllers.CartController
	Checkout  *controllers.CheckoutController
	Orders    *controllers.OrderController
	Reviews   *controllers.ReviewController
	Analytics *controllers.AnalyticsController
}

func RegisterRoutes(r *gin.Engine, authn *middleware.Authenticator, c Controllers) {
	authRoutes := r.Group("/auth")
	authRoutes.POST("/register", c.Accounts.Register)
	authRoutes.POST("/login", c.Accounts.Login)

	// public storefront
	r.GET("/products", c.Catalog.GetProducts)
	r.GET("/products/:id", c.Catalog.GetProduct)
	r.GET("/reviews/published", c.Reviews.ListPublished)
	r.POST("/reviews", authn.Optional(), c.Reviews.CreateReview)

	guest := r.Group("/guest-cart")
	guest.GET("", c.Cart.GetGuestCart)
	guest.POST("/items", c.Cart.AddGuestItem)
	guest.DELETE("", c.Cart.ClearGuestCart)

	user := r.Group("/", authn.Required())
	user.GET("/users/me", c.Accounts.Me)
	user.GET("/cards", c.Accounts.ListCards)

	user.GET("/cart", c.Cart.GetCart)
	user.POST("/cart/items", c.Cart.AddItem)
	user.PUT("/cart/quantity", c.Cart.ChangeQuantity)
	user.DELETE("/cart/items/:product_id", c.Cart.RemoveItem)
	user.POST("/cart/merge", c.Cart.Merge)

	user.POST("/checkout", c.Checkout.Checkout)
	user.POST("/checkout/quote", c.Checkout.Quote)

	user.GET("/orders", c.Orders.GetOrders)
	user.GET("/orders/next-number", c.Orders.NextOrderNumber)
	user.GET("/orders/:id", c.Orders.GetOrderByID)
	user.DELETE("/order/:id", c.Orders.DeleteOrder)

	admin := r.Group("/", authn.Required(), middleware.AdminOnly())
	admin.PUT("/order/:id/complete", c.Orders.CompleteOrder)
	admin.GET("/admin/orders/pending", c.Orders.GetPendingOrders)

	admin.GET("/admin/products", c.Catalog.GetAllProducts)
	admin.POST("/admin/products", c.Catalog.CreateProduct)
	admin.PUT("/admin/products/:id", c.Catalog.UpdateProduct)

	admin.GET("/admin/reviews", c.Reviews.ListAll)
	admin.PUT("/admin/reviews/:id/publish", c.Reviews.Publish)
	admin.PUT("/admin/reviews/:id", c.Reviews.EditComment)
	admin.DELETE("/admin/reviews/:id", c.Reviews.Delete)

	admin.GET("/admin/analytics/:period", c.Analytics.Summary)
}
