package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/controllers"
	"github.com/yeremiapane/qr-restaurant/kds"
	"github.com/yeremiapane/qr-restaurant/middlewares"
	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/services"
)

// Deps is everything the HTTP layer needs. Limiter and LoginLimiter are
// optional.
type Deps struct {
	Auth      *services.AuthService
	Tenants   *services.TenantService
	Catalog   *services.CatalogService
	Tables    *services.TableService
	Orders    *services.OrderService
	Reviews   *services.ReviewService
	Waiters   *services.WaiterService
	Analytics *services.AnalyticsService
	Hub       *kds.Hub

	CORSOrigins  []string
	Limiter      *middlewares.RateLimiter
	LoginLimiter *middlewares.RateLimiter
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())
	if d.Limiter != nil {
		r.Use(d.Limiter.RateLimit())
	}
	loginLimiter := d.LoginLimiter
	if loginLimiter == nil {
		loginLimiter = middlewares.NewStrictRateLimiter()
	}

	userCtrl := controllers.NewUserController(d.Auth)
	categoryCtrl := controllers.NewMenuCategoryController(d.Catalog)
	menuCtrl := controllers.NewMenuController(d.Catalog, d.Tables)
	tableCtrl := controllers.NewTableController(d.Tables)
	orderCtrl := controllers.NewOrderController(d.Orders)
	paymentCtrl := controllers.NewPaymentController(d.Orders)
	reviewCtrl := controllers.NewReviewController(d.Reviews)
	waiterCtrl := controllers.NewWaiterCallController(d.Waiters)
	adminCtrl := controllers.NewAdminController(d.Tenants, d.Analytics)
	kdsCtrl := controllers.NewKDSController(d.Hub)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES (QR menu)
	// ----------------------------------------------------------------
	api.GET("/menu/:tableId", menuCtrl.GetPublicMenu)
	api.GET("/public/menu/:tableId", menuCtrl.GetPublicMenu)
	api.POST("/orders", orderCtrl.CreateOrder)
	api.GET("/orders/:id", orderCtrl.GetPublicOrder)
	api.POST("/waiter-call", waiterCtrl.CallWaiter)
	api.POST("/reviews", reviewCtrl.CreateReview)

	authMW := middlewares.AuthMiddleware(d.Auth)

	// ----------------------------------------------------------------
	//                      AUTH
	// ----------------------------------------------------------------
	auth := api.Group("/auth")
	auth.POST("/login", loginLimiter.RateLimit(), userCtrl.Login)
	auth.POST("/logout", authMW, userCtrl.Logout)
	auth.GET("/me", authMW, userCtrl.GetProfile)
	auth.POST("/register", authMW, middlewares.RequireRoles(models.RoleAdmin), userCtrl.Register)

	// ----------------------------------------------------------------
	//                      KITCHEN
	// ----------------------------------------------------------------
	kitchen := api.Group("/kitchen", authMW, middlewares.RequireRoles(models.RoleKitchen))
	{
		kitchen.GET("/orders", orderCtrl.GetAllOrders)
		kitchen.PUT("/orders/:id/status", orderCtrl.UpdateOrderStatus)
	}

	// ----------------------------------------------------------------
	//                      CASHIER
	// ----------------------------------------------------------------
	cashier := api.Group("/cashier", authMW, middlewares.RequireRoles(models.RoleCashier))
	{
		cashier.GET("/orders", orderCtrl.GetAllOrders)
		cashier.PUT("/orders/:id/payment", paymentCtrl.VerifyPayment)
		cashier.PUT("/orders/:id/status", orderCtrl.UpdateOrderStatus)
		cashier.GET("/waiter-calls", waiterCtrl.GetWaiterCalls)
		cashier.PUT("/waiter-calls/:id/resolve", waiterCtrl.ResolveWaiterCall)
	}

	// ----------------------------------------------------------------
	//                      OWNER
	// ----------------------------------------------------------------
	owner := api.Group("/owner", authMW, middlewares.RequireRoles(models.RoleOwner))
	{
		owner.GET("/menu/categories", categoryCtrl.GetAllCategories)
		owner.POST("/menu/categories", categoryCtrl.CreateCategory)
		owner.PUT("/menu/categories/:id", categoryCtrl.UpdateCategory)
		owner.DELETE("/menu/categories/:id", categoryCtrl.DeleteCategory)

		owner.GET("/menu/items", menuCtrl.GetAllMenus)
		owner.POST("/menu/items", menuCtrl.CreateMenu)
		owner.PUT("/menu/items/:id", menuCtrl.UpdateMenu)
		owner.DELETE("/menu/items/:id", menuCtrl.DeleteMenu)

		owner.GET("/tables", tableCtrl.GetAllTables)
		owner.POST("/tables", tableCtrl.CreateTable)
		owner.GET("/tables/:id", tableCtrl.GetTableByID)
		owner.PUT("/tables/:id", tableCtrl.UpdateTable)
		owner.DELETE("/tables/:id", tableCtrl.DeleteTable)

		owner.GET("/orders", orderCtrl.GetAllOrders)
		owner.GET("/orders/:id", orderCtrl.GetOrderByID)
		owner.PUT("/orders/:id/status", orderCtrl.UpdateOrderStatus)
		owner.PUT("/orders/:id/payment", paymentCtrl.VerifyPayment)

		owner.GET("/reviews", reviewCtrl.GetAllReviews)
		owner.GET("/stats", adminCtrl.GetOwnerStats)
		owner.GET("/waiter-calls", waiterCtrl.GetWaiterCalls)
		owner.PUT("/waiter-calls/:id/resolve", waiterCtrl.ResolveWaiterCall)
	}

	// ----------------------------------------------------------------
	//                      ADMIN
	// ----------------------------------------------------------------
	admin := api.Group("/admin", authMW, middlewares.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/restaurants", adminCtrl.GetAllRestaurants)
		admin.POST("/restaurants", adminCtrl.CreateRestaurant)
		admin.GET("/restaurants/:id", adminCtrl.GetRestaurantByID)
		admin.PUT("/restaurants/:id", adminCtrl.UpdateRestaurant)
		admin.DELETE("/restaurants/:id", adminCtrl.DeleteRestaurant)
		admin.GET("/restaurants/:id/staff", adminCtrl.GetRestaurantStaff)

		admin.GET("/stats", adminCtrl.GetDashboardStats)
		admin.GET("/analytics", adminCtrl.GetAnalytics)
		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.GET("/reviews", reviewCtrl.GetAllReviews)
		admin.GET("/users", adminCtrl.GetAllUsers)
		admin.GET("/tables", tableCtrl.GetAllTables)
	}

	// Live events; browsers pass the token as ?token=
	api.GET("/ws", middlewares.WebSocketAuthMiddleware(d.Auth), kdsCtrl.KDSHandler)

	return r
}
