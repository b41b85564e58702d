package routes

import (
	"net/http"
	"time"

	"finehero/handlers"
	"finehero/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes registers account and session endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.POST("/signup", hb.User.SignUpHandler)
		api.POST("/signin", hb.User.SignInHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.GET("/me", hb.User.GetProfileHandler)
		api.PUT("/me", hb.User.UpdateUserHandler)
		api.PUT("/me/password", hb.User.UpdatePasswordHandler)
		api.POST("/signout", hb.User.SignOutHandler)
		api.DELETE("/me", hb.User.DeleteUserHandler)
	}
}

// RegisterFineRoutes registers fine upload and lifecycle endpoints.
func RegisterFineRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/fines")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.POST("", hb.Fine.UploadFineHandler)
		api.GET("", hb.Fine.ListFinesHandler)
		api.GET("/:id", hb.Fine.GetFineHandler)
		api.PATCH("/:id/correct", hb.Fine.CorrectFineHandler)
		api.GET("/:id/file", hb.Fine.FineFileURLHandler)
		api.DELETE("/:id", hb.Fine.DeleteFineHandler)
	}
}

// RegisterDefenseRoutes registers defense-letter endpoints.
func RegisterDefenseRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/defenses")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.POST("", hb.Defense.RequestDefenseHandler)
		api.GET("", hb.Defense.ListDefensesHandler)
		api.GET("/:id", hb.Defense.GetDefenseHandler)
		api.GET("/:id/html", hb.Defense.DefenseHTMLHandler)
	}
}

// RegisterBillingRoutes registers payment endpoints. The Stripe webhook stays
// outside authentication; the signature header is its credential.
func RegisterBillingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/billing")
	{
		api.POST("/webhook", hb.Billing.StripeWebhookHandler)
		api.GET("/packs", hb.Billing.ListPacksHandler)

		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.POST("/intent", hb.Billing.CreatePaymentIntentHandler)
		api.GET("/ledger", hb.Billing.LedgerHandler)
	}
}

// RegisterLegalRoutes registers knowledge-base management endpoints.
func RegisterLegalRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/legal")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.Use(middleware.JWTAuthAdminMiddleware())
		api.POST("/articles", hb.Legal.IngestArticlesHandler)
		api.GET("/articles", hb.Legal.ListArticlesHandler)
		api.DELETE("/articles/:id", hb.Legal.DeleteArticleHandler)
		api.POST("/reindex", hb.Legal.ReindexHandler)
		api.GET("/retrieve", hb.Legal.RetrieveHandler)
	}
}

// RegisterAdminRoutes registers back-office endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.Use(middleware.JWTAuthAdminMiddleware())
		api.GET("/users", hb.Admin.ListUsersHandler)
		api.GET("/fines", hb.Admin.ListFinesByStatusHandler)
		api.GET("/stats", hb.Admin.StatsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm FineHero"})
	})
}

// RegisterRoutes sets up CORS and all route groups.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterUserRoutes(r, hb)
	RegisterFineRoutes(r, hb)
	RegisterDefenseRoutes(r, hb)
	RegisterBillingRoutes(r, hb)
	RegisterLegalRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
