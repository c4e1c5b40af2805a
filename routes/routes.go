package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pocketpilot/pocketpilot-api/handlers"
	"github.com/pocketpilot/pocketpilot-api/services"
	"github.com/pocketpilot/pocketpilot-api/storage"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, stores *storage.Stores, email *services.EmailService) {
	authHandler := &handlers.AuthHandler{Stores: stores, Email: email}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
	rg.POST("/auth/refresh", authHandler.Refresh)
	rg.POST("/auth/forgot-password", authHandler.ForgotPassword)
	rg.POST("/auth/reset-password", authHandler.ResetPassword)
}

// SetupUserRoutes sets up protected user routes.
func SetupUserRoutes(rg *gin.RouterGroup, stores *storage.Stores, cache *services.DataCacheService, prescriptions *services.BudgetPrescriptionService) {
	userHandler := &handlers.UserHandler{Stores: stores, Cache: cache, Prescriptions: prescriptions}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/profile", userHandler.UpdateProfile)
	rg.GET("/user/status", userHandler.GetAuthStatus)
	rg.POST("/user/password", userHandler.ChangePassword)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
	rg.DELETE("/user/account", userHandler.DeleteAccount)
}

// SetupTransactionRoutes sets up protected transaction routes.
func SetupTransactionRoutes(rg *gin.RouterGroup, txns *services.TransactionService, live *handlers.LiveHandler) {
	h := &handlers.TransactionHandler{Transactions: txns, Live: live}

	rg.GET("/transactions", h.GetByMonth)
	rg.GET("/transactions/all", h.GetAll)
	rg.GET("/transactions/range", h.GetByDateRange)
	rg.GET("/transactions/categories", h.GetCategoryTotals)
	rg.GET("/transactions/totals", h.GetTotals)
	rg.POST("/transactions", h.Create)
	rg.PUT("/transactions/:id", h.Update)
	rg.DELETE("/transactions/:id", h.Delete)
}

// SetupPrescriptionRoutes sets up protected budget prescription routes.
func SetupPrescriptionRoutes(rg *gin.RouterGroup, prescriptions *services.BudgetPrescriptionService, tips *services.ComprehensiveBudgetingTipsService, live *handlers.LiveHandler) {
	h := &handlers.PrescriptionHandler{Prescriptions: prescriptions, Tips: tips, Live: live}

	rg.GET("/prescriptions", h.Get)
	rg.POST("/prescriptions/generate", h.Generate)
	rg.POST("/prescriptions/refresh", h.Refresh)
	rg.PUT("/prescriptions", h.Save)
}

// SetupReminderRoutes sets up protected reminder routes.
func SetupReminderRoutes(rg *gin.RouterGroup, reminders storage.ReminderStore, cache *services.DataCacheService, live *handlers.LiveHandler) {
	h := &handlers.ReminderHandler{Reminders: reminders, Cache: cache, Live: live}

	rg.GET("/reminders", h.GetByMonth)
	rg.GET("/reminders/upcoming", h.GetUpcoming)
	rg.POST("/reminders", h.Create)
	rg.PUT("/reminders/:id", h.Update)
	rg.DELETE("/reminders/:id", h.Delete)
}

// SetupDashboardRoutes sets up protected dashboard and calendar routes.
func SetupDashboardRoutes(rg *gin.RouterGroup, txns *services.TransactionService, prescriptions *services.BudgetPrescriptionService, tips *services.ComprehensiveBudgetingTipsService, cache *services.DataCacheService) {
	h := &handlers.DashboardHandler{
		Transactions:  txns,
		Prescriptions: prescriptions,
		Tips:          tips,
		Cache:         cache,
	}

	rg.GET("/dashboard", h.GetSummary)
	rg.GET("/dashboard/calendar", h.GetCalendar)
	rg.GET("/dashboard/insights", h.GetInsights)
}
