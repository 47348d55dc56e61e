package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"stablepay.backend/internal/interfaces/http/handlers"
	"stablepay.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	healthHandler       *handlers.HealthHandler
	networkHandler      *handlers.NetworkHandler
	planHandler         *handlers.PlanHandler
	paymentHandler      *handlers.PaymentHandler
	subscriptionHandler *handlers.SubscriptionHandler
	ofacHandler         *handlers.OfacHandler
	authMiddleware      gin.HandlerFunc
}

func registerAPIRoutes(r *gin.Engine, d routeDeps) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Public routes
		api.GET("/health", d.healthHandler.Health)
		api.GET("/networks", d.networkHandler.ListNetworks)
		api.POST("/validate-address", d.networkHandler.ValidateAddress)

		// Plan routes (tenant-scoped)
		plans := api.Group("/plans")
		plans.Use(d.authMiddleware)
		{
			plans.GET("", d.planHandler.ListPlans)
			plans.POST("", d.planHandler.CreatePlan)
			plans.PATCH("/:id", d.planHandler.UpdatePlan)
		}

		// Payment routes (tenant-scoped)
		payments := api.Group("/payments")
		payments.Use(d.authMiddleware)
		{
			payments.POST("", middleware.IdempotencyMiddleware(), d.paymentHandler.InitiatePayment)
			payments.GET("/history", d.paymentHandler.GetPaymentHistory)
			payments.POST("/:id/confirm", d.paymentHandler.ConfirmPaymentSent)
			payments.GET("/:id/status", d.paymentHandler.GetPaymentStatus)
			payments.DELETE("/:id", d.paymentHandler.CancelPayment)
		}

		// Subscription routes (tenant-scoped)
		subscriptions := api.Group("/subscriptions")
		subscriptions.Use(d.authMiddleware)
		{
			subscriptions.GET("/current", d.subscriptionHandler.Current)
			subscriptions.GET("/active", d.subscriptionHandler.Active)
			subscriptions.GET("/history", d.subscriptionHandler.History)
		}

		// Sanctions screening routes (tenant-scoped)
		ofac := api.Group("/ofac")
		ofac.Use(d.authMiddleware)
		{
			ofac.GET("/status", d.ofacHandler.Status)
			ofac.GET("/check/:address", d.ofacHandler.Check)
			ofac.POST("/update", d.ofacHandler.Update)
		}
	}
}
