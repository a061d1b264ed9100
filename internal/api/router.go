package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ivanblascoverdu/facturacion/internal/api/handlers"
	"github.com/ivanblascoverdu/facturacion/internal/api/middleware"
	"github.com/ivanblascoverdu/facturacion/internal/config"
	"github.com/ivanblascoverdu/facturacion/internal/pdf"
	"github.com/ivanblascoverdu/facturacion/internal/services"
	"github.com/ivanblascoverdu/facturacion/internal/store"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, st *store.Store) *gin.Engine {
	// Initialize services needed by API handlers
	billingService := services.NewBillingService(st, cfg)
	kpiService := services.NewKPIService(st)
	alertService := services.NewAlertService(st, kpiService)
	importService := services.NewImportService(st)
	pdfRenderer := pdf.NewRenderer()

	r := gin.Default()

	// Initialize middleware (order matters)
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	patientHandler := handlers.NewRestPatientHandler(st)
	catalogHandler := handlers.NewRestCatalogHandler(st)
	appointmentHandler := handlers.NewRestAppointmentHandler(st, billingService)
	invoiceHandler := handlers.NewRestInvoiceHandler(st, billingService, pdfRenderer)
	expenseHandler := handlers.NewRestExpenseHandler(st)
	dashboardHandler := handlers.NewRestDashboardHandler(st, kpiService, alertService)
	importHandler := handlers.NewRestImportHandler(importService)
	clinicHandler := handlers.NewRestClinicHandler(st)

	v1 := r.Group("/v1")
	{
		// Patients
		v1.GET("/patient", patientHandler.ListPatients)
		v1.POST("/patient", patientHandler.CreatePatient)
		v1.GET("/patient/:id", patientHandler.GetPatientByID)
		v1.PUT("/patient/:id", patientHandler.UpdatePatient)

		// Catalog
		v1.GET("/service", catalogHandler.ListServices)
		v1.POST("/service", catalogHandler.CreateService)
		v1.GET("/service/:id", catalogHandler.GetServiceByID)
		v1.GET("/professional", catalogHandler.ListProfessionals)
		v1.POST("/professional", catalogHandler.CreateProfessional)

		// Appointments
		v1.GET("/appointment", appointmentHandler.ListAppointments)
		v1.POST("/appointment", appointmentHandler.CreateAppointment)
		v1.GET("/appointment/:id", appointmentHandler.GetAppointmentByID)
		v1.PUT("/appointment/:id/status", appointmentHandler.UpdateAppointmentStatus)
		v1.POST("/appointment/:id/complete", appointmentHandler.CompleteAppointment)

		// Invoices
		v1.GET("/invoice", invoiceHandler.ListInvoices)
		v1.POST("/invoice", invoiceHandler.CreateInvoice)
		v1.GET("/invoice/:id", invoiceHandler.GetInvoiceByID)
		v1.POST("/invoice/:id/pay", invoiceHandler.MarkPaid)
		v1.POST("/invoice/:id/reminder", invoiceHandler.SendReminder)
		v1.PUT("/invoice/:id/status", invoiceHandler.UpdateStatus)
		v1.GET("/invoice/:id/pdf", invoiceHandler.GetInvoicePDF)

		// Expenses
		v1.GET("/expense", expenseHandler.ListExpenses)
		v1.POST("/expense", expenseHandler.CreateExpense)
		v1.DELETE("/expense/:id", expenseHandler.DeleteExpense)

		// Dashboard
		v1.GET("/dashboard/kpis", dashboardHandler.GetKPIs)
		v1.GET("/dashboard/alerts", dashboardHandler.ListAlerts)
		v1.POST("/dashboard/alerts/generate", dashboardHandler.GenerateAlerts)
		v1.POST("/dashboard/alerts/:id/dismiss", dashboardHandler.DismissAlert)

		// Bulk imports
		v1.POST("/import/patients", importHandler.ImportPatients)
		v1.POST("/import/expenses", importHandler.ImportExpenses)

		// Clinic record
		v1.GET("/clinic", clinicHandler.GetClinic)
		v1.PUT("/clinic", clinicHandler.UpdateClinic)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})
	}

	return r
}

// SetupServiceRouter configures and returns the service Gin engine used by
// test orchestration: remote shutdown plus retrieval of mock emails captured
// in Redis by the RedisSender.
func SetupServiceRouter(cfg *config.Config, rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			log.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
				log.Println("Shutdown channel already signaled or blocked.")
			}
		case "getTestEmail":
			var args []string // Expect ["kind", "email"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 2 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [kind, email]"})
				return
			}
			redisKey := fmt.Sprintf("mockemail:%s:%s", args[1], args[0])

			// Poll Redis briefly for the key; reminder delivery is async.
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			var emailJSON string
			found := false
			for i := 0; i < 10; i++ {
				data, err := rdb.Get(ctx, redisKey).Result()
				if err == nil {
					emailJSON = data
					found = true
					rdb.Del(ctx, redisKey)
					break
				}
				if err != redis.Nil {
					log.Printf("Service API: Error getting key %s from Redis: %v", redisKey, err)
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
					return
				}
				time.Sleep(200 * time.Millisecond)
			}
			if !found {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
				return
			}

			var emailData map[string]interface{}
			if err := json.Unmarshal([]byte(emailJSON), &emailData); err != nil {
				log.Printf("Service API: Error unmarshalling email data from key %s: %v", redisKey, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})

		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
