package api

import (
	"sync"

	"notes-marketplace-api/internal/config"
	"notes-marketplace-api/internal/middleware"
	"notes-marketplace-api/internal/models"
	"notes-marketplace-api/internal/services"
	"notes-marketplace-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers carries the services the HTTP handlers call
type Handlers struct {
	Purchases   *services.PurchaseService
	Catalog     *services.CatalogService
	Leads       *services.LeadService
	Admins      *services.AdminService
	MaxUploadMB int
}

// NewHandlers wires services from the application config. store may be nil.
func NewHandlers(store services.FileStore) *Handlers {
	return &Handlers{
		Purchases:   services.NewPurchaseService(),
		Catalog:     services.NewCatalogService(store),
		Leads:       services.NewLeadService(),
		Admins:      services.NewAdminService(),
		MaxUploadMB: config.AppConfig.MaxUploadMB,
	}
}

var registerValidators sync.Once

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, h *Handlers) {
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := v.RegisterValidation("purchase_status", validPurchaseStatus); err != nil {
				logging.Errorf("Failed to register purchase_status validator: %v", err)
			}
		}
	})

	r.Use(middleware.RequestLogger())

	api := r.Group("/api")
	{
		// Checkout routes (customer facing, no authentication)
		payment := api.Group("/payment")
		{
			payment.POST("/order", h.CreateOrder)
			payment.POST("/verify", h.VerifyPayment)
			payment.POST("/downloaded", h.MarkDownloaded)
		}

		// Catalog routes
		api.GET("/notes", h.ListNotes)
		api.GET("/notes/:id", h.GetNote)
		api.GET("/resolve/notes/*slug", h.ResolveNote)
		api.GET("/syllabuses", h.ListSyllabuses)
		api.GET("/syllabuses/:id", h.GetSyllabus)
		api.POST("/syllabuses/downloads", h.RecordSyllabusDownload)

		// Admin account routes
		admin := api.Group("/admin")
		{
			admin.POST("/login", h.AdminLogin)
			admin.POST("/register", h.AdminRegister)
			admin.POST("/delete", h.AdminDelete)
		}

		// Admin dashboard routes (require an admin session)
		dashboard := api.Group("/admin")
		dashboard.Use(middleware.AdminAuthMiddleware(h.Admins))
		{
			dashboard.POST("/logout", h.AdminLogout)

			dashboard.GET("/purchases", h.ListPurchases)
			dashboard.PUT("/purchases", h.UpdatePurchase)
			dashboard.GET("/purchases/report", h.SalesReport)
			dashboard.GET("/purchases/export", h.ExportSales)

			dashboard.POST("/notes", h.CreateNote)
			dashboard.PUT("/notes/:id", h.UpdateNote)
			dashboard.DELETE("/notes/:id", h.DeleteNote)

			dashboard.POST("/syllabuses", h.CreateSyllabus)
			dashboard.PUT("/syllabuses/:id", h.UpdateSyllabus)
			dashboard.DELETE("/syllabuses/:id", h.DeleteSyllabus)

			dashboard.GET("/syllabus-downloads", h.ListSyllabusDownloads)
		}
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "notes-marketplace",
		})
	})
}

func validPurchaseStatus(fl validator.FieldLevel) bool {
	return models.PurchaseStatus(fl.Field().String()).Valid()
}
