package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-billing-backend/internal/config"
	"rental-billing-backend/internal/handlers"
	"rental-billing-backend/internal/middleware"
	"rental-billing-backend/internal/repository"
	"rental-billing-backend/internal/services/contracts"
	"rental-billing-backend/internal/services/ledger"
	"rental-billing-backend/internal/services/proofs"
	"rental-billing-backend/internal/storage"
)

// Services bundles the wired service layer so main can hand it to the
// sweeper and the CLI.
type Services struct {
	Ledger    *ledger.Service
	Contracts *contracts.Service
	Proofs    *proofs.Service
}

// BuildServices wires repositories into the service layer.
func BuildServices(db *gorm.DB, cfg *config.Config, store storage.ProofStore, logger *zap.Logger) *Services {
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	contractRepo := repository.NewContractRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	proofRepo := repository.NewProofRepository(db)

	ledgerSvc := ledger.NewService(
		invoiceRepo,
		paymentRepo,
		contractRepo,
		roomRepo,
		ledger.PolicyFromConfig(cfg.Penalty),
		logger,
	)
	proofSvc := proofs.NewService(paymentRepo, proofRepo, store, logger)
	ledgerSvc.SetProofPurger(proofSvc)

	contractSvc := contracts.NewService(contractRepo, roomRepo, logger)

	return &Services{
		Ledger:    ledgerSvc,
		Contracts: contractSvc,
		Proofs:    proofSvc,
	}
}

// RegisterRoutes mounts the HTTP API on r.
func RegisterRoutes(r *gin.Engine, svcs *Services, cfg *config.Config) {
	billingHandler := handlers.NewBillingHandler(svcs.Ledger)
	proofHandler := handlers.NewProofHandler(svcs.Proofs)
	contractHandler := handlers.NewContractHandler(svcs.Contracts)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.Use(middleware.Auth(cfg))

	rooms := api.Group("/rooms")
	rooms.POST("", contractHandler.CreateRoom)

	contractGroup := api.Group("/contracts")
	contractGroup.POST("", contractHandler.CreateContract)
	contractGroup.POST("/sweep", contractHandler.SweepExpired)
	contractGroup.GET("/:id", contractHandler.GetContract)

	invoices := api.Group("/invoices")
	invoices.POST("", billingHandler.CreateInvoice)
	invoices.GET("", billingHandler.ListInvoices)
	invoices.POST("/sweep-penalties", billingHandler.SweepPenalties)
	invoices.GET("/:id", billingHandler.GetInvoice)
	invoices.GET("/:id/balance", billingHandler.GetBalance)
	invoices.POST("/:id/cancel", billingHandler.CancelInvoice)
	invoices.POST("/:id/payments", billingHandler.RecordPayment)
	invoices.GET("/:id/payments", billingHandler.ListPayments)

	payments := api.Group("/payments")
	payments.POST("/import", billingHandler.ImportPayments)
	payments.GET("/:id", billingHandler.GetPayment)
	payments.POST("/:id/status", billingHandler.TransitionPayment)
	payments.DELETE("/:id", billingHandler.DeletePayment)
	payments.POST("/:id/proofs", proofHandler.Upload)
	payments.GET("/:id/proofs", proofHandler.List)
	payments.GET("/:id/proofs/:proofId", proofHandler.Download)
	payments.DELETE("/:id/proofs/:proofId", proofHandler.Delete)
}
