package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rental-billing-backend/internal/middleware"
	"rental-billing-backend/internal/models"
	"rental-billing-backend/internal/services/ledger"
)

const dateLayout = "2006-01-02"

type BillingHandler struct {
	ledger *ledger.Service
}

func NewBillingHandler(ledgerSvc *ledger.Service) *BillingHandler {
	return &BillingHandler{ledger: ledgerSvc}
}

func (h *BillingHandler) CreateInvoice(c *gin.Context) {
	var payload struct {
		ContractID      string          `json:"contract_id" binding:"required"`
		SubTotal        decimal.Decimal `json:"sub_total"`
		PreviousBalance decimal.Decimal `json:"previous_balance"`
		DueDate         string          `json:"due_date" binding:"required"`
		CreateDate      string          `json:"create_date"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contractID, err := uuid.Parse(payload.ContractID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	dueDate, err := time.Parse(dateLayout, payload.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date, expected YYYY-MM-DD"})
		return
	}
	in := ledger.CreateInvoiceInput{
		ContractID:      contractID,
		SubTotal:        payload.SubTotal,
		PreviousBalance: payload.PreviousBalance,
		DueDate:         dueDate,
	}
	if payload.CreateDate != "" {
		createDate, err := time.Parse(dateLayout, payload.CreateDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid create_date, expected YYYY-MM-DD"})
			return
		}
		in.CreateDate = createDate
	}

	inv, err := h.ledger.CreateInvoice(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *BillingHandler) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}
	inv, err := h.ledger.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *BillingHandler) ListInvoices(c *gin.Context) {
	status := models.InvoiceStatus(c.Query("status"))
	var contractID *uuid.UUID
	if raw := c.Query("contract_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
			return
		}
		contractID = &id
	}
	invoices, err := h.ledger.ListInvoices(c.Request.Context(), status, contractID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

func (h *BillingHandler) GetBalance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}
	balance, err := h.ledger.GetInvoiceBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *BillingHandler) CancelInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}
	var payload struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&payload)

	inv, err := h.ledger.CancelInvoice(c.Request.Context(), id, payload.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *BillingHandler) RecordPayment(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}
	var payload struct {
		Amount      decimal.Decimal `json:"amount" binding:"required"`
		Method      string          `json:"method" binding:"required"`
		Status      string          `json:"status"`
		PaymentDate string          `json:"payment_date"`
		Reference   string          `json:"reference"`
		Notes       string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := ledger.RecordPaymentInput{
		InvoiceID:  invoiceID,
		Amount:     payload.Amount,
		Method:     models.PaymentMethod(payload.Method),
		Status:     models.PaymentStatus(payload.Status),
		Reference:  payload.Reference,
		Notes:      payload.Notes,
		RecordedBy: middleware.CurrentUser(c),
	}
	if payload.PaymentDate != "" {
		paymentDate, err := time.Parse(dateLayout, payload.PaymentDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment_date, expected YYYY-MM-DD"})
			return
		}
		in.PaymentDate = paymentDate
	}

	rec, err := h.ledger.RecordPayment(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *BillingHandler) ListPayments(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}
	payments, err := h.ledger.ListPayments(c.Request.Context(), invoiceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}

func (h *BillingHandler) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	rec, err := h.ledger.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *BillingHandler) TransitionPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	var payload struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.ledger.TransitionPaymentStatus(
		c.Request.Context(), id, models.PaymentStatus(payload.Status), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *BillingHandler) DeletePayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	if err := h.ledger.DeletePayment(c.Request.Context(), id, middleware.CurrentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment deleted"})
}

func (h *BillingHandler) SweepPenalties(c *gin.Context) {
	applied, err := h.ledger.ApplyOverduePenalties(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"penalties_applied": applied})
}

func (h *BillingHandler) ImportPayments(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv file is required"})
		return
	}
	defer file.Close()

	batch, err := h.ledger.ImportPayments(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}
