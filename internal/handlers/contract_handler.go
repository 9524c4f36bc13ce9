package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rental-billing-backend/internal/services/contracts"
)

type ContractHandler struct {
	contracts *contracts.Service
}

func NewContractHandler(contractSvc *contracts.Service) *ContractHandler {
	return &ContractHandler{contracts: contractSvc}
}

func (h *ContractHandler) CreateRoom(c *gin.Context) {
	var payload struct {
		RoomNumber   string          `json:"room_number" binding:"required"`
		MonthlyRent  decimal.Decimal `json:"monthly_rent"`
		UtilityUnits int             `json:"utility_units"`
		Notes        string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	room, err := h.contracts.CreateRoom(c.Request.Context(), contracts.CreateRoomInput{
		RoomNumber:   payload.RoomNumber,
		MonthlyRent:  payload.MonthlyRent,
		UtilityUnits: payload.UtilityUnits,
		Notes:        payload.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *ContractHandler) CreateContract(c *gin.Context) {
	var payload struct {
		RoomID      string          `json:"room_id" binding:"required"`
		TenantName  string          `json:"tenant_name" binding:"required"`
		StartDate   string          `json:"start_date" binding:"required"`
		EndDate     string          `json:"end_date" binding:"required"`
		MonthlyRent decimal.Decimal `json:"monthly_rent"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	roomID, err := uuid.Parse(payload.RoomID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	startDate, err := time.Parse(dateLayout, payload.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
		return
	}
	endDate, err := time.Parse(dateLayout, payload.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
		return
	}

	contract, err := h.contracts.CreateContract(c.Request.Context(), contracts.CreateContractInput{
		RoomID:      roomID,
		TenantName:  payload.TenantName,
		StartDate:   startDate,
		EndDate:     endDate,
		MonthlyRent: payload.MonthlyRent,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

func (h *ContractHandler) GetContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	contract, err := h.contracts.GetContract(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *ContractHandler) SweepExpired(c *gin.Context) {
	count, err := h.contracts.ExpireContracts(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts_expired": count})
}
