package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rental-billing-backend/internal/config"
	"rental-billing-backend/internal/routes"
	"rental-billing-backend/internal/storage"
	"rental-billing-backend/internal/testutil"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenDB(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		AuthDisabled: true,
		Penalty:      config.PenaltyConfig{Mode: "flat", Flat: d("200")},
	}
	svcs := routes.BuildServices(db, cfg, store, zap.NewNop())

	r := gin.New()
	routes.RegisterRoutes(r, svcs, cfg)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), "body: %s", w.Body.String())
	}
	return w, decoded
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w, body := doJSON(t, r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestInvoiceLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w, room := doJSON(t, r, http.MethodPost, "/api/rooms", gin.H{
		"room_number":  "A-101",
		"monthly_rent": "5000",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", room)

	w, contract := doJSON(t, r, http.MethodPost, "/api/contracts", gin.H{
		"room_id":     room["id"],
		"tenant_name": "Sam Ortiz",
		"start_date":  "2024-07-01",
		"end_date":    "2025-06-30",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", contract)

	w, invoice := doJSON(t, r, http.MethodPost, "/api/invoices", gin.H{
		"contract_id": contract["id"],
		"sub_total":   "5000",
		"create_date": "2025-01-01",
		"due_date":    "2025-01-10",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", invoice)
	assert.Equal(t, "UNPAID", invoice["status"])

	invoiceURL := "/api/invoices/" + invoice["id"].(string)

	w, payment := doJSON(t, r, http.MethodPost, invoiceURL+"/payments", gin.H{
		"amount": "5000",
		"method": "BANK_TRANSFER",
		"status": "CONFIRMED",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", payment)

	w, got := doJSON(t, r, http.MethodGet, invoiceURL, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PAID", got["status"])

	w, balance := doJSON(t, r, http.MethodGet, invoiceURL+"/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", fmt.Sprint(balance["remaining_balance"]))

	w, list := doJSON(t, r, http.MethodGet, "/api/invoices?status=PAID", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list["data"], 1)
}

func TestErrorStatusMapping(t *testing.T) {
	r := newTestRouter(t)

	// Unknown invoice: 404.
	w, _ := doJSON(t, r, http.MethodGet, "/api/invoices/7c9e6679-7425-40de-944b-e07fc1f90ae7", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Malformed id: 400.
	w, _ = doJSON(t, r, http.MethodGet, "/api/invoices/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing payload fields: 400.
	w, _ = doJSON(t, r, http.MethodPost, "/api/invoices", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Double-booking a room: 409.
	w, room := doJSON(t, r, http.MethodPost, "/api/rooms", gin.H{
		"room_number":  "B-202",
		"monthly_rent": "4000",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	lease := gin.H{
		"room_id":     room["id"],
		"tenant_name": "Kai Whitfield",
		"start_date":  "2024-07-01",
		"end_date":    "2025-06-30",
	}
	w, _ = doJSON(t, r, http.MethodPost, "/api/contracts", lease)
	require.Equal(t, http.StatusCreated, w.Code)
	w, body := doJSON(t, r, http.MethodPost, "/api/contracts", lease)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, body["error"], "active contract")
}

func TestProofUploadOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w, room := doJSON(t, r, http.MethodPost, "/api/rooms", gin.H{
		"room_number": "C-303", "monthly_rent": "3000",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w, contract := doJSON(t, r, http.MethodPost, "/api/contracts", gin.H{
		"room_id": room["id"], "tenant_name": "Sam",
		"start_date": "2024-07-01", "end_date": "2025-06-30",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w, invoice := doJSON(t, r, http.MethodPost, "/api/invoices", gin.H{
		"contract_id": contract["id"], "sub_total": "3000",
		"create_date": "2025-01-01", "due_date": "2025-01-10",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w, payment := doJSON(t, r, http.MethodPost, "/api/invoices/"+invoice["id"].(string)+"/payments", gin.H{
		"amount": "3000", "method": "CASH",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("proof_type", "TRANSFER_RECEIPT"))
	require.NoError(t, mw.Close())

	paymentURL := "/api/payments/" + payment["id"].(string)
	req := httptest.NewRequest(http.MethodPost, paymentURL+"/proofs", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var proof map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &proof))

	// Download streams the original bytes back.
	req = httptest.NewRequest(http.MethodGet, paymentURL+"/proofs/"+proof["id"].(string), nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "receipt.png")

	w, list := doJSON(t, r, http.MethodGet, paymentURL+"/proofs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list["data"], 1)
}

func TestImportPaymentsOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w, room := doJSON(t, r, http.MethodPost, "/api/rooms", gin.H{
		"room_number": "D-404", "monthly_rent": "3000",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w, contract := doJSON(t, r, http.MethodPost, "/api/contracts", gin.H{
		"room_id": room["id"], "tenant_name": "Sam",
		"start_date": "2024-07-01", "end_date": "2025-06-30",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w, invoice := doJSON(t, r, http.MethodPost, "/api/invoices", gin.H{
		"contract_id": contract["id"], "sub_total": "3000",
		"create_date": "2025-01-01", "due_date": "2025-01-10",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	csvData := strings.Join([]string{
		"invoice_id,amount,method,status,date,reference,recorded_by",
		invoice["id"].(string) + ",3000,BANK_TRANSFER,CONFIRMED,2025-01-05,TRX-9,importer",
	}, "\n")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "payments.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvData))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/payments/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var batch map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	assert.Equal(t, float64(1), batch["imported_count"])

	w, got := doJSON(t, r, http.MethodGet, "/api/invoices/"+invoice["id"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PAID", got["status"])
}
