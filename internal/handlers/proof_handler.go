package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rental-billing-backend/internal/middleware"
	"rental-billing-backend/internal/models"
	"rental-billing-backend/internal/services/proofs"
)

type ProofHandler struct {
	proofs *proofs.Service
}

func NewProofHandler(proofSvc *proofs.Service) *ProofHandler {
	return &ProofHandler{proofs: proofSvc}
}

// Upload accepts a multipart form with a "file" part plus optional
// "proof_type" and "description" fields.
func (h *ProofHandler) Upload(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proof file is required"})
		return
	}
	defer file.Close()

	proof, err := h.proofs.AttachProof(c.Request.Context(), paymentID, proofs.Upload{
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		ProofType:   models.ProofType(c.PostForm("proof_type")),
		Description: c.PostForm("description"),
		UploadedBy:  middleware.CurrentUser(c),
		Body:        file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, proof)
}

func (h *ProofHandler) List(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	list, err := h.proofs.ListProofs(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// Download streams the stored file back with its original name and type.
func (h *ProofHandler) Download(c *gin.Context) {
	proofID, err := uuid.Parse(c.Param("proofId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proof id"})
		return
	}
	proof, body, err := h.proofs.OpenProof(c.Request.Context(), proofID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", `attachment; filename="`+proof.FileName+`"`)
	c.Header("Content-Length", strconv.FormatInt(proof.FileSize, 10))
	contentType := proof.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", contentType)
	if _, err := io.Copy(c.Writer, body); err != nil {
		// Headers are gone; nothing left to do but log through gin.
		_ = c.Error(err)
	}
}

func (h *ProofHandler) Delete(c *gin.Context) {
	proofID, err := uuid.Parse(c.Param("proofId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proof id"})
		return
	}
	if err := h.proofs.DeleteProof(c.Request.Context(), proofID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "proof deleted"})
}
