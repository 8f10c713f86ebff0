package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadcheck/inspection-api/config"
	"github.com/roadcheck/inspection-api/models"
	"github.com/roadcheck/inspection-api/services"
)

// UploadURLRequest asks for a presigned upload of one photo
type UploadURLRequest struct {
	UserID      string `json:"user_id"`
	ContentType string `json:"content_type" binding:"required"`
}

// RegisterImageRequest records a photo the client has already uploaded
type RegisterImageRequest struct {
	UserID    string `json:"user_id"`
	URL       string `json:"url"`
	PublicID  string `json:"public_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format" binding:"required"`
	Bytes     int64  `json:"bytes"`
	IsPrivate bool   `json:"is_private"`
}

// CreateImageUploadURL handles POST /api/v1/inspections/:id/images/upload-url
func CreateImageUploadURL(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}

	upload, err := services.NewImageService(config.GetDB()).CreateUploadURL(c.Request.Context(), id, userID, req.ContentType)
	if err != nil {
		respondServiceError(c, "controllers.CreateImageUploadURL", err, "INSPECTION_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, upload)
}

// RegisterImage handles POST /api/v1/inspections/:id/images
func RegisterImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req RegisterImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}

	image := models.InspectionImage{
		URL:       req.URL,
		PublicID:  req.PublicID,
		Width:     req.Width,
		Height:    req.Height,
		Format:    req.Format,
		Bytes:     req.Bytes,
		IsPrivate: req.IsPrivate,
	}
	if err := services.NewImageService(config.GetDB()).Register(c.Request.Context(), id, userID, &image); err != nil {
		respondServiceError(c, "controllers.RegisterImage", err, "INSPECTION_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusCreated, image)
}

// ListImages handles GET /api/v1/inspections/:id/images
func ListImages(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	images, err := services.NewImageService(config.GetDB()).List(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, "controllers.ListImages", err, "INSPECTION_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, images)
}
