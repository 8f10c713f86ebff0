package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadcheck/inspection-api/checklist"
	"github.com/roadcheck/inspection-api/config"
	"github.com/roadcheck/inspection-api/models"
	"github.com/roadcheck/inspection-api/services"
)

// CreateInspectionRequest represents the request body for submitting an inspection
type CreateInspectionRequest struct {
	UserID                string          `json:"user_id" binding:"required"`
	UserEmail             string          `json:"user_email"`
	Location              string          `json:"location" binding:"required"`
	Date                  string          `json:"date" binding:"required"`
	Time                  string          `json:"time" binding:"required"`
	Vehicle               string          `json:"vehicle" binding:"required"`
	SpeedometerReading    string          `json:"speedometer_reading"`
	DefectiveItems        json.RawMessage `json:"defective_items"`
	TruckTrailerItems     json.RawMessage `json:"truck_trailer_items"`
	TrailerNumber         string          `json:"trailer_number"`
	Remarks               string          `json:"remarks"`
	ConditionSatisfactory bool            `json:"condition_satisfactory"`
	DriverSignature       string          `json:"driver_signature"`
	DefectsCorrected      bool            `json:"defects_corrected"`
	DefectsNeedCorrection bool            `json:"defects_need_correction"`
	MechanicSignature     string          `json:"mechanic_signature"`
}

// GetUserInspections handles GET /api/v1/inspections/:id - lists the caller's
// own inspections. The path segment is the user id.
func GetUserInspections(c *gin.Context) {
	userID, ok := actingUser(c, c.Param("id"))
	if !ok {
		return
	}

	db := config.GetDB()
	services.NewIdentityService(db).EnsureUser(c.Request.Context(), userID, requestEmail(c, c.Query("email")))

	inspections, err := services.NewInspectionService(db).ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, "controllers.GetUserInspections", err, "INSPECTION_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, inspections)
}

// CreateInspection handles POST /api/v1/inspections - submits a new inspection
func CreateInspection(c *gin.Context) {
	var req CreateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	defective, err := decodeChecklist(ctx, "defective_items", req.DefectiveItems)
	if err != nil {
		respondServiceError(c, "controllers.CreateInspection", err, "INSPECTION_NOT_FOUND")
		return
	}
	trailer, err := decodeChecklist(ctx, "truck_trailer_items", req.TruckTrailerItems)
	if err != nil {
		respondServiceError(c, "controllers.CreateInspection", err, "INSPECTION_NOT_FOUND")
		return
	}

	db := config.GetDB()
	services.NewIdentityService(db).EnsureUser(ctx, userID, requestEmail(c, req.UserEmail))

	inspection := models.Inspection{
		UserID:                userID,
		Location:              req.Location,
		Date:                  req.Date,
		Time:                  req.Time,
		Vehicle:               req.Vehicle,
		SpeedometerReading:    req.SpeedometerReading,
		DefectiveItems:        defective,
		TruckTrailerItems:     trailer,
		TrailerNumber:         req.TrailerNumber,
		Remarks:               req.Remarks,
		ConditionSatisfactory: req.ConditionSatisfactory,
		DriverSignature:       req.DriverSignature,
		DefectsCorrected:      req.DefectsCorrected,
		DefectsNeedCorrection: req.DefectsNeedCorrection,
		MechanicSignature:     req.MechanicSignature,
	}
	if err := services.NewInspectionService(db).Create(ctx, &inspection); err != nil {
		respondServiceError(c, "controllers.CreateInspection", err, "INSPECTION_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusCreated, inspection)
}

// GetInspection handles GET /api/v1/inspections/single/:id
func GetInspection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	inspection, err := services.NewInspectionService(config.GetDB()).Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, "controllers.GetInspection", err, "INSPECTION_NOT_FOUND")
		return
	}
	services.SignPrivateImages(c.Request.Context(), inspection.Images)

	respondSuccess(c, http.StatusOK, inspection)
}

// DeleteInspection handles DELETE /api/v1/inspections/:id?user_id= - the
// owner or an admin removes an inspection
func DeleteInspection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := actingUser(c, c.Query("user_id"))
	if !ok {
		return
	}

	if err := services.NewInspectionService(config.GetDB()).Delete(c.Request.Context(), id, userID, false); err != nil {
		respondServiceError(c, "controllers.DeleteInspection", err, "INSPECTION_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// decodeChecklist validates a submitted checklist and converts it. Missing
// and null checklists are empty.
func decodeChecklist(ctx context.Context, field string, raw json.RawMessage) (models.Checklist, error) {
	if isAbsent(raw) {
		return models.Checklist{}, nil
	}
	if err := checklist.Validate(ctx, field, raw); err != nil {
		return nil, err
	}

	var items map[string]bool
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &checklist.SchemaError{Field: field, Problems: []string{err.Error()}}
	}
	return models.Checklist(items), nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
