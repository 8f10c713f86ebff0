package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roadcheck/inspection-api/config"
	"github.com/roadcheck/inspection-api/services"
)

// UpdateInspectionRequest is an admin edit. Omitted fields keep their stored value.
type UpdateInspectionRequest struct {
	AdminUserID           string          `json:"admin_user_id" binding:"required"`
	Location              *string         `json:"location"`
	Date                  *string         `json:"date"`
	Time                  *string         `json:"time"`
	Vehicle               *string         `json:"vehicle"`
	SpeedometerReading    *string         `json:"speedometer_reading"`
	DefectiveItems        json.RawMessage `json:"defective_items"`
	TruckTrailerItems     json.RawMessage `json:"truck_trailer_items"`
	TrailerNumber         *string         `json:"trailer_number"`
	Remarks               *string         `json:"remarks"`
	ConditionSatisfactory *bool           `json:"condition_satisfactory"`
	DriverSignature       *string         `json:"driver_signature"`
	DefectsCorrected      *bool           `json:"defects_corrected"`
	DefectsNeedCorrection *bool           `json:"defects_need_correction"`
	MechanicSignature     *string         `json:"mechanic_signature"`
}

// UpdateRoleRequest represents the request body for changing a user's role
type UpdateRoleRequest struct {
	AdminUserID string `json:"admin_user_id" binding:"required"`
	Role        string `json:"role" binding:"required,oneof=user admin"`
}

// PromoteAdminRequest represents the request body for the admin bootstrap
type PromoteAdminRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Email  string `json:"email"`
	Secret string `json:"secret" binding:"required"`
}

// requireAdmin resolves the acting user and answers 403 unless they are an admin.
func requireAdmin(c *gin.Context, claimed string) (string, bool) {
	userID, ok := actingUser(c, claimed)
	if !ok {
		return "", false
	}

	if err := services.NewIdentityService(config.GetDB()).RequireAdmin(c.Request.Context(), userID); err != nil {
		respondServiceError(c, "controllers.requireAdmin", err, "USER_NOT_FOUND")
		return "", false
	}
	return userID, true
}

// CheckAdmin handles GET /api/v1/admin/check/:userId
func CheckAdmin(c *gin.Context) {
	userID, ok := actingUser(c, c.Param("userId"))
	if !ok {
		return
	}

	identity := services.NewIdentityService(config.GetDB())
	identity.EnsureUser(c.Request.Context(), userID, requestEmail(c, c.Query("email")))

	isAdmin, err := identity.IsAdmin(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, "controllers.CheckAdmin", err, "USER_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"user_id": userID, "is_admin": isAdmin})
}

// GetAllInspections handles GET /api/v1/admin/inspections/:userId
func GetAllInspections(c *gin.Context) {
	if _, ok := requireAdmin(c, c.Param("userId")); !ok {
		return
	}

	inspections, err := services.NewInspectionService(config.GetDB()).ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, "controllers.GetAllInspections", err, "INSPECTION_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, inspections)
}

// UpdateInspection handles PUT /api/v1/admin/inspections/:id
func UpdateInspection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	adminID, ok := actingUser(c, req.AdminUserID)
	if !ok {
		return
	}

	patch := services.InspectionPatch{
		Location:              req.Location,
		Date:                  req.Date,
		Time:                  req.Time,
		Vehicle:               req.Vehicle,
		SpeedometerReading:    req.SpeedometerReading,
		TrailerNumber:         req.TrailerNumber,
		Remarks:               req.Remarks,
		ConditionSatisfactory: req.ConditionSatisfactory,
		DriverSignature:       req.DriverSignature,
		DefectsCorrected:      req.DefectsCorrected,
		DefectsNeedCorrection: req.DefectsNeedCorrection,
		MechanicSignature:     req.MechanicSignature,
	}

	ctx := c.Request.Context()
	if !isAbsent(req.DefectiveItems) {
		items, err := decodeChecklist(ctx, "defective_items", req.DefectiveItems)
		if err != nil {
			respondServiceError(c, "controllers.UpdateInspection", err, "INSPECTION_NOT_FOUND")
			return
		}
		patch.DefectiveItems = &items
	}
	if !isAbsent(req.TruckTrailerItems) {
		items, err := decodeChecklist(ctx, "truck_trailer_items", req.TruckTrailerItems)
		if err != nil {
			respondServiceError(c, "controllers.UpdateInspection", err, "INSPECTION_NOT_FOUND")
			return
		}
		patch.TruckTrailerItems = &items
	}

	inspection, err := services.NewInspectionService(config.GetDB()).Update(ctx, id, adminID, patch)
	if err != nil {
		respondServiceError(c, "controllers.UpdateInspection", err, "INSPECTION_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, inspection)
}

// DeleteInspectionAsAdmin handles DELETE /api/v1/admin/inspections/:id?admin_user_id=
func DeleteInspectionAsAdmin(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	adminID, ok := actingUser(c, c.Query("admin_user_id"))
	if !ok {
		return
	}

	if err := services.NewInspectionService(config.GetDB()).Delete(c.Request.Context(), id, adminID, true); err != nil {
		respondServiceError(c, "controllers.DeleteInspectionAsAdmin", err, "INSPECTION_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// GetStats handles GET /api/v1/admin/stats/:userId
func GetStats(c *gin.Context) {
	if _, ok := requireAdmin(c, c.Param("userId")); !ok {
		return
	}

	summary, err := services.NewStatsService(config.GetDB()).Summary(c.Request.Context())
	if err != nil {
		respondServiceError(c, "controllers.GetStats", err, "STATS_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, summary)
}

// GetDefectiveItemsStats handles GET /api/v1/admin/defective-items-stats/:userId
func GetDefectiveItemsStats(c *gin.Context) {
	if _, ok := requireAdmin(c, c.Param("userId")); !ok {
		return
	}

	report, err := services.NewStatsService(config.GetDB()).DefectReport(c.Request.Context())
	if err != nil {
		respondServiceError(c, "controllers.GetDefectiveItemsStats", err, "STATS_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, report)
}

// GetUsers handles GET /api/v1/admin/users/:userId
func GetUsers(c *gin.Context) {
	if _, ok := requireAdmin(c, c.Param("userId")); !ok {
		return
	}

	users, err := services.NewIdentityService(config.GetDB()).ListUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, "controllers.GetUsers", err, "USER_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, users)
}

// UpdateUserRole handles PUT /api/v1/admin/users/:userId/role. The path names
// the user being changed; admin_user_id is the admin doing it.
func UpdateUserRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	adminID, ok := actingUser(c, req.AdminUserID)
	if !ok {
		return
	}

	user, err := services.NewIdentityService(config.GetDB()).SetRole(c.Request.Context(), adminID, c.Param("userId"), req.Role)
	if err != nil {
		respondServiceError(c, "controllers.UpdateUserRole", err, "USER_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, user)
}

// PromoteAdmin handles POST /api/v1/admin/promote-admin - makes the caller an
// admin when they know the bootstrap secret
func PromoteAdmin(c *gin.Context) {
	var req PromoteAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	userID, ok := actingUser(c, req.UserID)
	if !ok {
		return
	}

	var secretHash string
	if cfg := config.GetConfig(); cfg != nil {
		secretHash = cfg.AdminSecretHash
	}

	user, err := services.NewIdentityService(config.GetDB()).PromoteWithSecret(
		c.Request.Context(), secretHash, userID, requestEmail(c, req.Email), req.Secret)
	if err != nil {
		respondServiceError(c, "controllers.PromoteAdmin", err, "USER_NOT_FOUND")
		return
	}

	respondSuccess(c, http.StatusOK, user)
}
