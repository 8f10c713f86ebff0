package controllers

import (
	"net/http"
	"testing"

	"github.com/roadcheck/inspection-api/checklist"
	"github.com/roadcheck/inspection-api/config"
	"github.com/roadcheck/inspection-api/models"
	"github.com/roadcheck/inspection-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCheckAdmin(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter("", "")
	createUser(t, db, "admin_1", "a@example.com", models.RoleAdmin)

	tests := []struct {
		name   string
		userID string
		want   bool
	}{
		{"admin", "admin_1", true},
		{"first visit creates a plain user", "newcomer", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doRequest(t, router, http.MethodGet, "/api/v1/admin/check/"+tt.userID, nil)
			require.Equal(t, http.StatusOK, w.Code)
			got := decodeData[map[string]any](t, env)
			assert.Equal(t, tt.want, got["is_admin"])
		})
	}

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "newcomer").Error)
	assert.Equal(t, "newcomer@clerk.user", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestAdminEndpointsRejectNonAdmins(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter("", "")
	createUser(t, db, "user_1", "u@example.com", models.RoleUser)
	inspection := createInspection(t, db, "user_1")
	id := itoa(inspection.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"list all", http.MethodGet, "/api/v1/admin/inspections/user_1", nil},
		{"stats", http.MethodGet, "/api/v1/admin/stats/user_1", nil},
		{"defect stats", http.MethodGet, "/api/v1/admin/defective-items-stats/user_1", nil},
		{"users", http.MethodGet, "/api/v1/admin/users/user_1", nil},
		{"unknown caller", http.MethodGet, "/api/v1/admin/users/ghost", nil},
		{"update", http.MethodPut, "/api/v1/admin/inspections/" + id, map[string]any{"admin_user_id": "user_1", "remarks": "x"}},
		{"delete", http.MethodDelete, "/api/v1/admin/inspections/" + id + "?admin_user_id=user_1", nil},
		{"role", http.MethodPut, "/api/v1/admin/users/user_1/role", map[string]any{"admin_user_id": "user_1", "role": "admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doRequest(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, "FORBIDDEN", env.Error.Code)
		})
	}

	var stored models.Inspection
	require.NoError(t, db.First(&stored, inspection.ID).Error)
	assert.Equal(t, "original remarks", stored.Remarks)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", "user_1").Error)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestGetAllInspections(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter("", "")
	createUser(t, db, "admin_1", "a@example.com", models.RoleAdmin)
	createUser(t, db, "user_1", "driver@example.com", models.RoleUser)
	createInspection(t, db, "user_1")

	w, env := doRequest(t, router, http.MethodGet, "/api/v1/admin/inspections/admin_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeData[[]models.Inspection](t, env)
	require.Len(t, list, 1)
	assert.Equal(t, "driver@example.com", list[0].UserEmail)
}

func TestUpdateInspectionMergesFields(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter("", "")
	createUser(t, db, "admin_1", "a@example.com", models.RoleAdmin)
	inspection := createInspection(t, db, "user_1")

	w, env := doRequest(t, router, http.MethodPut, "/api/v1/admin/inspections/"+itoa(inspection.ID), map[string]any{
		"admin_user_id":      "admin_1",
		"remarks":            "fixed by shop",
		"defects_corrected":  true,
		"mechanic_signature": "M. Ortiz",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decodeData[models.Inspection](t, env)
	assert.Equal(t, "fixed by shop", updated.Remarks)
	assert.True(t, updated.DefectsCorrected)
	assert.Equal(t, "M. Ortiz", updated.MechanicSignature)
	assert.Equal(t, inspection.Location, updated.Location)
	assert.Equal(t, inspection.Vehicle, updated.Vehicle)
	assert.True(t, updated.DefectsNeedCorrection)
	assert.Equal(t, models.Checklist{"lights": true}, updated.DefectiveItems)
}

func TestUpdateInspectionErrors(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter("", "")
	createUser(t, db, "admin_1", "a@example.com", models.RoleAdmin)
	inspection := createInspection(t, db, "user_1")
	path := "/api/v1/admin/inspections/" + itoa(inspection.ID)

	w, env := doRequest(t, router, http.MethodPut, path, map[string]any{"remarks": "no admin id"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	w, env = doRequest(t, router, http.MethodPut, path, map[string]any{"admin_user_id": "admin_1", "defective_items": map[string]any{"lights": 1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	w, env = doRequest(t, router, http.MethodPut, "/api/v1/admin/inspections/999", map[string]any{"admin_user_id": "admin_1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "INSPECTION_NOT_FOUND", env.Error.Code)

	w, env = doRequest(t, router, http.MethodPut, "/api/v1/admin/inspections/0", map[string]any{"admin_user_id": "admin_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)
}

func TestDeleteInspectionAsAdmin(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter("", "")
	createUser(t, db, "admin_1", "a@example.com", models.RoleAdmin)
	inspection := createInspection(t, db, "user_1")

	w, _ := doRequest(t, router, http.MethodDelete, "/api/v1/admin/inspections/"+itoa(inspection.ID)+"?admin_user_id=admin_1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Inspection{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetStatsAndDefectiveItems(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter("", "")
	createUser(t, db, "admin_1", "a@example.com", models.RoleAdmin)
	createInspection(t, db, "user_1")
	createInspection(t, db, "user_1")

	w, env := doRequest(t, router, http.MethodGet, "/api/v1/admin/stats/admin_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeData[services.Summary](t, env)
	assert.Equal(t, int64(2), summary.TotalInspections)
	assert.Equal(t, int64(1), summary.AdminUsers)
	assert.Equal(t, int64(2), summary.InspectionsWithDefects)

	w, env = doRequest(t, router, http.MethodGet, "/api/v1/admin/defective-items-stats/admin_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decodeData[checklist.Report](t, env)
	require.Len(t, report.Items, 1)
	assert.Equal(t, checklist.Count{ItemKey: "lights", Count: 2, Type: checklist.CategoryCar, Label: "Lights"}, report.Items[0])
}

func TestGetUsers(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter("", "")
	createUser(t, db, "admin_1", "a@example.com", models.RoleAdmin)
	createUser(t, db, "user_1", "u@example.com", models.RoleUser)
	createInspection(t, db, "user_1")

	w, env := doRequest(t, router, http.MethodGet, "/api/v1/admin/users/admin_1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	users := decodeData[[]map[string]any](t, env)
	require.Len(t, users, 2)
	counts := map[string]float64{}
	for _, u := range users {
		counts[u["id"].(string)] = u["inspection_count"].(float64)
	}
	assert.Equal(t, float64(1), counts["user_1"])
	assert.Equal(t, float64(0), counts["admin_1"])
}

func TestUpdateUserRole(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter("", "")
	createUser(t, db, "admin_1", "a@example.com", models.RoleAdmin)
	createUser(t, db, "user_1", "u@example.com", models.RoleUser)

	tests := []struct {
		name       string
		target     string
		body       map[string]any
		wantStatus int
		wantCode   string
	}{
		{"promote", "user_1", map[string]any{"admin_user_id": "admin_1", "role": "admin"}, http.StatusOK, ""},
		{"self demotion", "admin_1", map[string]any{"admin_user_id": "admin_1", "role": "user"}, http.StatusBadRequest, "SELF_DEMOTION"},
		{"self promotion is a no-op", "admin_1", map[string]any{"admin_user_id": "admin_1", "role": "admin"}, http.StatusOK, ""},
		{"invalid role", "user_1", map[string]any{"admin_user_id": "admin_1", "role": "owner"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown target", "ghost", map[string]any{"admin_user_id": "admin_1", "role": "admin"}, http.StatusNotFound, "USER_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doRequest(t, router, http.MethodPut, "/api/v1/admin/users/"+tt.target+"/role", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, env.Error.Code)
			}
		})
	}

	var promoted models.User
	require.NoError(t, db.First(&promoted, "id = ?", "user_1").Error)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	var acting models.User
	require.NoError(t, db.First(&acting, "id = ?", "admin_1").Error)
	assert.Equal(t, models.RoleAdmin, acting.Role)
}

func TestPromoteAdmin(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter("", "")

	hash, err := bcrypt.GenerateFromPassword([]byte("first-admin"), bcrypt.MinCost)
	require.NoError(t, err)

	previous := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(previous) })

	config.SetConfig(&config.Config{})
	w, env := doRequest(t, router, http.MethodPost, "/api/v1/admin/promote-admin", map[string]any{"user_id": "user_1", "secret": "first-admin"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "BOOTSTRAP_DISABLED", env.Error.Code)

	config.SetConfig(&config.Config{AdminSecretHash: string(hash)})
	w, env = doRequest(t, router, http.MethodPost, "/api/v1/admin/promote-admin", map[string]any{"user_id": "user_1", "secret": "wrong"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "INVALID_SECRET", env.Error.Code)

	w, env = doRequest(t, router, http.MethodPost, "/api/v1/admin/promote-admin", map[string]any{"user_id": "user_1", "email": "boss@example.com", "secret": "first-admin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decodeData[models.User](t, env)
	assert.Equal(t, models.RoleAdmin, user.Role)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", "user_1").Error)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.Equal(t, "boss@example.com", stored.Email)
}
