package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/roadcheck/inspection-api/config"
	"github.com/roadcheck/inspection-api/middleware"
	"github.com/roadcheck/inspection-api/models"
	"github.com/roadcheck/inspection-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// setupTestDB installs a fresh in-memory database as the global DB.
func setupTestDB(t *testing.T) *gorm.DB {
	db := testutil.NewTestDB(t)
	previous := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() { config.SetDB(previous) })
	return db
}

// mockAuthMiddleware sets up the context the way EnsureValidToken does for a verified token.
func mockAuthMiddleware(userID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetAuthenticatedUser(c, userID, email)
		c.Next()
	}
}

// setupTestRouter registers the API routes. A non-empty authUserID simulates
// a verified bearer token for that user.
func setupTestRouter(authUserID, authEmail string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1")
	if authUserID != "" {
		v1.Use(mockAuthMiddleware(authUserID, authEmail))
	}

	v1.POST("/inspections", CreateInspection)
	v1.GET("/inspections/:id", GetUserInspections)
	v1.GET("/inspections/single/:id", GetInspection)
	v1.DELETE("/inspections/:id", DeleteInspection)
	v1.POST("/inspections/:id/images/upload-url", CreateImageUploadURL)
	v1.POST("/inspections/:id/images", RegisterImage)
	v1.GET("/inspections/:id/images", ListImages)

	v1.GET("/admin/check/:userId", CheckAdmin)
	v1.GET("/admin/inspections/:userId", GetAllInspections)
	v1.PUT("/admin/inspections/:id", UpdateInspection)
	v1.DELETE("/admin/inspections/:id", DeleteInspectionAsAdmin)
	v1.GET("/admin/stats/:userId", GetStats)
	v1.GET("/admin/defective-items-stats/:userId", GetDefectiveItemsStats)
	v1.GET("/admin/users/:userId", GetUsers)
	v1.PUT("/admin/users/:userId/role", UpdateUserRole)
	v1.POST("/admin/promote-admin", PromoteAdmin)

	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

func createUser(t *testing.T, db *gorm.DB, id, email, role string) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{ID: id, Email: email, Role: role}).Error)
}

func createInspection(t *testing.T, db *gorm.DB, userID string) *models.Inspection {
	t.Helper()
	inspection := &models.Inspection{
		UserID:                userID,
		Location:              "North yard",
		Date:                  "2026-02-14",
		Time:                  "05:30",
		Vehicle:               "Tractor 9",
		DefectiveItems:        models.Checklist{"lights": true},
		TruckTrailerItems:     models.Checklist{},
		Remarks:               "original remarks",
		DefectsNeedCorrection: true,
	}
	require.NoError(t, db.Create(inspection).Error)
	return inspection
}

func validInspectionBody(userID string) map[string]any {
	return map[string]any{
		"user_id":                 userID,
		"location":                "Depot",
		"date":                    "2026-04-01",
		"time":                    "08:00",
		"vehicle":                 "Truck 4",
		"speedometer_reading":     "88012",
		"defective_items":         map[string]any{"brakes_service": true, "horn": false},
		"truck_trailer_items":     map[string]any{"tires": true},
		"condition_satisfactory":  false,
		"defects_need_correction": true,
		"driver_signature":        "data:image/png;base64,AAAA",
	}
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
