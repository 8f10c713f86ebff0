package services

import (
	"context"
	"testing"

	"github.com/roadcheck/inspection-api/models"
	"github.com/roadcheck/inspection-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	return testutil.NewTestDB(t)
}

func createUser(t *testing.T, db *gorm.DB, id, email, role string) *models.User {
	t.Helper()
	user := &models.User{ID: id, Email: email, Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createInspection(t *testing.T, db *gorm.DB, userID string) *models.Inspection {
	t.Helper()
	inspection := &models.Inspection{
		UserID:                userID,
		Location:              "Depot 4",
		Date:                  "2026-03-02",
		Time:                  "07:45",
		Vehicle:               "Truck 12",
		SpeedometerReading:    "120455",
		DefectiveItems:        models.Checklist{"brakes_service": true, "horn": false},
		TruckTrailerItems:     models.Checklist{"tires": true},
		TrailerNumber:         "TR-7",
		Remarks:               "left mirror loose",
		ConditionSatisfactory: false,
		DriverSignature:       "data:image/png;base64,AAAA",
		DefectsNeedCorrection: true,
	}
	require.NoError(t, db.Create(inspection).Error)
	return inspection
}

// useMockStorage installs a mock storage service for the duration of the test.
func useMockStorage(t *testing.T) *MockStorageService {
	t.Helper()
	mock := NewMockStorageService()
	mock.SetAsMockForTesting()
	t.Cleanup(func() { SetStorageService(nil) })
	return mock
}

func ptr[T any](v T) *T {
	return &v
}

var bg = context.Background()
