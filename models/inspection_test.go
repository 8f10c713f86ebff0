package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.AutoMigrate(All()...), "Failed to migrate test database")
	return db
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "vehicle_inspections", Inspection{}.TableName())
	assert.Equal(t, "inspection_images", InspectionImage{}.TableName())
}

func TestChecklistScan(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Checklist
	}{
		{"json object bytes", []byte(`{"a":true,"b":false}`), Checklist{"a": true, "b": false}},
		{"json object string", `{"a":true}`, Checklist{"a": true}},
		{"string encoded object", `"{\"a\":true}"`, Checklist{"a": true}},
		{"legacy truthy encodings", `{"a":"true","b":1,"c":2,"d":"yes"}`, Checklist{"a": true, "b": true, "c": false, "d": false}},
		{"null", nil, Checklist{}},
		{"malformed", `{"a":`, Checklist{}},
		{"array", `[1,2]`, Checklist{}},
		{"unsupported type", 12, Checklist{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Checklist
			err := c.Scan(tt.value)
			assert.NoError(t, err, "Scan must never fail")
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestChecklistValue(t *testing.T) {
	v, err := Checklist{"b": false, "a": true}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"a":true,"b":false}`, v)

	v, err = Checklist(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestChecklistMarshalJSON(t *testing.T) {
	body, err := json.Marshal(struct {
		Items Checklist `json:"items"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":{}}`, string(body))
}

func TestChecklistRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	inspection := Inspection{
		UserID:         "user_1",
		Location:       "Yard 3",
		Date:           "2025-03-14",
		Time:           "07:45",
		Vehicle:        "Truck 12",
		DefectiveItems: Checklist{"a": true},
	}
	require.NoError(t, db.Create(&inspection).Error)

	var loaded Inspection
	require.NoError(t, db.First(&loaded, inspection.ID).Error)
	assert.Equal(t, Checklist{"a": true}, loaded.DefectiveItems)
	assert.Equal(t, Checklist{}, loaded.TruckTrailerItems)
}

func TestChecklistReadTolerance(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Exec(
		`INSERT INTO vehicle_inspections (user_id, location, date, time, vehicle, defective_items, truck_trailer_items, condition_satisfactory, defects_corrected, defects_need_correction)
		 VALUES (?, ?, ?, ?, ?, ?, ?, false, false, false)`,
		"user_1", "Depot", "2025-01-01", "06:00", "Van 2", `"{\"a\":true}"`, `{not json`,
	).Error)

	var loaded Inspection
	require.NoError(t, db.First(&loaded).Error)
	assert.Equal(t, Checklist{"a": true}, loaded.DefectiveItems, "string-encoded objects are unwrapped")
	assert.Equal(t, Checklist{}, loaded.TruckTrailerItems, "malformed JSON reads as no items")
}
