package models

import "time"

// Inspection is one driver vehicle inspection report
type Inspection struct {
	ID                    uint              `gorm:"primaryKey" json:"id"`
	UserID                string            `gorm:"not null;index;size:191" json:"user_id"` // semantic reference to users.id
	Location              string            `gorm:"not null" json:"location"`
	Date                  string            `gorm:"not null" json:"date"` // as entered on the form
	Time                  string            `gorm:"not null" json:"time"`
	Vehicle               string            `gorm:"not null" json:"vehicle"`
	SpeedometerReading    string            `json:"speedometer_reading"`
	DefectiveItems        Checklist         `json:"defective_items"`
	TruckTrailerItems     Checklist         `json:"truck_trailer_items"`
	TrailerNumber         string            `json:"trailer_number"`
	Remarks               string            `gorm:"type:text" json:"remarks"`
	ConditionSatisfactory bool              `gorm:"not null;default:false" json:"condition_satisfactory"`
	DriverSignature       string            `gorm:"type:text" json:"driver_signature"`
	DefectsCorrected      bool              `gorm:"not null;default:false" json:"defects_corrected"`
	DefectsNeedCorrection bool              `gorm:"not null;default:false" json:"defects_need_correction"`
	MechanicSignature     string            `gorm:"type:text" json:"mechanic_signature"` // admins only
	UserEmail             string            `gorm:"-" json:"user_email,omitempty"`       // filled for admin listings
	Images                []InspectionImage `gorm:"foreignKey:InspectionID" json:"images,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// TableName specifies the table name for the Inspection model
func (Inspection) TableName() string {
	return "vehicle_inspections"
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&User{}, &Inspection{}, &InspectionImage{}}
}
