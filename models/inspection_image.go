package models

import "time"

// InspectionImage references a photo hosted in object storage. Image bytes
// never pass through the API.
type InspectionImage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	InspectionID uint      `gorm:"not null;index" json:"inspection_id"`
	URL          string    `gorm:"type:text" json:"url"`
	PublicID     string    `gorm:"index" json:"public_id"` // object key in the bucket
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Format       string    `json:"format"`
	Bytes        int64     `json:"bytes"`
	IsPrivate    bool      `gorm:"not null;default:false" json:"is_private"`
	ViewURL      string    `gorm:"-" json:"view_url,omitempty"` // computed, presigned URL for private images
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for the InspectionImage model
func (InspectionImage) TableName() string {
	return "inspection_images"
}
