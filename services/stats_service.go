package services

import (
	"context"
	"fmt"
	"time"

	"github.com/roadcheck/inspection-api/checklist"
	"github.com/roadcheck/inspection-api/models"
	"gorm.io/gorm"
)

// Summary holds the admin dashboard counters.
type Summary struct {
	TotalInspections        int64 `json:"total_inspections"`
	TotalUsers              int64 `json:"total_users"`
	AdminUsers              int64 `json:"admin_users"`
	SatisfactoryInspections int64 `json:"satisfactory_inspections"`
	InspectionsWithDefects  int64 `json:"inspections_with_defects"`
	DefectsCorrected        int64 `json:"defects_corrected"`
	InspectionsLast7Days    int64 `json:"inspections_last_7_days"`
}

// StatsService computes admin statistics
type StatsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStatsService creates a new stats service instance
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db, now: time.Now}
}

// Summary counts inspections and users.
func (s *StatsService) Summary(ctx context.Context) (*Summary, error) {
	db := s.db.WithContext(ctx)
	var out Summary

	counts := []struct {
		name  string
		dst   *int64
		query *gorm.DB
	}{
		{"total_inspections", &out.TotalInspections, db.Model(&models.Inspection{})},
		{"total_users", &out.TotalUsers, db.Model(&models.User{})},
		{"admin_users", &out.AdminUsers, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin)},
		{"satisfactory_inspections", &out.SatisfactoryInspections, db.Model(&models.Inspection{}).Where("condition_satisfactory = ?", true)},
		{"inspections_with_defects", &out.InspectionsWithDefects, db.Model(&models.Inspection{}).Where("defects_need_correction = ?", true)},
		{"defects_corrected", &out.DefectsCorrected, db.Model(&models.Inspection{}).Where("defects_corrected = ?", true)},
		{"inspections_last_7_days", &out.InspectionsLast7Days, db.Model(&models.Inspection{}).Where("created_at >= ?", s.now().AddDate(0, 0, -7))},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", c.name, err)
		}
	}
	return &out, nil
}

// DefectReport aggregates defective items over every stored inspection. The
// raw column text is read so that malformed entries can be skipped and counted.
func (s *StatsService) DefectReport(ctx context.Context) (checklist.Report, error) {
	rows, err := s.db.WithContext(ctx).
		Model(&models.Inspection{}).
		Select("defective_items", "truck_trailer_items").
		Order("id ASC").
		Rows()
	if err != nil {
		return checklist.Report{}, fmt.Errorf("query checklists: %w", err)
	}
	defer rows.Close()

	var data []checklist.Row
	for rows.Next() {
		var defective, trailer []byte
		if err := rows.Scan(&defective, &trailer); err != nil {
			return checklist.Report{}, fmt.Errorf("scan checklists: %w", err)
		}
		data = append(data, checklist.Row{DefectiveItems: defective, TruckTrailerItems: trailer})
	}
	if err := rows.Err(); err != nil {
		return checklist.Report{}, fmt.Errorf("read checklists: %w", err)
	}

	return checklist.Aggregate(data, checklist.DefaultCatalog()), nil
}
