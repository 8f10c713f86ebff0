package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/roadcheck/inspection-api/checklist"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Checklist maps a checklist item key to whether it was reported defective.
// It is stored as JSON; whatever shape the column holds (object, string
// encoded object, NULL, garbage) is normalized here on scan.
type Checklist map[string]bool

// Scan implements sql.Scanner. An unreadable stored value becomes an empty
// checklist instead of failing the query.
func (c *Checklist) Scan(value any) error {
	items, err := checklist.DecodeValue(value)
	if err != nil {
		*c = Checklist{}
		return nil
	}

	out := make(Checklist, len(items))
	for key, v := range items {
		out[key] = checklist.IsChecked(v)
	}
	*c = out
	return nil
}

// Value implements driver.Valuer.
func (c Checklist) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]bool(c))
	if err != nil {
		return nil, fmt.Errorf("encode checklist: %w", err)
	}
	return string(b), nil
}

// MarshalJSON renders a nil checklist as an empty object.
func (c Checklist) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]bool(c))
}

// GormDataType implements schema.GormDataTypeInterface.
func (Checklist) GormDataType() string {
	return "json"
}

// GormDBDataType picks the column type per dialect.
func (Checklist) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "TEXT"
}
