package staging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dgzikaa/zykor-sub003/internal/models"

	"github.com/tidwall/gjson"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store stages raw vendor payloads. Payloads are stored exactly as the
// vendor returned them (or as merged partitions), never reshaped.
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// CountRecords derives an observability-only record count from an opaque
// payload: the length of its "list", else the length of the root array,
// else 1.
func CountRecords(payload json.RawMessage) int {
	parsed := gjson.ParseBytes(payload)

	if list := parsed.Get("list"); list.IsArray() {
		return len(list.Array())
	}

	if parsed.IsArray() {
		return len(parsed.Array())
	}

	return 1
}

// Upsert writes one staged payload. Writing the same (unit, type, date)
// again replaces the payload and resets processed, superseding whatever the
// downstream processor did with the previous version.
func (s *Store) Upsert(ctx context.Context, businessUnitID int, reportType, reportDate string, payload json.RawMessage) (*models.RawData, error) {
	row := models.RawData{
		BusinessUnitID: businessUnitID,
		ReportType:     reportType,
		ReportDate:     reportDate,
		Payload:        payload,
		RecordCount:    CountRecords(payload),
		Processed:      false,
	}

	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "business_unit_id"}, {Name: "report_type"}, {Name: "report_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"payload", "record_count", "processed", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to stage %s for unit %d on %s: %w", reportType, businessUnitID, reportDate, err)
	}

	return &row, nil
}

// Get returns one staged row including its payload.
func (s *Store) Get(ctx context.Context, businessUnitID int, reportType, reportDate string) (*models.RawData, error) {
	row, err := gorm.G[models.RawData](s.DB).
		Where("business_unit_id = ? AND report_type = ? AND report_date = ?", businessUnitID, reportType, reportDate).
		First(ctx)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListForDate returns the staged rows of a unit for one date, payloads
// included only in the row structs the caller asks for.
func (s *Store) ListForDate(ctx context.Context, businessUnitID int, reportDate string) ([]models.RawData, error) {
	return gorm.G[models.RawData](s.DB).
		Where("business_unit_id = ? AND report_date = ?", businessUnitID, reportDate).
		Order("report_type ASC").
		Find(ctx)
}

// KnownShiftIDs recovers shift ids from the previously staged vendas
// payload for the same day. Used when the vendor's shift lookup comes back
// empty.
func (s *Store) KnownShiftIDs(ctx context.Context, businessUnitID int, reportDate string) []int {
	row, err := s.Get(ctx, businessUnitID, "vendas", reportDate)
	if err != nil {
		return nil
	}

	seen := map[int]bool{}
	var trns []int
	for _, record := range gjson.GetBytes(row.Payload, "list").Array() {
		trn := int(record.Get("trn").Int())
		if trn == 0 || seen[trn] {
			continue
		}
		seen[trn] = true
		trns = append(trns, trn)
	}

	return trns
}
