package testhelpers

import (
	"context"
	"fmt"

	"github.com/Dgzikaa/zykor-sub003/internal/models"

	g "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func CleanupDB(db *gorm.DB) {
	var tables []string

	err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error
	g.Expect(err).NotTo(g.HaveOccurred())

	if len(tables) == 0 {
		return
	}

	for _, table := range tables {
		if table == "spatial_ref_sys" || table == "schema_migrations" {
			continue
		}

		query := fmt.Sprintf("TRUNCATE TABLE \"%s\" RESTART IDENTITY CASCADE", table)
		err := db.Exec(query).Error
		g.Expect(err).NotTo(g.HaveOccurred(), "Failed to truncate table: "+table)
	}
}

// CreateBusinessUnit inserts a unit with usable vendor credentials unless
// the caller cleared them on purpose.
func CreateBusinessUnit(db *gorm.DB, ctx context.Context, unit *models.BusinessUnit) *models.BusinessUnit {
	if unit.Name == "" {
		unit.Name = fmt.Sprintf("Bar %d", unit.VendorUnitID)
	}

	result := gorm.WithResult()
	g.Expect(gorm.G[models.BusinessUnit](db, result).Create(ctx, unit)).To(g.Succeed())
	g.Expect(result.RowsAffected).To(g.Equal(int64(1)))
	return unit
}

// CreateRawData inserts a staged row directly, bypassing the store.
func CreateRawData(db *gorm.DB, ctx context.Context, row *models.RawData) *models.RawData {
	result := gorm.WithResult()
	g.Expect(gorm.G[models.RawData](db, result).Create(ctx, row)).To(g.Succeed())
	g.Expect(result.RowsAffected).To(g.Equal(int64(1)))
	return row
}
