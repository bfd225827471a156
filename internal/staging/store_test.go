package staging_test

import (
	"context"
	"encoding/json"

	"github.com/Dgzikaa/zykor-sub003/internal/config"
	"github.com/Dgzikaa/zykor-sub003/internal/db"
	"github.com/Dgzikaa/zykor-sub003/internal/models"
	"github.com/Dgzikaa/zykor-sub003/internal/staging"
	"github.com/Dgzikaa/zykor-sub003/internal/testhelpers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("CountRecords", func() {
	It("counts the list entries of an envelope", func() {
		Expect(staging.CountRecords(json.RawMessage(`{"list":[1,2,3]}`))).To(Equal(3))
	})

	It("counts the entries of a bare array", func() {
		Expect(staging.CountRecords(json.RawMessage(`[{"a":1},{"a":2}]`))).To(Equal(2))
	})

	It("counts an empty list as zero", func() {
		Expect(staging.CountRecords(json.RawMessage(`{"list":[]}`))).To(Equal(0))
	})

	It("falls back to one for anything else", func() {
		Expect(staging.CountRecords(json.RawMessage(`{"total":42}`))).To(Equal(1))
	})
})

var _ = Describe("Store", func() {
	var (
		dbConn *gorm.DB
		store  *staging.Store
		ctx    context.Context
	)

	BeforeEach(func() {
		cfg, err := config.LoadConfig()
		Expect(err).NotTo(HaveOccurred())

		dbConn, err = db.InitDB(cfg.DatabaseURL)
		if err != nil {
			Skip("database not available: " + err.Error())
		}

		Expect(db.Migrate(dbConn)).To(Succeed())
		testhelpers.CleanupDB(dbConn)

		store = staging.New(dbConn)
		ctx = context.Background()
	})

	Describe("Upsert", func() {
		It("replaces the payload and resets processed on re-collection", func() {
			first, err := store.Upsert(ctx, 3, "analitico", "2024-10-15", json.RawMessage(`{"list":[{"vd":1}]}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(first.RecordCount).To(Equal(1))

			// the downstream processor marks the row as handled
			_, err = gorm.G[models.RawData](dbConn).
				Where("id = ?", first.ID).
				Update(ctx, "processed", true)
			Expect(err).NotTo(HaveOccurred())

			second, err := store.Upsert(ctx, 3, "analitico", "2024-10-15", json.RawMessage(`{"list":[{"vd":1},{"vd":2}]}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(second.RecordCount).To(Equal(2))

			count, err := gorm.G[models.RawData](dbConn).Count(ctx, "id")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))

			row, err := store.Get(ctx, 3, "analitico", "2024-10-15")
			Expect(err).NotTo(HaveOccurred())
			Expect(row.Payload).To(MatchJSON(`{"list":[{"vd":1},{"vd":2}]}`))
			Expect(row.Processed).To(BeFalse())
		})

		It("keeps records of different keys apart", func() {
			_, err := store.Upsert(ctx, 3, "analitico", "2024-10-15", json.RawMessage(`{"list":[]}`))
			Expect(err).NotTo(HaveOccurred())

			_, err = store.Upsert(ctx, 3, "tempo", "2024-10-15", json.RawMessage(`{"list":[]}`))
			Expect(err).NotTo(HaveOccurred())

			_, err = store.Upsert(ctx, 4, "analitico", "2024-10-15", json.RawMessage(`{"list":[]}`))
			Expect(err).NotTo(HaveOccurred())

			count, err := gorm.G[models.RawData](dbConn).Count(ctx, "id")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(3)))
		})
	})

	Describe("ListForDate", func() {
		It("returns the unit's rows for the date in type order", func() {
			_, err := store.Upsert(ctx, 3, "tempo", "2024-10-15", json.RawMessage(`{"list":[]}`))
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Upsert(ctx, 3, "analitico", "2024-10-15", json.RawMessage(`{"list":[]}`))
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Upsert(ctx, 3, "analitico", "2024-10-16", json.RawMessage(`{"list":[]}`))
			Expect(err).NotTo(HaveOccurred())

			rows, err := store.ListForDate(ctx, 3, "2024-10-15")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].ReportType).To(Equal("analitico"))
			Expect(rows[1].ReportType).To(Equal("tempo"))
		})
	})

	Describe("KnownShiftIDs", func() {
		It("recovers distinct shift ids from the staged vendas payload", func() {
			testhelpers.CreateRawData(dbConn, ctx, &models.RawData{
				BusinessUnitID: 3,
				ReportType:     "vendas",
				ReportDate:     "2024-10-15",
				Payload:        json.RawMessage(`{"list":[{"trn":12},{"trn":12},{"trn":14},{"itm":"no shift"}]}`),
				RecordCount:    4,
			})

			Expect(store.KnownShiftIDs(ctx, 3, "2024-10-15")).To(Equal([]int{12, 14}))
		})

		It("yields nothing when no vendas payload was staged", func() {
			Expect(store.KnownShiftIDs(ctx, 3, "2024-10-15")).To(BeEmpty())
		})
	})
})
