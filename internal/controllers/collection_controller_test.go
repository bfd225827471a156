package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/Dgzikaa/zykor-sub003/internal/config"
	"github.com/Dgzikaa/zykor-sub003/internal/db"
	"github.com/Dgzikaa/zykor-sub003/internal/models"
	"github.com/Dgzikaa/zykor-sub003/internal/routes"
	"github.com/Dgzikaa/zykor-sub003/internal/testhelpers"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("CollectionController", func() {
	var (
		dbConn *gorm.DB
		router *gin.Engine
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)

		cfg, err := config.LoadConfig()
		Expect(err).NotTo(HaveOccurred())

		dbConn, err = db.InitDB(cfg.DatabaseURL)
		if err != nil {
			Skip("database not available: " + err.Error())
		}

		Expect(db.Migrate(dbConn)).To(Succeed())
		testhelpers.CleanupDB(dbConn)

		// collaborators stay unconfigured, aborted runs never reach them
		cfg.WebhookURL = ""
		cfg.ProcessorURL = ""
		cfg.AnalyzerURL = ""

		router = routes.SetupRouter(dbConn, cfg)
	})

	Describe("POST /api/v1/collect", func() {
		It("returns 400 when fields are missing", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/collect", strings.NewReader(`{"report_date":"2024-10-15"}`))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusBadRequest))

			var body map[string]interface{}
			Expect(json.Unmarshal(resp.Body.Bytes(), &body)).To(Succeed())
			Expect(body["success"]).To(BeFalse())
		})

		It("returns 400 on a malformed date", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/collect", strings.NewReader(`{"business_unit_id":3,"report_date":"15/10/2024"}`))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 when the unit has no vendor account", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/collect", strings.NewReader(`{"business_unit_id":9999,"report_date":"2024-10-15"}`))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusInternalServerError))

			var body map[string]interface{}
			Expect(json.Unmarshal(resp.Body.Bytes(), &body)).To(Succeed())
			Expect(body["success"]).To(BeFalse())
			Expect(body["error"]).To(ContainSubstring("9999"))
		})
	})

	Describe("GET /api/v1/staging/:business_unit_id", func() {
		BeforeEach(func() {
			ctx := context.Background()

			testhelpers.CreateRawData(dbConn, ctx, &models.RawData{
				BusinessUnitID: 3,
				ReportType:     "analitico",
				ReportDate:     "2024-10-15",
				Payload:        json.RawMessage(`{"list":[{"vd":1}]}`),
				RecordCount:    1,
			})

			testhelpers.CreateRawData(dbConn, ctx, &models.RawData{
				BusinessUnitID: 3,
				ReportType:     "tempo",
				ReportDate:     "2024-10-15",
				Payload:        json.RawMessage(`{"list":[]}`),
				RecordCount:    0,
			})

			testhelpers.CreateRawData(dbConn, ctx, &models.RawData{
				BusinessUnitID: 4,
				ReportType:     "analitico",
				ReportDate:     "2024-10-15",
				Payload:        json.RawMessage(`{"list":[]}`),
				RecordCount:    0,
			})
		})

		It("lists the unit's staged rows for the date", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/staging/3?date=2024-10-15", nil)
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusOK))

			var body struct {
				Staged []models.RawData `json:"staged"`
			}
			Expect(json.Unmarshal(resp.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Staged).To(HaveLen(2))
			Expect(body.Staged[0].ReportType).To(Equal("analitico"))
		})

		It("requires a date", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/staging/3", nil)
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns one staged payload untouched", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/staging/3/analitico?date=2024-10-15", nil)
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusOK))
			Expect(resp.Body.String()).To(MatchJSON(`{"list":[{"vd":1}]}`))
		})

		It("returns 404 for a payload that was never staged", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/staging/3/pagamentos?date=2024-10-15", nil)
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			Expect(resp.Code).To(Equal(http.StatusNotFound))
		})
	})
})
