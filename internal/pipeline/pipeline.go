package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Dgzikaa/zykor-sub003/internal/config"
	"github.com/Dgzikaa/zykor-sub003/internal/downstream"
	"github.com/Dgzikaa/zykor-sub003/internal/models"
	"github.com/Dgzikaa/zykor-sub003/internal/notify"
	"github.com/Dgzikaa/zykor-sub003/internal/pkg/contahub"
	"github.com/Dgzikaa/zykor-sub003/internal/staging"

	"gorm.io/gorm"
)

// Pipeline drives one collection run: authenticate against the vendor, pull
// every report type for one (business unit, date) pair, stage the raw
// payloads, notify, and hand off to the downstream services.
type Pipeline struct {
	DB        *gorm.DB
	Vendor    *contahub.Client
	Store     *staging.Store
	Processor *downstream.ProcessorClient
	Analyzer  *downstream.AnalyzerClient
	Notifier  *notify.Webhook
	Pacer     contahub.Pacer
}

// New wires a pipeline from config. The pacer defaults to the vendor's
// tolerated request rate.
func New(db *gorm.DB, cfg *config.Config) *Pipeline {
	return &Pipeline{
		DB:        db,
		Vendor:    contahub.New(cfg.ContahubBaseURL),
		Store:     staging.New(db),
		Processor: downstream.NewProcessorClient(cfg.ProcessorURL),
		Analyzer:  downstream.NewAnalyzerClient(cfg.AnalyzerURL),
		Notifier:  notify.New(cfg.WebhookURL),
		Pacer:     contahub.DefaultPacer,
	}
}

// TypeOutcome is one successfully collected and staged report type.
type TypeOutcome struct {
	ReportType  string `json:"report_type"`
	RecordCount int    `json:"record_count"`
	StorageID   uint   `json:"storage_id"`
}

// TypeError is one failed step, recorded and carried on past.
type TypeError struct {
	ReportType string `json:"report_type"`
	Message    string `json:"error"`
}

// RunResult is the full outcome of one run. CollectedCount and ErrorCount
// are frozen when collection ends, before the downstream calls; downstream
// failures are appended to Errors but never change the counts, so
// CollectedCount+ErrorCount always equals the number of report types
// attempted.
type RunResult struct {
	BusinessUnitID int
	ReportDate     string
	Collected      []TypeOutcome
	Processed      []string
	Errors         []TypeError
	CollectedCount int
	ErrorCount     int
	TotalRecords   int
	IncludesVendas bool
}

// Run executes one collection run. Everything after a successful login is
// collect-and-continue: only validation, configuration and authentication
// failures abort the run.
func (p *Pipeline) Run(ctx context.Context, businessUnitID int, reportDate string) (*RunResult, error) {
	if businessUnitID <= 0 || reportDate == "" {
		return nil, &ValidationError{Msg: "business_unit_id and report_date are required"}
	}
	if _, err := time.Parse("2006-01-02", reportDate); err != nil {
		return nil, &ValidationError{Msg: "report_date must be YYYY-MM-DD"}
	}

	unit, err := gorm.G[models.BusinessUnit](p.DB).Where("id = ?", businessUnitID).First(ctx)
	if err != nil {
		p.Notifier.Send(ctx, "Coleta ContaHub", fmt.Sprintf("unit %d %s: no vendor account configured", businessUnitID, reportDate))
		return nil, &ConfigurationError{Msg: fmt.Sprintf("business unit %d not found", businessUnitID)}
	}
	if unit.VendorUnitID == 0 || unit.VendorEmail == "" || unit.VendorPassword == "" {
		p.Notifier.Send(ctx, "Coleta ContaHub", fmt.Sprintf("unit %d %s: vendor credentials incomplete", businessUnitID, reportDate))
		return nil, &ConfigurationError{Msg: fmt.Sprintf("business unit %d has incomplete vendor credentials", businessUnitID)}
	}

	session, err := p.Vendor.Login(ctx, unit.VendorEmail, unit.VendorPassword)
	if err != nil {
		p.Notifier.Send(ctx, "Coleta ContaHub", fmt.Sprintf("unit %d %s: vendor login failed: %v", businessUnitID, reportDate, err))
		return nil, &AuthenticationError{Err: err}
	}

	p.Notifier.Send(ctx, "Coleta ContaHub", fmt.Sprintf("unit %d %s: collection started", businessUnitID, reportDate))

	result := &RunResult{
		BusinessUnitID: businessUnitID,
		ReportDate:     reportDate,
		Collected:      make([]TypeOutcome, 0),
		Processed:      make([]string, 0),
		Errors:         make([]TypeError, 0),
	}

	// Shift ids are resolved once and shared with the vendas step. The
	// vendor lookup wins; previously staged sales are the fallback.
	shifts, err := p.Vendor.ResolveShifts(ctx, session, unit.VendorUnitID, reportDate)
	if err != nil {
		log.Printf("shift lookup failed for unit %d on %s: %v", businessUnitID, reportDate, err)
	}
	if len(shifts) == 0 {
		shifts = p.Store.KnownShiftIDs(ctx, businessUnitID, reportDate)
	}

	for _, reportType := range contahub.ReportOrder {
		p.collectAndStore(ctx, result, reportType, func() ([]json.RawMessage, error) {
			return p.Vendor.FetchReport(ctx, session, reportType, reportDate, unit.VendorUnitID, p.Pacer)
		})
	}

	if len(shifts) > 0 {
		result.IncludesVendas = true
		p.collectAndStore(ctx, result, "vendas", func() ([]json.RawMessage, error) {
			return p.Vendor.FetchVendas(ctx, session, unit.VendorUnitID, shifts, p.Pacer), nil
		})
	} else {
		log.Printf("no shifts found for unit %d on %s, skipping vendas", businessUnitID, reportDate)
	}

	// Summary counts are frozen here; downstream errors recorded below do
	// not touch them.
	result.CollectedCount = len(result.Collected)
	result.ErrorCount = len(result.Errors)

	p.Notifier.Send(ctx, "Coleta ContaHub", fmt.Sprintf(
		"unit %d %s: collected %d report types (%d records), %d errors",
		businessUnitID, reportDate, result.CollectedCount, result.TotalRecords, result.ErrorCount))

	p.delegate(ctx, result)

	return result, nil
}

// collectAndStore runs one report type end to end and folds the outcome
// into the result. Errors from fetching or staging are recorded against the
// type, never propagated.
func (p *Pipeline) collectAndStore(ctx context.Context, result *RunResult, reportType string, fetch func() ([]json.RawMessage, error)) {
	records, err := fetch()
	if err != nil {
		log.Printf("collection of %s failed for unit %d on %s: %v", reportType, result.BusinessUnitID, result.ReportDate, err)
		result.Errors = append(result.Errors, TypeError{ReportType: reportType, Message: err.Error()})
		return
	}

	payload, err := json.Marshal(struct {
		List []json.RawMessage `json:"list"`
	}{List: records})
	if err != nil {
		result.Errors = append(result.Errors, TypeError{ReportType: reportType, Message: err.Error()})
		return
	}

	row, err := p.Store.Upsert(ctx, result.BusinessUnitID, reportType, result.ReportDate, payload)
	if err != nil {
		log.Printf("staging of %s failed for unit %d on %s: %v", reportType, result.BusinessUnitID, result.ReportDate, err)
		result.Errors = append(result.Errors, TypeError{ReportType: reportType, Message: err.Error()})
		return
	}

	result.Collected = append(result.Collected, TypeOutcome{
		ReportType:  reportType,
		RecordCount: row.RecordCount,
		StorageID:   row.ID,
	})
	result.TotalRecords += row.RecordCount

	log.Printf("staged %s for unit %d on %s: %d records (row %d)", reportType, result.BusinessUnitID, result.ReportDate, row.RecordCount, row.ID)
}

// delegate hands the run off to the processor and, on success, the
// analyzer. Both are best effort: failures land in the error list with
// their service name, nothing escalates.
func (p *Pipeline) delegate(ctx context.Context, result *RunResult) {
	if !p.Processor.Configured() {
		log.Printf("processor endpoint not configured, skipping delegation")
		return
	}

	collectedTypes := make([]string, 0, len(result.Collected))
	for _, outcome := range result.Collected {
		collectedTypes = append(collectedTypes, outcome.ReportType)
	}

	processed, err := p.Processor.Process(ctx, downstream.ProcessRequest{
		ReportDate:     result.ReportDate,
		BusinessUnitID: result.BusinessUnitID,
		ReportTypes:    collectedTypes,
	})
	if err != nil {
		log.Printf("processor delegation failed for unit %d on %s: %v", result.BusinessUnitID, result.ReportDate, err)
		result.Errors = append(result.Errors, TypeError{ReportType: "processor", Message: err.Error()})
		return
	}
	result.Processed = processed.Details.Processed

	if !p.Analyzer.Configured() {
		return
	}

	_, err = p.Analyzer.Analyze(ctx, downstream.AnalyzeRequest{
		BusinessUnitID: result.BusinessUnitID,
		ScanData: map[string]interface{}{
			"report_date":             result.ReportDate,
			"collected_count":         result.CollectedCount,
			"error_count":             result.ErrorCount,
			"total_records_collected": result.TotalRecords,
			"processed":               result.Processed,
		},
		Context: "daily vendor collection",
	})
	if err != nil {
		log.Printf("analyzer delegation failed for unit %d on %s: %v", result.BusinessUnitID, result.ReportDate, err)
		result.Errors = append(result.Errors, TypeError{ReportType: "analyzer", Message: err.Error()})
	}
}
