package contahub

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/tidwall/sjson"
)

// ReportQuery maps one report type onto the generic query endpoint.
type ReportQuery struct {
	QueryID     int
	ExtraParams string
	Partitioned bool // whether to fall back to per-location fetching
}

// ReportQueries is the fixed report table. cancelamentos never triggers the
// size ceiling and goes through a single direct call. vendas has no query
// id at all, it fans out over shifts (see FetchVendas).
var ReportQueries = map[string]ReportQuery{
	"analitico":     {QueryID: 77, ExtraParams: "produto=&grupo=&turno=&mesa=&tipovenda=", Partitioned: true},
	"tempo":         {QueryID: 81, ExtraParams: "produto=&grupo=", Partitioned: true},
	"pagamentos":    {QueryID: 7, ExtraParams: "meio=", Partitioned: true},
	"fatporhora":    {QueryID: 101, ExtraParams: "", Partitioned: true},
	"periodo":       {QueryID: 5, ExtraParams: "", Partitioned: true},
	"prodporhora":   {QueryID: 102, ExtraParams: "produto=&grupo=", Partitioned: true},
	"cancelamentos": {QueryID: 57, ExtraParams: "comanda=", Partitioned: false},
}

// ReportOrder is the fixed sequential collection order.
var ReportOrder = []string{
	"analitico",
	"tempo",
	"pagamentos",
	"fatporhora",
	"periodo",
	"prodporhora",
	"cancelamentos",
}

// FetchReport collects one fixed-table report for the date.
func (c *Client) FetchReport(ctx context.Context, session Session, reportType string, date string, vendorUnitID int, pacer Pacer) ([]json.RawMessage, error) {
	query, ok := ReportQueries[reportType]
	if !ok {
		return nil, &UnknownReportError{ReportType: reportType}
	}

	spec := QuerySpec{
		QueryID:      query.QueryID,
		Date:         date,
		VendorUnitID: vendorUnitID,
		ExtraParams:  query.ExtraParams,
	}

	if query.Partitioned {
		return c.FetchPartitioned(ctx, session, spec, pacer)
	}

	return c.ExecQuery(ctx, session, spec)
}

// UnknownReportError means the report type is not in the fixed table.
type UnknownReportError struct {
	ReportType string
}

func (e *UnknownReportError) Error() string {
	return "unknown report type: " + e.ReportType
}

// ResolveShifts looks up the vendor's shifts and keeps the ones whose
// business date matches the requested day. An empty result is not an error;
// the caller falls back to previously staged data.
func (c *Client) ResolveShifts(ctx context.Context, session Session, vendorUnitID int, date string) ([]int, error) {
	shifts, err := c.GetShifts(ctx, session, vendorUnitID)
	if err != nil {
		return nil, err
	}

	var trns []int
	for _, shift := range shifts {
		if strings.HasPrefix(shift.BusinessDate, date) {
			trns = append(trns, shift.Trn)
		}
	}

	return trns, nil
}

// FetchVendas fans out over the given shifts and merges their sales
// records, tagging every record with the shift that produced it. One
// shift's failure is logged and skipped, the others continue.
func (c *Client) FetchVendas(ctx context.Context, session Session, vendorUnitID int, shifts []int, pacer Pacer) []json.RawMessage {
	merged := make([]json.RawMessage, 0)

	for i, trn := range shifts {
		if i > 0 {
			pacer.Wait()
		}

		records, err := c.GetShiftSales(ctx, session, trn, vendorUnitID)
		if err != nil {
			log.Printf("sales fetch for shift %d failed, skipping: %v", trn, err)
			continue
		}

		for _, record := range records {
			tagged, err := sjson.SetBytes(record, "trn", trn)
			if err != nil {
				log.Printf("could not tag sales record with shift %d: %v", trn, err)
				continue
			}
			merged = append(merged, json.RawMessage(tagged))
		}
	}

	return merged
}
