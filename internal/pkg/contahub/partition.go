package contahub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// PartitionLocations are the known station names of a unit. The vendor has
// an undocumented payload-size ceiling; splitting a failed query by location
// is the only way observed to keep each sub-query under it. The trailing
// empty string picks up records with no location assigned.
var PartitionLocations = []string{
	"BAR",
	"COZINHA 1",
	"COZINHA 2",
	"CHOPEIRA",
	"DRINKS",
	"DELIVERY",
	"",
}

// Pacer inserts a pause between consecutive vendor calls. Tests inject a
// zero-delay pacer.
type Pacer interface {
	Wait()
}

type fixedPacer struct {
	delay time.Duration
}

func (p fixedPacer) Wait() {
	time.Sleep(p.delay)
}

// NewFixedPacer returns a Pacer sleeping for the given duration.
func NewFixedPacer(delay time.Duration) Pacer {
	return fixedPacer{delay: delay}
}

// DefaultPacer matches the vendor's tolerated request rate.
var DefaultPacer = NewFixedPacer(300 * time.Millisecond)

// FetchPartitioned tries the whole query once and falls back to fetching
// per location and merging. The vendor signals "result too large" with the
// same generic failure as anything else, so any error triggers the
// fallback. A failed partition is logged and skipped, never aborts the
// loop; the merged list may undercount and that is an accepted degradation.
func (c *Client) FetchPartitioned(ctx context.Context, session Session, spec QuerySpec, pacer Pacer) ([]json.RawMessage, error) {
	spec.LocationFilter = ""
	records, err := c.ExecQuery(ctx, session, spec)
	if err == nil {
		return records, nil
	}

	log.Printf("query %d for %s failed unfiltered, partitioning by location: %v", spec.QueryID, spec.Date, err)

	merged := make([]json.RawMessage, 0)
	succeeded := 0
	var lastErr error
	for i, location := range PartitionLocations {
		if i > 0 {
			pacer.Wait()
		}

		spec.LocationFilter = location
		part, err := c.ExecQuery(ctx, session, spec)
		if err != nil {
			log.Printf("partition %q of query %d failed, skipping: %v", location, spec.QueryID, err)
			lastErr = err
			continue
		}

		succeeded++
		merged = append(merged, part...)
	}

	// Zero successful partitions is not degradation, the type genuinely
	// could not be fetched.
	if succeeded == 0 {
		return nil, fmt.Errorf("all partitions of query %d failed: %w", spec.QueryID, lastErr)
	}

	return merged, nil
}
