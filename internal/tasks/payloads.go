package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// This file defines the "types" and "payloads" for our async tasks.

// Task type names
const (
	TypeTaskCollectUnitData = "task:collect_unit_data"
)

// CollectUnitDataPayload is the data a collection job needs. Both fields
// are optional: a zero unit id means every active unit, an empty date means
// the previous calendar day.
type CollectUnitDataPayload struct {
	BusinessUnitID int    `json:"business_unit_id"`
	ReportDate     string `json:"report_date"`
}

// NewCollectUnitDataTask creates a new task for asynq
func NewCollectUnitDataTask(businessUnitID int, reportDate string) (*asynq.Task, error) {
	payload := CollectUnitDataPayload{
		BusinessUnitID: businessUnitID,
		ReportDate:     reportDate,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeTaskCollectUnitData, payloadBytes), nil
}
