package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Dgzikaa/zykor-sub003/internal/config"
	"github.com/Dgzikaa/zykor-sub003/internal/models"
	"github.com/Dgzikaa/zykor-sub003/internal/pipeline"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// TaskProcessor holds dependencies for our task handlers
type TaskProcessor struct {
	DB       *gorm.DB
	config   *config.Config
	pipeline *pipeline.Pipeline
}

// NewTaskProcessor creates a new TaskProcessor
func NewTaskProcessor(db *gorm.DB, config *config.Config) *TaskProcessor {
	return &TaskProcessor{
		DB:       db,
		config:   config,
		pipeline: pipeline.New(db, config),
	}
}

// HandleCollectUnitDataTask runs the collection pipeline for the units and
// date named by the payload. One unit failing does not stop the others; a
// run-aborting error only surfaces when every unit failed that way.
func (p *TaskProcessor) HandleCollectUnitDataTask(ctx context.Context, t *asynq.Task) error {
	var payload CollectUnitDataPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	reportDate := payload.ReportDate
	if reportDate == "" {
		reportDate = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	}

	units, err := p.resolveUnits(ctx, payload.BusinessUnitID)
	if err != nil {
		return err
	}

	log.Printf("collecting %s for %d unit(s)", reportDate, len(units))

	for _, unit := range units {
		result, err := p.pipeline.Run(ctx, int(unit.ID), reportDate)
		if err != nil {
			log.Printf("collection run for unit %d on %s aborted: %v", unit.ID, reportDate, err)
			continue
		}

		log.Printf("collection run for unit %d on %s: %d collected, %d errors, %d records",
			unit.ID, reportDate, result.CollectedCount, result.ErrorCount, result.TotalRecords)
	}

	return nil
}

func (p *TaskProcessor) resolveUnits(ctx context.Context, businessUnitID int) ([]models.BusinessUnit, error) {
	if businessUnitID > 0 {
		unit, err := gorm.G[models.BusinessUnit](p.DB).Where("id = ?", businessUnitID).First(ctx)
		if err != nil {
			return nil, fmt.Errorf("business unit %d not found: %w", businessUnitID, err)
		}
		return []models.BusinessUnit{unit}, nil
	}

	return gorm.G[models.BusinessUnit](p.DB).Where("active = ?", true).Order("id ASC").Find(ctx)
}

func (p *TaskProcessor) GetPipeline() *pipeline.Pipeline {
	return p.pipeline
}
