package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Dgzikaa/zykor-sub003/internal/pipeline"
	"github.com/Dgzikaa/zykor-sub003/internal/staging"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CollectionController struct {
	Pipeline *pipeline.Pipeline
	Store    *staging.Store
}

type collectRequest struct {
	BusinessUnitID int    `json:"business_unit_id"`
	ReportDate     string `json:"report_date"`
}

// Collect runs one collection pipeline for a (business unit, date) pair.
// Once past validation, configuration and authentication the response is
// always 200: partial collection failures are data, not transport errors.
func (cc *CollectionController) Collect(c *gin.Context) {
	ctx := c.Request.Context()

	var req collectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "business_unit_id and report_date are required"})
		return
	}

	result, err := cc.Pipeline.Run(ctx, req.BusinessUnitID, req.ReportDate)
	if err != nil {
		var validationErr *pipeline.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": validationErr.Msg})
			return
		}

		log.Printf("collection run for unit %d on %s aborted: %v", req.BusinessUnitID, req.ReportDate, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "collection finished",
		"summary": gin.H{
			"business_unit_id":        result.BusinessUnitID,
			"report_date":             result.ReportDate,
			"collected_count":         result.CollectedCount,
			"error_count":             result.ErrorCount,
			"total_records_collected": result.TotalRecords,
			"processing_method":       "sequential",
			"includes_vendas":         result.IncludesVendas,
		},
		"details": gin.H{
			"collected": result.Collected,
			"processed": result.Processed,
			"errors":    result.Errors,
		},
	})
}

// ListStaged returns the staged rows of one unit for a date, metadata only.
func (cc *CollectionController) ListStaged(c *gin.Context) {
	ctx := c.Request.Context()

	unitID, err := strconv.Atoi(c.Param("business_unit_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid business_unit_id"})
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}

	rows, err := cc.Store.ListForDate(ctx, unitID, date)
	if err != nil {
		log.Printf("failed to list staged data: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"staged": rows})
}

// GetStaged returns one staged payload.
func (cc *CollectionController) GetStaged(c *gin.Context) {
	ctx := c.Request.Context()

	unitID, err := strconv.Atoi(c.Param("business_unit_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid business_unit_id"})
		return
	}

	reportType := c.Param("report_type")
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}

	row, err := cc.Store.Get(ctx, unitID, reportType, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Staged data not found"})
			return
		}

		log.Printf("failed to get staged data: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.Data(http.StatusOK, "application/json", row.Payload)
}
