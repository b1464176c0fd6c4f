package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
)

func TestNewExportRequest(t *testing.T) {
	now := time.Now()
	request := models.NewExportRequest(100)

	assert.NotNil(t, request)
	assert.Equal(t, int64(100), request.UserID)
	assert.Equal(t, constants.ExportStatusCompleted, request.Status,
		"Exports are recorded optimistically and flipped to failed on error")
	assert.Empty(t, request.FailureReason)
	assert.WithinDuration(t, now, request.RequestedAt, time.Second)
	assert.Nil(t, request.CompletedAt)
}

func TestExportRequest_TableName(t *testing.T) {
	request := &models.ExportRequest{ID: 1}
	assert.Equal(t, "data_export_requests", request.TableName())
}
