package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/models"
)

func TestEventUpsertIsIdempotentPerStage(t *testing.T) {
	f := setupRepos(t)
	report := f.newReport(t, "u-1", "500", nil)

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	actor := "u-2"

	require.NoError(t, f.eventRepo.Upsert(nil, &models.WorkflowEvent{
		ExpenseReportID: report.ID,
		Stage:           "submitted",
		ApprovedAt:      &now,
	}))
	require.NoError(t, f.eventRepo.Upsert(nil, &models.WorkflowEvent{
		ExpenseReportID: report.ID,
		Stage:           "pending_manager",
		ApprovedBy:      &actor,
		ApprovedAt:      &now,
		Notes:           "first attempt",
	}))

	// same (report, stage) again: overwrite, not append
	later := now.Add(time.Minute)
	require.NoError(t, f.eventRepo.Upsert(nil, &models.WorkflowEvent{
		ExpenseReportID: report.ID,
		Stage:           "pending_manager",
		ApprovedBy:      &actor,
		ApprovedAt:      &later,
		Notes:           "second attempt",
	}))

	events, err := f.eventRepo.GetByReportID(report.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "submitted", events[0].Stage)
	assert.Nil(t, events[0].ApprovedBy)

	assert.Equal(t, "pending_manager", events[1].Stage)
	assert.Equal(t, "second attempt", events[1].Notes)
	require.NotNil(t, events[1].ApprovedBy)
	assert.Equal(t, actor, *events[1].ApprovedBy)
	assert.Equal(t, "Sam Two", events[1].ApproverName)
}

func TestEventTimelineOrder(t *testing.T) {
	f := setupRepos(t)
	report := f.newReport(t, "u-1", "500", nil)

	now := time.Now().UTC()
	actor := "u-2"
	for _, stage := range []string{"submitted", "pending_accounts", "pending_manager", "approved"} {
		require.NoError(t, f.eventRepo.Upsert(nil, &models.WorkflowEvent{
			ExpenseReportID: report.ID,
			Stage:           stage,
			ApprovedBy:      &actor,
			ApprovedAt:      &now,
		}))
	}

	events, err := f.eventRepo.GetByReportID(report.ID)
	require.NoError(t, err)
	require.Len(t, events, 4)

	var stages []string
	for _, event := range events {
		stages = append(stages, event.Stage)
	}
	assert.Equal(t, []string{"submitted", "pending_accounts", "pending_manager", "approved"}, stages)
}

func TestEventsEmptyForUnknownReport(t *testing.T) {
	f := setupRepos(t)

	events, err := f.eventRepo.GetByReportID("missing")
	require.NoError(t, err)
	assert.Empty(t, events)
}
