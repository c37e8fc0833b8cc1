package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTaskEvent(t *testing.T) {
	due := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	task := &Task{
		ID:      "t-1",
		Title:   "Call client",
		Type:    TaskTypeCall,
		DueDate: due,
		Links: TaskLinks{
			LeadID: "lead-9",
			MailID: "mail-2",
		},
	}

	event := BuildTaskEvent(task, ActivityTaskCreated, "u1")

	assert.Equal(t, ActivityTaskCreated, event.ActivityType)
	assert.Equal(t, "Task created by u1", event.Description)
	assert.Equal(t, "u1", event.PerformedBy)
	assert.Equal(t, "t-1", event.TaskID)

	// linkage ids present on the task appear at the top level and in metadata
	assert.Equal(t, "lead-9", event.LeadID)
	assert.Equal(t, "mail-2", event.MailID)
	assert.Equal(t, "lead-9", event.Metadata.LeadID)
	assert.Equal(t, "mail-2", event.Metadata.MailID)
	assert.Empty(t, event.DealID)
	assert.Empty(t, event.Metadata.DealID)

	assert.Equal(t, "Call client", event.Metadata.TaskTitle)
	assert.Equal(t, "Call", event.Metadata.TaskType)
	require.NotNil(t, event.Metadata.DueDate)
	assert.True(t, event.Metadata.DueDate.Equal(due))
}

func TestBuildTaskEventDefaultsActorToSystem(t *testing.T) {
	task := &Task{ID: "t-2", Title: "Follow up"}

	event := BuildTaskEvent(task, ActivityTaskUpdated, "")

	assert.Equal(t, SystemActor, event.PerformedBy)
	assert.Equal(t, "Task updated by system", event.Description)
	assert.Nil(t, event.Metadata.DueDate)
}

func TestBuildTaskEventDescriptions(t *testing.T) {
	task := &Task{ID: "t-3"}

	assert.Equal(t, "Task deleted by u2",
		BuildTaskEvent(task, ActivityTaskDeleted, "u2").Description)
	// status updates reuse the generic updated wording
	assert.Equal(t, "Task updated by u2",
		BuildTaskEvent(task, ActivityTaskUpdated, "u2").Description)
}
