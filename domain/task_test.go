package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTask() *Task {
	return &Task{
		Title:          "Call client",
		DueDate:        time.Now().Add(time.Hour),
		AssignedTo:     "u1",
		CreatedBy:      "u1",
		OrganizationID: "org1",
	}
}

func TestApplyDefaults(t *testing.T) {
	task := validTask()
	task.ApplyDefaults()

	assert.Equal(t, TaskTypeReminder, task.Type)
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Equal(t, TaskPriorityMedium, task.Priority)
	assert.NotNil(t, task.Contributors)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	task := validTask()
	task.Type = TaskTypeMeeting
	task.Status = TaskStatusCompleted
	task.Priority = TaskPriorityHigh
	task.ApplyDefaults()

	assert.Equal(t, TaskTypeMeeting, task.Type)
	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.Equal(t, TaskPriorityHigh, task.Priority)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Task)
	}{
		{"missing title", func(task *Task) { task.Title = "" }},
		{"missing due date", func(task *Task) { task.DueDate = time.Time{} }},
		{"missing assignee", func(task *Task) { task.AssignedTo = "" }},
		{"missing creator", func(task *Task) { task.CreatedBy = "" }},
		{"missing organization", func(task *Task) { task.OrganizationID = "" }},
		{"unknown status", func(task *Task) { task.Status = "Paused" }},
		{"unknown type", func(task *Task) { task.Type = "Fax" }},
		{"unknown priority", func(task *Task) { task.Priority = "Urgent" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := validTask()
			task.ApplyDefaults()
			tc.mutate(task)
			err := task.Validate()
			require.Error(t, err)
			assert.True(t, IsDomainError(err, ErrCodeInvalid))
		})
	}

	task := validTask()
	task.ApplyDefaults()
	require.NoError(t, task.Validate())
}

func TestTaskUpdateApply(t *testing.T) {
	task := validTask()
	task.ApplyDefaults()

	title := "Call client again"
	status := TaskStatusCompleted
	contributors := []string{"u2", "u3"}
	patch := TaskUpdate{
		Title:        &title,
		Status:       &status,
		Contributors: &contributors,
		UpdatedBy:    "u2",
	}
	patch.Apply(task)

	assert.Equal(t, "Call client again", task.Title)
	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.Equal(t, []string{"u2", "u3"}, task.Contributors)
	assert.Equal(t, "u2", task.UpdatedBy)
	// untouched fields survive
	assert.Equal(t, TaskPriorityMedium, task.Priority)
	assert.Equal(t, "u1", task.AssignedTo)
}

func TestTaskUpdateIsEmpty(t *testing.T) {
	assert.True(t, TaskUpdate{UpdatedBy: "u1"}.IsEmpty())

	title := "x"
	assert.False(t, TaskUpdate{Title: &title}.IsEmpty())
}

func TestIsDeleted(t *testing.T) {
	task := validTask()
	assert.False(t, task.IsDeleted())
	task.DeletedBy = "u9"
	assert.True(t, task.IsDeleted())
}
