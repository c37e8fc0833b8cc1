package domain

import "time"

// TaskType classifies what kind of activity a task represents.
type TaskType string

const (
	TaskTypeCall     TaskType = "Call"
	TaskTypeEmail    TaskType = "Email"
	TaskTypeMeeting  TaskType = "Meeting"
	TaskTypeReminder TaskType = "Reminder"
	TaskTypeOther    TaskType = "Other"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusCompleted TaskStatus = "Completed"
	TaskStatusOverdue   TaskStatus = "Overdue"
)

// TaskPriority ranks task urgency.
type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityLow    TaskPriority = "Low"
)

// ValidTaskType reports whether v is a known task type.
func ValidTaskType(v TaskType) bool {
	switch v {
	case TaskTypeCall, TaskTypeEmail, TaskTypeMeeting, TaskTypeReminder, TaskTypeOther:
		return true
	}
	return false
}

// ValidTaskStatus reports whether v is a known task status.
func ValidTaskStatus(v TaskStatus) bool {
	switch v {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusOverdue:
		return true
	}
	return false
}

// ValidTaskPriority reports whether v is a known task priority.
func ValidTaskPriority(v TaskPriority) bool {
	switch v {
	case TaskPriorityHigh, TaskPriorityMedium, TaskPriorityLow:
		return true
	}
	return false
}

// TaskLinks holds the optional references tying a task to other CRM entities.
// A task may carry none, one, or several simultaneously; the ids are opaque
// strings owned by the referenced services.
type TaskLinks struct {
	LeadID    string `json:"leadId,omitempty"`
	DealID    string `json:"dealId,omitempty"`
	ContactID string `json:"contactId,omitempty"`
	EventID   string `json:"eventId,omitempty"`
	NoteID    string `json:"noteId,omitempty"`
	MailID    string `json:"mailId,omitempty"`
	// RefTaskID references an external task record, not another row here.
	RefTaskID string `json:"taskId,omitempty"`
}

// IsZero reports whether no linkage is present.
func (l TaskLinks) IsZero() bool {
	return l == TaskLinks{}
}

// Task is a schedulable unit of work attached to CRM entities.
type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Type           TaskType     `json:"type"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	DueDate        time.Time    `json:"dueDate"`
	AssignedTo     string       `json:"assignedTo"`
	Contributors   []string     `json:"contributors"`
	Links          TaskLinks    `json:"links"`
	OrganizationID string       `json:"organizationId"`
	CreatedBy      string       `json:"createdBy"`
	UpdatedBy      string       `json:"updatedBy,omitempty"`
	DeletedBy      string       `json:"deletedBy,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// ApplyDefaults fills the enum fields the caller may omit.
func (t *Task) ApplyDefaults() {
	if t.Type == "" {
		t.Type = TaskTypeReminder
	}
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	if t.Contributors == nil {
		t.Contributors = []string{}
	}
}

// Validate checks the fields that must never be empty on a persisted task.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	switch {
	case t.Title == "":
		return NewError(ErrCodeInvalid, "title is required")
	case t.DueDate.IsZero():
		return NewError(ErrCodeInvalid, "dueDate is required")
	case t.AssignedTo == "":
		return NewError(ErrCodeInvalid, "assignedTo is required")
	case t.CreatedBy == "":
		return NewError(ErrCodeInvalid, "createdBy is required")
	case t.OrganizationID == "":
		return NewError(ErrCodeInvalid, "organizationId is required")
	}
	if !ValidTaskType(t.Type) {
		return NewError(ErrCodeInvalid, "unknown task type")
	}
	if !ValidTaskStatus(t.Status) {
		return NewError(ErrCodeInvalid, "unknown task status")
	}
	if !ValidTaskPriority(t.Priority) {
		return NewError(ErrCodeInvalid, "unknown task priority")
	}
	return nil
}

// IsDeleted reports whether the task carries the soft-delete marker.
func (t *Task) IsDeleted() bool {
	return t != nil && t.DeletedBy != ""
}

// TaskUpdate carries a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title        *string       `json:"title,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Type         *TaskType     `json:"type,omitempty"`
	Status       *TaskStatus   `json:"status,omitempty"`
	Priority     *TaskPriority `json:"priority,omitempty"`
	DueDate      *time.Time    `json:"dueDate,omitempty"`
	AssignedTo   *string       `json:"assignedTo,omitempty"`
	Contributors *[]string     `json:"contributors,omitempty"`
	Links        *TaskLinks    `json:"links,omitempty"`
	UpdatedBy    string        `json:"updatedBy,omitempty"`
}

// IsEmpty reports whether the update touches nothing beyond the actor.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Type == nil &&
		u.Status == nil && u.Priority == nil && u.DueDate == nil &&
		u.AssignedTo == nil && u.Contributors == nil && u.Links == nil
}

// Apply merges the update into the task in place.
func (u TaskUpdate) Apply(t *Task) {
	if t == nil {
		return
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Type != nil {
		t.Type = *u.Type
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.DueDate != nil {
		t.DueDate = *u.DueDate
	}
	if u.AssignedTo != nil {
		t.AssignedTo = *u.AssignedTo
	}
	if u.Contributors != nil {
		t.Contributors = *u.Contributors
	}
	if u.Links != nil {
		t.Links = *u.Links
	}
	if u.UpdatedBy != "" {
		t.UpdatedBy = u.UpdatedBy
	}
}
