package domain

import (
	"fmt"
	"time"
)

// ActivityType enumerates the event kinds accepted by the activity timeline
// service. Task mutations use the TASK_* kinds; the remaining kinds belong to
// other entity families and are reserved for their services.
type ActivityType string

const (
	ActivityTaskCreated       ActivityType = "TASK_CREATED"
	ActivityTaskUpdated       ActivityType = "TASK_UPDATED"
	ActivityTaskDeleted       ActivityType = "TASK_DELETED"
	ActivityTaskStatusChanged ActivityType = "TASK_STATUS_CHANGED"

	ActivityLeadCreated    ActivityType = "LEAD_CREATED"
	ActivityLeadUpdated    ActivityType = "LEAD_UPDATED"
	ActivityLeadDeleted    ActivityType = "LEAD_DELETED"
	ActivityDealCreated    ActivityType = "DEAL_CREATED"
	ActivityDealUpdated    ActivityType = "DEAL_UPDATED"
	ActivityDealDeleted    ActivityType = "DEAL_DELETED"
	ActivityContactCreated ActivityType = "CONTACT_CREATED"
	ActivityContactUpdated ActivityType = "CONTACT_UPDATED"
	ActivityContactDeleted ActivityType = "CONTACT_DELETED"
	ActivityEventCreated   ActivityType = "CALENDAR_EVENT_CREATED"
	ActivityEventUpdated   ActivityType = "CALENDAR_EVENT_UPDATED"
	ActivityEventDeleted   ActivityType = "CALENDAR_EVENT_DELETED"
	ActivityNoteCreated    ActivityType = "NOTE_CREATED"
	ActivityNoteUpdated    ActivityType = "NOTE_UPDATED"
	ActivityNoteDeleted    ActivityType = "NOTE_DELETED"
	ActivityMailCreated    ActivityType = "MAIL_CREATED"
	ActivityMailUpdated    ActivityType = "MAIL_UPDATED"
	ActivityMailDeleted    ActivityType = "MAIL_DELETED"
)

// SystemActor attributes events that no user initiated.
const SystemActor = "system"

// ActivityMetadata carries task details alongside an event.
type ActivityMetadata struct {
	TaskTitle string     `json:"taskTitle,omitempty"`
	TaskType  string     `json:"taskType,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	LeadID    string     `json:"leadId,omitempty"`
	DealID    string     `json:"dealId,omitempty"`
	ContactID string     `json:"contactId,omitempty"`
	EventID   string     `json:"eventId,omitempty"`
	NoteID    string     `json:"noteId,omitempty"`
	MailID    string     `json:"mailId,omitempty"`
	RefTaskID string     `json:"refTaskId,omitempty"`
}

// ActivityEvent is the outbound notification payload. It is constructed per
// mutation, handed to the gateway, and discarded; it has no lifecycle of its
// own.
type ActivityEvent struct {
	ActivityType ActivityType     `json:"activityType"`
	Description  string           `json:"description"`
	PerformedBy  string           `json:"performedBy"`
	Metadata     ActivityMetadata `json:"metadata"`
	TaskID       string           `json:"taskId"`
	LeadID       string           `json:"leadId,omitempty"`
	DealID       string           `json:"dealId,omitempty"`
	ContactID    string           `json:"contactId,omitempty"`
	EventID      string           `json:"eventId,omitempty"`
	NoteID       string           `json:"noteId,omitempty"`
	MailID       string           `json:"mailId,omitempty"`
}

// BuildTaskEvent assembles the event for one task mutation. Each linkage id
// present on the task appears both at the top level and inside metadata; the
// actor falls back to the system placeholder when unknown.
func BuildTaskEvent(t *Task, kind ActivityType, actor string) ActivityEvent {
	if actor == "" {
		actor = SystemActor
	}

	ev := ActivityEvent{
		ActivityType: kind,
		Description:  describeTaskEvent(kind, actor),
		PerformedBy:  actor,
	}
	if t == nil {
		return ev
	}

	var due *time.Time
	if !t.DueDate.IsZero() {
		d := t.DueDate
		due = &d
	}

	ev.TaskID = t.ID
	ev.LeadID = t.Links.LeadID
	ev.DealID = t.Links.DealID
	ev.ContactID = t.Links.ContactID
	ev.EventID = t.Links.EventID
	ev.NoteID = t.Links.NoteID
	ev.MailID = t.Links.MailID
	ev.Metadata = ActivityMetadata{
		TaskTitle: t.Title,
		TaskType:  string(t.Type),
		DueDate:   due,
		LeadID:    t.Links.LeadID,
		DealID:    t.Links.DealID,
		ContactID: t.Links.ContactID,
		EventID:   t.Links.EventID,
		NoteID:    t.Links.NoteID,
		MailID:    t.Links.MailID,
		RefTaskID: t.Links.RefTaskID,
	}
	return ev
}

func describeTaskEvent(kind ActivityType, actor string) string {
	switch kind {
	case ActivityTaskCreated:
		return fmt.Sprintf("Task created by %s", actor)
	case ActivityTaskDeleted:
		return fmt.Sprintf("Task deleted by %s", actor)
	default:
		return fmt.Sprintf("Task updated by %s", actor)
	}
}
