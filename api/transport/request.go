package transport

// CreateTaskRequest is the payload for creating a task. Identity strings are
// taken as given; there is no authorization layer in front of them.
type CreateTaskRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Type           string   `json:"type"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	DueDate        string   `json:"dueDate"`
	AssignedTo     string   `json:"assignedTo"`
	Contributors   []string `json:"contributors"`
	LeadID         string   `json:"leadId"`
	DealID         string   `json:"dealId"`
	ContactID      string   `json:"contactId"`
	EventID        string   `json:"eventId"`
	NoteID         string   `json:"noteId"`
	MailID         string   `json:"mailId"`
	RefTaskID      string   `json:"taskId"`
	OrganizationID string   `json:"organizationId"`
	CreatedBy      string   `json:"createdBy"`
}

// UpdateTaskRequest carries a partial update; absent fields stay untouched.
type UpdateTaskRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Type         *string   `json:"type"`
	Status       *string   `json:"status"`
	Priority     *string   `json:"priority"`
	DueDate      *string   `json:"dueDate"`
	AssignedTo   *string   `json:"assignedTo"`
	Contributors *[]string `json:"contributors"`
	UpdatedBy    string    `json:"updatedBy"`
}

type UpdateTaskStatusRequest struct {
	Status    string `json:"status"`
	UpdatedBy string `json:"updatedBy"`
}

type DeleteTaskRequest struct {
	DeletedBy string `json:"deletedBy"`
}

// FilterTasksRequest selects tasks by their linkage to other CRM entities.
type FilterTasksRequest struct {
	LeadID    string `json:"leadId"`
	DealID    string `json:"dealId"`
	ContactID string `json:"contactId"`
	EventID   string `json:"eventId"`
	NoteID    string `json:"noteId"`
	MailID    string `json:"mailId"`

	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	Status    string `json:"status"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
	Search    string `json:"search"`
}
