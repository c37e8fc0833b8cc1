package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Item is one undelivered activity event awaiting redelivery.
type Item struct {
	ID           string          `json:"id"`
	TaskID       string          `json:"task_id"`
	ActivityType string          `json:"activity_type"`
	Event        json.RawMessage `json:"event"`
	Priority     int             `json:"priority"`
	Retries      int             `json:"retries"`
	Timestamp    time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
