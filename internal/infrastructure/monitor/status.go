package monitor

import "time"

type Status struct {
	PostgreSQL     bool      `json:"postgresql"`
	Redis          bool      `json:"redis"`
	RetryBuffer    bool      `json:"retry_buffer"`
	BufferedEvents int       `json:"buffered_events"`
	LastCheck      time.Time `json:"last_check"`
}
