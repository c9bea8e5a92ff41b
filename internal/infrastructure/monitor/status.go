package monitor

import "time"

// Status is a point-in-time snapshot of store health.
type Status struct {
	Store     bool      `json:"store"`
	Users     int       `json:"users"`
	Tasks     int       `json:"tasks"`
	LastCheck time.Time `json:"last_check"`
}
