package models

// WorkerStatus is the state reported by one background worker. It is
// replaced wholesale on every poll.
type WorkerStatus struct {
	Running     bool    `json:"running"`
	CurrentRepo *string `json:"currentRepo,omitempty"`
	// InProgress and MaxConcurrent are only reported by the migration worker
	InProgress    *int `json:"inProgress,omitempty"`
	MaxConcurrent *int `json:"maxConcurrent,omitempty"`
}

// Current returns the repository the worker is processing, if any
func (s WorkerStatus) Current() string {
	if s.CurrentRepo == nil {
		return ""
	}
	return *s.CurrentRepo
}

// ActionResult is the generic {success, message, error} reply of mutating endpoints
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Reason returns the most specific failure text of the result
func (r ActionResult) Reason() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}
