package payload

// HealthResponse is served by the agent's health endpoint.
type HealthResponse struct {
	Message       string `json:"message"`
	DateTime      string `json:"date_time"`
	ProfileLoaded bool   `json:"profile_loaded"`
	Version       uint64 `json:"version"`
}

type RefreshRequest struct {
	Slice string `json:"slice"`
}

type RefreshResponse struct {
	Slice   string      `json:"slice"`
	Version uint64      `json:"version"`
	Profile ProfileData `json:"profile"`
}

type JobStatusResponse struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Runs       int    `json:"runs"`
	Skipped    int    `json:"skipped"`
	LastRun    string `json:"last_run,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}
