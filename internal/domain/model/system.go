package model

// Metadata is the response of GET /system/metadata.
type Metadata struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version"`
}

// Health is the response of GET /system/health.
type Health struct {
	Status string `json:"status"`
}
