package models

import "time"

// EngineMetrics is a lightweight counter snapshot exposed on the health
// endpoint, complementing the Prometheus scrape surface.
type EngineMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RotationsCreated         uint64    `json:"rotations_created"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
