package dto

import "time"

// RosterArchiveResult describes an archived roster export and the signed
// token that downloads it.
type RosterArchiveResult struct {
	ExportID  string    `json:"export_id"`
	Filename  string    `json:"filename"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
