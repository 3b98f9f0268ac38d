package models

import "time"

// ExtensionReasonCode classifies why days were added to an internship.
type ExtensionReasonCode string

const (
	ExtensionReasonPresentation  ExtensionReasonCode = "PRESENTATION"
	ExtensionReasonInternalQuery ExtensionReasonCode = "INTERNAL_QUERY"
	ExtensionReasonLeave         ExtensionReasonCode = "LEAVE"
	ExtensionReasonOther         ExtensionReasonCode = "OTHER"
)

// ExtensionReason is an append-only audit record of an extension adjustment.
type ExtensionReason struct {
	ID        string              `db:"id" json:"id"`
	InternID  string              `db:"intern_id" json:"intern_id"`
	Days      int                 `db:"days" json:"days"`
	Reason    ExtensionReasonCode `db:"reason" json:"reason"`
	Notes     string              `db:"notes" json:"notes"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
}
