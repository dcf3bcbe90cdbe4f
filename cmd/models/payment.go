package models

import (
	"time"

	"gorm.io/gorm"
)

type Payment struct {
	gorm.Model
	MemberID       uint           `gorm:"column:member_id;index;not null" json:"member_id"`
	Gateway        string         `gorm:"column:gateway;size:20;not null" json:"gateway"`
	SessionID      string         `gorm:"column:session_id;size:255;uniqueIndex;not null" json:"session_id"`
	Amount         float64        `gorm:"column:amount;not null" json:"amount"`
	Currency       string         `gorm:"column:currency;size:10;not null;default:USD" json:"currency"`
	MembershipType MembershipType `gorm:"column:membership_type;size:20;not null" json:"membership_type"`
	Status         string         `gorm:"column:status;size:20;not null;default:pending" json:"status"`
	PaymentMethod  string         `gorm:"column:payment_method;size:50" json:"payment_method"`
	PaymentDate    time.Time      `gorm:"column:payment_date" json:"payment_date"`
	PeriodStart    time.Time      `gorm:"column:period_start" json:"period_start"`
	PeriodEnd      time.Time      `gorm:"column:period_end" json:"period_end"`
	Notes          string         `gorm:"column:notes;type:text" json:"notes,omitempty"`

	Member Member `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"member,omitempty"`
}

// WebhookEvent records a processed gateway event so re-delivered
// webhooks are acknowledged without reprocessing.
type WebhookEvent struct {
	gorm.Model
	EventID     string    `gorm:"column:event_id;size:255;uniqueIndex;not null" json:"event_id"`
	Gateway     string    `gorm:"column:gateway;size:20;not null" json:"gateway"`
	ProcessedAt time.Time `gorm:"column:processed_at" json:"processed_at"`
}
