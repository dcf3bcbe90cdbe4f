package models

import (
	"time"

	"gorm.io/gorm"
)

type Member struct {
	gorm.Model
	FirstName             string         `gorm:"column:first_name;size:255;not null" json:"first_name"`
	LastName              string         `gorm:"column:last_name;size:255;not null" json:"last_name"`
	Email                 string         `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Phone                 string         `gorm:"column:phone;size:20;not null" json:"phone"`
	DateOfBirth           *time.Time     `gorm:"column:date_of_birth" json:"date_of_birth,omitempty"`
	MembershipType        MembershipType `gorm:"column:membership_type;size:20;not null" json:"membership_type"`
	MembershipStartDate   time.Time      `gorm:"column:membership_start_date" json:"membership_start_date"`
	MembershipEndDate     time.Time      `gorm:"column:membership_end_date;index" json:"membership_end_date"`
	Status                string         `gorm:"column:status;size:50;not null;default:active" json:"status"`
	EmergencyContactName  string         `gorm:"column:emergency_contact_name;size:255" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string         `gorm:"column:emergency_contact_phone;size:20" json:"emergency_contact_phone,omitempty"`
	MedicalConditions     string         `gorm:"column:medical_conditions;type:text" json:"medical_conditions,omitempty"`
	AutoBillingEnabled    bool           `gorm:"column:auto_billing_enabled;default:false" json:"auto_billing_enabled"`

	// Opaque customer id assigned by a payment gateway once auto-billing
	// is set up. Written at most once, never reassigned.
	GatewayCustomerRef string `gorm:"column:gateway_customer_ref;size:255" json:"gateway_customer_ref,omitempty"`
}
