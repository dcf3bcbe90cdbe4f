package models

import (
	"time"

	"gorm.io/gorm"
)

type Attendance struct {
	gorm.Model
	MemberID     uint       `gorm:"column:member_id;index;not null" json:"member_id"`
	CheckInTime  time.Time  `gorm:"column:check_in_time;not null" json:"check_in_time"`
	CheckOutTime *time.Time `gorm:"column:check_out_time" json:"check_out_time,omitempty"`
	Date         time.Time  `gorm:"column:date;index;not null" json:"date"`

	Member Member `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"member,omitempty"`
}
