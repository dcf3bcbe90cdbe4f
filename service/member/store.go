package member

import (
	"errors"
	"strings"
	"time"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("member not found")
	ErrDuplicateEmail = errors.New("member with this email already exists")
)

// MembershipPeriodDays is the length of one paid membership period.
// All tiers are billed monthly.
const MembershipPeriodDays = 30

func MembershipEndDate(start time.Time) time.Time {
	return start.Add(MembershipPeriodDays * 24 * time.Hour)
}

// CreateMember inserts a new member with an active 30-day membership
// period starting now. Fails with ErrDuplicateEmail when the email is
// already registered.
func CreateMember(db *gorm.DB, m *models.Member) error {
	var existing models.Member
	err := db.Where("email = ?", m.Email).First(&existing).Error
	if err == nil {
		return ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	m.MembershipStartDate = now
	m.MembershipEndDate = MembershipEndDate(now)
	m.Status = models.MemberStatusActive

	if err := db.Create(m).Error; err != nil {
		// Concurrent insert can still trip the unique index
		if strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func GetMember(db *gorm.DB, id uint) (*models.Member, error) {
	var m models.Member
	if err := db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ExtendMembership starts a fresh 30-day period from now and reactivates
// the member. Called only once a payment is confirmed (verified gateway
// result or manual payment recording). Returns the new end date.
func ExtendMembership(db *gorm.DB, memberID uint) (time.Time, error) {
	end := MembershipEndDate(time.Now().UTC())
	if err := ExtendMembershipTo(db, memberID, end); err != nil {
		return time.Time{}, err
	}
	return end, nil
}

// ExtendMembershipTo sets the membership end date to the exact period
// end stamped on the confirming payment, so the two never drift.
func ExtendMembershipTo(db *gorm.DB, memberID uint, end time.Time) error {
	m, err := GetMember(db, memberID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"membership_end_date": end,
		"status":              models.MemberStatusActive,
	}
	return db.Model(m).Updates(updates).Error
}

// SetGatewayCustomerRef records the gateway-side customer id. The first
// write wins; an already-set ref is never overwritten.
func SetGatewayCustomerRef(db *gorm.DB, memberID uint, ref string) error {
	if ref == "" {
		return nil
	}
	return db.Model(&models.Member{}).
		Where("id = ? AND (gateway_customer_ref = '' OR gateway_customer_ref IS NULL)", memberID).
		Update("gateway_customer_ref", ref).Error
}
