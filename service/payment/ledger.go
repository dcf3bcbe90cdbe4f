package payment

import (
	"errors"
	"time"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("payment transaction not found")

	// ErrStaleTransaction is returned when a transition is attempted on
	// a transaction that already reached a terminal status.
	ErrStaleTransaction = errors.New("payment transaction already finalized")
)

// CreatePending appends a pending transaction for an in-flight checkout.
// The session id must already be confirmed by the gateway; a pending row
// is never written for a session the gateway rejected.
func CreatePending(db *gorm.DB, p *models.Payment) error {
	p.Status = models.PaymentStatusPending
	return db.Create(p).Error
}

func GetBySession(db *gorm.DB, sessionID string) (*models.Payment, error) {
	var p models.Payment
	if err := db.Where("session_id = ?", sessionID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func ListByMember(db *gorm.DB, memberID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := db.Where("member_id = ?", memberID).
		Order("payment_date DESC").
		Find(&payments).Error
	return payments, err
}

// MarkCompleted moves a pending transaction to completed and stamps the
// paid period. Re-delivering a completion for an already-completed
// transaction is an idempotent no-op: the first return value reports
// whether this call performed the transition, so membership is extended
// at most once. Any other terminal status fails with
// ErrStaleTransaction.
func MarkCompleted(db *gorm.DB, sessionID string, periodEnd time.Time) (bool, *models.Payment, error) {
	p, err := GetBySession(db, sessionID)
	if err != nil {
		return false, nil, err
	}

	switch p.Status {
	case models.PaymentStatusCompleted:
		return false, p, nil
	case models.PaymentStatusFailed, models.PaymentStatusCancelled:
		return false, p, ErrStaleTransaction
	}

	now := time.Now().UTC()
	p.Status = models.PaymentStatusCompleted
	p.PaymentDate = now
	p.PeriodStart = now
	p.PeriodEnd = periodEnd
	if err := db.Save(p).Error; err != nil {
		return false, nil, err
	}
	return true, p, nil
}

// MarkFailed records a verification or gateway failure. Completed and
// cancelled transactions stay as they are.
func MarkFailed(db *gorm.DB, sessionID string, reason string) error {
	p, err := GetBySession(db, sessionID)
	if err != nil {
		return err
	}

	switch p.Status {
	case models.PaymentStatusFailed:
		return nil
	case models.PaymentStatusCompleted, models.PaymentStatusCancelled:
		return ErrStaleTransaction
	}

	updates := map[string]interface{}{"status": models.PaymentStatusFailed}
	if reason != "" {
		updates["notes"] = reason
	}
	return db.Model(p).Updates(updates).Error
}

// MarkCancelled records a user-abandoned checkout session.
func MarkCancelled(db *gorm.DB, sessionID string) error {
	p, err := GetBySession(db, sessionID)
	if err != nil {
		return err
	}

	switch p.Status {
	case models.PaymentStatusCancelled:
		return nil
	case models.PaymentStatusCompleted, models.PaymentStatusFailed:
		return ErrStaleTransaction
	}

	return db.Model(p).Update("status", models.PaymentStatusCancelled).Error
}
