package models

// Membership tiers
type MembershipType string

const (
	MembershipBasic   MembershipType = "basic"
	MembershipPremium MembershipType = "premium"
	MembershipVIP     MembershipType = "vip"
)

// Member statuses
const (
	MemberStatusActive    = "active"
	MemberStatusInactive  = "inactive"
	MemberStatusExpired   = "expired"
	MemberStatusSuspended = "suspended"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

// Payment gateways
const (
	GatewayStripe   = "stripe"
	GatewayRazorpay = "razorpay"
	GatewayManual   = "manual"
)

// MembershipPricing is the monthly reference price per tier in USD.
// Loaded once, read-only at runtime.
var MembershipPricing = map[MembershipType]float64{
	MembershipBasic:   29.99,
	MembershipPremium: 49.99,
	MembershipVIP:     79.99,
}

// PriceFor returns the monthly reference price for a tier. The second
// return value is false for unknown tiers.
func PriceFor(tier MembershipType) (float64, bool) {
	price, ok := MembershipPricing[tier]
	return price, ok
}

// ValidMembershipType reports whether the given tier is one of the
// supported membership tiers.
func ValidMembershipType(tier MembershipType) bool {
	_, ok := MembershipPricing[tier]
	return ok
}
