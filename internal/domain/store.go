package domain

import "time"

// PaymentMethod enumerates the address-book payment rails.
type PaymentMethod string

const (
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodLTC  PaymentMethod = "ltc"
	PaymentMethodUSDT PaymentMethod = "usdt"
)

// ValidPaymentMethod reports whether s names a supported rail.
func ValidPaymentMethod(s string) bool {
	switch PaymentMethod(s) {
	case PaymentMethodUPI, PaymentMethodLTC, PaymentMethodUSDT:
		return true
	}
	return false
}

// PaymentAddress is a saved payout address for a team member.
type PaymentAddress struct {
	UserID    string
	Method    PaymentMethod
	Address   string
	UpdatedAt time.Time
}

// Warning is a moderation note attached to a user.
type Warning struct {
	ID        string
	GuildID   string
	UserID    string
	Reason    string
	IssuedBy  string
	CreatedAt time.Time
}

// AutoResponse maps a trigger to a canned reply within one guild. Triggers
// wrapped in slashes are treated as regular expressions, anything else as a
// case-insensitive substring.
type AutoResponse struct {
	GuildID   string
	Trigger   string
	Reply     string
	CreatedAt time.Time
}
