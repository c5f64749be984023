package models

import "time"

// TierPrices are the development backend's prices in rubles.
var TierPrices = map[Tier]float64{
	TierPro:     990,
	TierProPlus: 2490,
}

// PaymentRecord is the development backend's view of a checkout.
type PaymentRecord struct {
	ID        string
	UserID    int64
	Tier      Tier
	Amount    float64
	ReturnURL string
	Status    PaymentState
	Paid      bool
	CreatedAt time.Time
	SettledAt *time.Time
}
