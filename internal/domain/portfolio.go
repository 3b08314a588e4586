package domain

import (
	"time"

	"github.com/google/uuid"
)

// PortfolioHolding is one asset position in the user's investment
// portfolio.
type PortfolioHolding struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	AssetType     string    `json:"asset_type"`
	Symbol        string    `json:"symbol"`
	Quantity      float64   `json:"quantity"`
	PurchasePrice float64   `json:"purchase_price"`
	PurchaseDate  time.Time `json:"purchase_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// Asset type constants used for exposure bucketing.
const (
	AssetCrypto = "crypto"
	AssetGlobal = "global"
	AssetLocal  = "local"
	AssetFixed  = "fixed_income"
)

// Cost returns the position's acquisition value.
func (h *PortfolioHolding) Cost() float64 {
	return h.Quantity * h.PurchasePrice
}

// ExposureSummary maps exposure buckets (crypto, global, ...) to
// fractions of total portfolio value. Fractions sum to at most 1.
type ExposureSummary map[string]float64
