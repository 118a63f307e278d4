package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted for revenue entries.
const (
	PaymentCash     = "dinheiro"
	PaymentPix      = "pix"
	PaymentDebit    = "cartao_debito"
	PaymentCredit   = "cartao_credito"
	PaymentTransfer = "transferencia"
)

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentPix, PaymentDebit, PaymentCredit, PaymentTransfer:
		return true
	}
	return false
}

// Entry is one revenue or expense line in a user's books.
type Entry struct {
	Date          time.Time       `db:"entry_date" json:"date"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	CategoryID    *string         `db:"category_id" json:"category_id"`
	CategoryName  *string         `db:"category_name" json:"category_name,omitempty"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
	ExternalRef   *string         `db:"external_ref" json:"-"`
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	PaymentMethod string          `db:"payment_method" json:"payment_method,omitempty"`
	Type          CategoryType    `db:"-" json:"type"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
}

// ImportRef derives a stable reference for an imported statement line so the
// same line imported twice is recognized.
func ImportRef(accountID, fitID string, date time.Time, amount decimal.Decimal) string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		accountID,
		fitID,
		date.Format("2006-01-02"),
		amount.StringFixed(2))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
