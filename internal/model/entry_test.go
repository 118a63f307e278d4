package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range []string{PaymentCash, PaymentPix, PaymentDebit, PaymentCredit, PaymentTransfer} {
		assert.True(t, ValidPaymentMethod(m), m)
	}
	assert.False(t, ValidPaymentMethod(""))
	assert.False(t, ValidPaymentMethod("cheque"))
}

func TestImportRef(t *testing.T) {
	date := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("150.00")

	ref := ImportRef("acct", "fit-1", date, amount)
	assert.Len(t, ref, 64)
	assert.Equal(t, ref, ImportRef("acct", "fit-1", date, decimal.RequireFromString("150")))

	assert.NotEqual(t, ref, ImportRef("acct", "fit-2", date, amount))
	assert.NotEqual(t, ref, ImportRef("other", "fit-1", date, amount))
	assert.NotEqual(t, ref, ImportRef("acct", "fit-1", date.AddDate(0, 0, 1), amount))
	assert.NotEqual(t, ref, ImportRef("acct", "fit-1", date, decimal.RequireFromString("150.01")))
}
