package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>Info
</STATUS>
<DTSERVER>20250315120000[-3:BRT]
<LANGUAGE>POR
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>BRL
<BANKACCTFROM>
<BANKID>0341
<ACCTID>12345-6
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250301120000[-3:BRT]
<DTEND>20250331120000[-3:BRT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250305120000[-3:BRT]
<TRNAMT>150.00
<FITID>202503050001
<NAME>PIX RECEBIDO JOAO SILVA
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250310120000[-3:BRT]
<TRNAMT>-1200.00
<FITID>202503100001
<NAME>PAGTO ALUGUEL MARCO
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250312120000[-3:BRT]
<TRNAMT>0.00
<FITID>202503120001
<NAME>TARIFA ISENTA
</STMTTRN>
<STMTTRN>
<TRNTYPE>CASH
<DTPOSTED>20250314120000[-3:BRT]
<TRNAMT>80.50
<FITID>202503140001
<NAME>DEPOSITO
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20250331120000[-3:BRT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250315120000[-3:BRT]
<LANGUAGE>POR
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>BRL
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20250301120000[-3:BRT]
<DTEND>20250331120000[-3:BRT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250308120000[-3:BRT]
<TRNAMT>-45.99
<FITID>CC2025030801
<NAME>COMPRA CARTAO 08/03 DISTRIBUIDORA BELEZA
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-45.99
<DTASOF>20250331120000[-3:BRT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantCount int
		wantErr   bool
	}{
		{name: "bank statement drops zero lines", data: sampleBankOFX, wantCount: 3},
		{name: "credit card statement", data: sampleCreditCardOFX, wantCount: 1},
		{name: "invalid data", data: "not valid OFX", wantErr: true},
		{name: "empty", data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, lines, tt.wantCount)
		})
	}
}

func TestParseFile_BankLines(t *testing.T) {
	lines, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, lines, 3)

	pix := lines[0]
	assert.Equal(t, model.CategoryTypeRevenue, pix.Type)
	assert.True(t, decimal.RequireFromString("150").Equal(pix.Amount))
	assert.Equal(t, "JOAO SILVA", pix.Description)
	assert.Equal(t, "12345-6", pix.AccountID)
	assert.Equal(t, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), pix.Date)

	rent := lines[1]
	assert.Equal(t, model.CategoryTypeExpense, rent.Type)
	assert.True(t, decimal.RequireFromString("1200").Equal(rent.Amount))
	assert.Equal(t, "ALUGUEL MARCO", rent.Description)

	cash := lines[2]
	assert.Equal(t, "CASH", cash.TrnType)
	assert.True(t, decimal.RequireFromString("80.50").Equal(cash.Amount))
}

func TestLine_Entry(t *testing.T) {
	lines, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	pix := lines[0].Entry("user-1")
	assert.Equal(t, "user-1", pix.UserID)
	assert.Equal(t, model.PaymentPix, pix.PaymentMethod)
	require.NotNil(t, pix.ExternalRef)
	assert.Equal(t, lines[0].Ref(), *pix.ExternalRef)
	require.NotNil(t, pix.Notes)
	assert.Equal(t, "JOAO SILVA", *pix.Notes)
	assert.Nil(t, pix.CategoryID)

	rent := lines[1].Entry("user-1")
	assert.Empty(t, rent.PaymentMethod)

	cash := lines[2].Entry("user-1")
	assert.Equal(t, model.PaymentCash, cash.PaymentMethod)

	// Parsing the same file again yields the same references.
	again, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, lines[0].Ref(), again[0].Ref())
	assert.NotEqual(t, lines[0].Ref(), lines[1].Ref())
}

func TestLine_PaymentMethod(t *testing.T) {
	lines, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.True(t, lines[0].Pix, "prefix is stripped from the description but still marks the line")
	assert.False(t, lines[2].Pix)

	tests := []struct {
		name string
		line Line
		want string
	}{
		{name: "pix", line: Line{Pix: true, TrnType: "CREDIT"}, want: model.PaymentPix},
		{name: "pix wins over card", line: Line{Pix: true, CreditCard: true}, want: model.PaymentPix},
		{name: "cash", line: Line{TrnType: "CASH"}, want: model.PaymentCash},
		{name: "atm", line: Line{TrnType: "ATM"}, want: model.PaymentCash},
		{name: "credit card", line: Line{CreditCard: true, TrnType: "CREDIT"}, want: model.PaymentCredit},
		{name: "debit card", line: Line{TrnType: "POS"}, want: model.PaymentDebit},
		{name: "other", line: Line{TrnType: "CREDIT", Description: "JOAO SILVA"}, want: model.PaymentTransfer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.line.Type = model.CategoryTypeRevenue
			assert.Equal(t, tt.want, tt.line.Entry("u").PaymentMethod)
		})
	}
}

func TestIsPix(t *testing.T) {
	assert.True(t, isPix(ofxgo.Transaction{Name: "PIX RECEBIDO MARIA"}))
	assert.True(t, isPix(ofxgo.Transaction{Name: "CREDITO", Memo: "Pix recebido"}))
	assert.True(t, isPix(ofxgo.Transaction{Payee: &ofxgo.Payee{Name: "PIX MARIA"}}))
	assert.False(t, isPix(ofxgo.Transaction{Name: "TED RECEBIDA MARIA"}))
}

func TestParseFile_CreditCard(t *testing.T) {
	lines, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.True(t, lines[0].CreditCard)
	assert.Equal(t, model.CategoryTypeExpense, lines[0].Type)
	assert.Equal(t, "DISTRIBUIDORA BELEZA", lines[0].Description)
	assert.Equal(t, "4111111111111111", lines[0].AccountID)
}

func TestParseFile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(nil).ParseFile(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		tx   ofxgo.Transaction
		want string
	}{
		{name: "strip card prefix", tx: ofxgo.Transaction{Name: "COMPRA CARTAO DEB POSTO SHELL"}, want: "POSTO SHELL"},
		{name: "strip pix prefix", tx: ofxgo.Transaction{Name: "PIX ENVIADO MARIA"}, want: "MARIA"},
		{name: "strip leading date", tx: ofxgo.Transaction{Name: "12/03 PADARIA"}, want: "PADARIA"},
		{name: "generic name uses memo", tx: ofxgo.Transaction{Name: "PIX", Memo: "Cliente Carlos"}, want: "Cliente Carlos"},
		{name: "payee wins", tx: ofxgo.Transaction{Name: "X", Payee: &ofxgo.Payee{Name: "Energisa"}}, want: "Energisa"},
		{name: "trim", tx: ofxgo.Transaction{Name: "  MERCADO  "}, want: "MERCADO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.tx))
		})
	}
}
