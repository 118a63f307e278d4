// Package ofx reads OFX/QFX bank and credit card statements into ledger lines.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)\b`)
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	leadingDate     = regexp.MustCompile(`^\d{2}/\d{2}(/\d{2,4})?\s+`)
)

// descriptionPrefixes are noise that banks put in front of the counterparty.
var descriptionPrefixes = []string{
	"COMPRA CARTAO DEB ",
	"COMPRA CARTAO ",
	"COMPRA DEBITO ",
	"PIX RECEBIDO ",
	"PIX ENVIADO ",
	"PIX TRANSF ",
	"TED RECEBIDA ",
	"TED ENVIADA ",
	"DOC RECEBIDO ",
	"PAGTO ",
	"PAGAMENTO ",
	"POS PURCHASE ",
}

// Line is one statement transaction. Amount is always positive; Type tells
// whether money came in (revenue) or went out (expense). Pix is read from the
// raw name and memo, before describe trims the bank's prefixes.
type Line struct {
	Date        time.Time
	AccountID   string
	FitID       string
	Description string
	TrnType     string
	Type        model.CategoryType
	Amount      decimal.Decimal
	CreditCard  bool
	Pix         bool
}

// Ref returns the stable import reference for the line.
func (l Line) Ref() string {
	return model.ImportRef(l.AccountID, l.FitID, l.Date, l.Amount)
}

// Entry converts the line into an uncategorized ledger entry for userID.
func (l Line) Entry(userID string) model.Entry {
	ref := l.Ref()
	e := model.Entry{
		UserID:      userID,
		Type:        l.Type,
		Amount:      l.Amount,
		Date:        l.Date,
		ExternalRef: &ref,
	}
	if l.Description != "" {
		desc := l.Description
		e.Notes = &desc
	}
	if l.Type == model.CategoryTypeRevenue {
		e.PaymentMethod = l.paymentMethod()
	}
	return e
}

func (l Line) paymentMethod() string {
	switch {
	case l.Pix:
		return model.PaymentPix
	case l.TrnType == "CASH" || l.TrnType == "ATM":
		return model.PaymentCash
	case l.CreditCard:
		return model.PaymentCredit
	case l.TrnType == "POS":
		return model.PaymentDebit
	default:
		return model.PaymentTransfer
	}
}

// Parser reads OFX/QFX statements.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// preprocess fixes formatting issues common in bank exports: leading
// blank lines, mixed-case SEVERITY values and SGML tags missing their
// closing bracket.
func (p *Parser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagPattern.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(r io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile returns every transaction of every bank and credit card
// statement in the file. Zero-amount lines are dropped.
func (p *Parser) ParseFile(ctx context.Context, r io.Reader) ([]Line, error) {
	resp, err := p.parse(r)
	if err != nil {
		return nil, err
	}

	var lines []Line
	var bankStmts, cardStmts int

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		lines = append(lines, p.convert(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID), false)...)
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		cardStmts++
		lines = append(lines, p.convert(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID), true)...)
	}

	p.logger.Info("parsed OFX file",
		"lines", len(lines),
		"bank_statements", bankStmts,
		"card_statements", cardStmts)

	return lines, nil
}

func (p *Parser) convert(txns []ofxgo.Transaction, accountID string, card bool) []Line {
	lines := make([]Line, 0, len(txns))
	for _, t := range txns {
		amount, err := decimal.NewFromString(t.TrnAmt.FloatString(2))
		if err != nil {
			p.logger.Warn("skipping line with unreadable amount", "fitid", t.FiTID, "error", err)
			continue
		}
		if amount.IsZero() {
			continue
		}

		kind := model.CategoryTypeRevenue
		if amount.IsNegative() {
			kind = model.CategoryTypeExpense
		}

		posted := t.DtPosted.Time
		lines = append(lines, Line{
			Date:        time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
			AccountID:   accountID,
			FitID:       string(t.FiTID),
			Description: describe(t),
			TrnType:     t.TrnType.String(),
			Type:        kind,
			Amount:      amount.Abs(),
			CreditCard:  card,
			Pix:         isPix(t),
		})
	}
	return lines
}

// describe picks the most useful counterparty text of a transaction.
func describe(t ofxgo.Transaction) string {
	if t.Payee != nil && t.Payee.Name != "" {
		return strings.TrimSpace(string(t.Payee.Name))
	}

	name := strings.TrimSpace(string(t.Name))
	if t.Memo != "" && (name == "" || isGeneric(name)) {
		name = strings.TrimSpace(string(t.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(leadingDate.ReplaceAllString(name, ""))
}

func isPix(t ofxgo.Transaction) bool {
	for _, s := range []string{string(t.Name), string(t.Memo)} {
		if strings.Contains(strings.ToUpper(s), "PIX") {
			return true
		}
	}
	return t.Payee != nil && strings.Contains(strings.ToUpper(string(t.Payee.Name)), "PIX")
}

func isGeneric(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBITO", "CREDITO", "PAGAMENTO", "COMPRA", "DEBIT", "CREDIT", "PIX":
		return true
	}
	return false
}
