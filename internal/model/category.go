package model

import "time"

// CategoryType indicates whether a category tracks revenue or expenses.
type CategoryType string

const (
	// CategoryTypeRevenue represents categories for money coming in.
	CategoryTypeRevenue CategoryType = "revenue"
	// CategoryTypeExpense represents categories for money going out.
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeRevenue || t == CategoryTypeExpense
}

// Category is a revenue or expense category offered to one business type.
type Category struct {
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	ID             string       `db:"id" json:"id"`
	Name           string       `db:"name" json:"name"`
	BusinessTypeID string       `db:"business_type_id" json:"business_type_id"`
	Type           CategoryType `db:"-" json:"type"`
	IsActive       bool         `db:"is_active" json:"is_active"`
}

// ActiveCategory links a user to one category they track. Exactly one of
// RevenueCategoryID and ExpenseCategoryID is set.
type ActiveCategory struct {
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	RevenueCategoryID *string   `db:"revenue_category_id" json:"revenue_category_id"`
	ExpenseCategoryID *string   `db:"expense_category_id" json:"expense_category_id"`
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	Active            bool      `db:"active" json:"active"`
}

// Type reports which kind of category the association points at.
func (a ActiveCategory) Type() CategoryType {
	if a.RevenueCategoryID != nil {
		return CategoryTypeRevenue
	}
	return CategoryTypeExpense
}

// CategoryID returns the referenced category id regardless of kind.
func (a ActiveCategory) CategoryID() string {
	if a.RevenueCategoryID != nil {
		return *a.RevenueCategoryID
	}
	if a.ExpenseCategoryID != nil {
		return *a.ExpenseCategoryID
	}
	return ""
}

// CategorySelection is the set of category ids a user opts into.
type CategorySelection struct {
	Revenue []string `json:"revenue"`
	Expense []string `json:"expense"`
}

// Len returns the number of selected categories.
func (s CategorySelection) Len() int {
	return len(s.Revenue) + len(s.Expense)
}

// Associations expands the selection into association rows for userID:
// revenue rows first, then expense rows, all active.
func (s CategorySelection) Associations(userID string) []ActiveCategory {
	rows := make([]ActiveCategory, 0, s.Len())
	for _, id := range s.Revenue {
		id := id
		rows = append(rows, ActiveCategory{UserID: userID, RevenueCategoryID: &id, Active: true})
	}
	for _, id := range s.Expense {
		id := id
		rows = append(rows, ActiveCategory{UserID: userID, ExpenseCategoryID: &id, Active: true})
	}
	return rows
}

// SplitAssociations separates association rows into revenue and expense
// category ids, preserving order.
func SplitAssociations(rows []ActiveCategory) CategorySelection {
	sel := CategorySelection{Revenue: []string{}, Expense: []string{}}
	for _, r := range rows {
		switch {
		case r.RevenueCategoryID != nil:
			sel.Revenue = append(sel.Revenue, *r.RevenueCategoryID)
		case r.ExpenseCategoryID != nil:
			sel.Expense = append(sel.Expense, *r.ExpenseCategoryID)
		}
	}
	return sel
}
