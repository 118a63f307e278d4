package model

import "time"

// Note is a free-text memo owned by one user.
type Note struct {
	Date      time.Time `db:"note_date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Category  *string   `db:"category" json:"category,omitempty"`
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Important bool      `db:"important" json:"important"`
}
