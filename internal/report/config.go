// Package report exports a client's books to Google Sheets.
package report

import (
	"fmt"
	"time"

	"github.com/Veraticus/shopkeep/internal/common"
)

// Credentials tells how the exporter signs in to Google.
type Credentials int

const (
	// NoCredentials means nothing usable was configured.
	NoCredentials Credentials = iota
	// UserCredentials signs in as the shop owner with a stored refresh token.
	UserCredentials
	// ServiceAccount signs in with a service account key file.
	ServiceAccount
)

// Config controls where the monthly report goes and how it is written.
type Config struct {
	// OAuth client of the shop owner, filled in by "report auth".
	ClientID     string
	ClientSecret string
	RefreshToken string
	// ServiceAccountPath is used instead of the owner's login when set.
	ServiceAccountPath string

	// SpreadsheetID reuses an existing spreadsheet; empty creates one
	// titled SpreadsheetName in TimeZone.
	SpreadsheetID   string
	SpreadsheetName string
	TimeZone        string

	BatchSize        int // rows per values update
	RetryAttempts    int
	RetryDelay       time.Duration
	EnableFormatting bool // money columns and bold headers
}

// DefaultConfig is a report for a Brazilian shop.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "Relatório Financeiro",
		TimeZone:         "America/Sao_Paulo",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
		EnableFormatting: true,
	}
}

// Credentials reports which sign-in the config asks for. A half filled
// OAuth client counts as none.
func (c *Config) Credentials() Credentials {
	switch {
	case c.ServiceAccountPath != "":
		return ServiceAccount
	case c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != "":
		return UserCredentials
	default:
		return NoCredentials
	}
}

// Validate rejects a config the exporter cannot sign in with or write with.
func (c *Config) Validate() error {
	creds := c.Credentials()
	if creds == NoCredentials {
		return fmt.Errorf("%w: google credentials (run \"shopkeep report auth\" or set a service account)", common.ErrMissingConfig)
	}
	if creds == ServiceAccount && (c.ClientID != "" || c.RefreshToken != "") {
		return fmt.Errorf("%w: both a service account and an OAuth login are set", common.ErrInvalidConfig)
	}

	switch {
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	case c.RetryAttempts < 0:
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}

	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			return fmt.Errorf("%w: time zone %q: %v", common.ErrInvalidConfig, c.TimeZone, err)
		}
	}
	return nil
}
