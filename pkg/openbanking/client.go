package openbanking

import "context"

// Client defines the interface for open banking provider operations used by
// the feature-sourcing path. Implementations may be real HTTP clients or
// stubs for testing.
type Client interface {
	// GetAccounts retrieves the accounts associated with an access token.
	GetAccounts(ctx context.Context, accessToken string) ([]BankAccount, error)

	// SyncTransactions performs incremental transaction synchronization.
	// Pass an empty cursor for the initial sync.
	SyncTransactions(ctx context.Context, accessToken string, cursor string) (TransactionSyncResult, error)

	// GetTransactions retrieves transactions for a date range
	// (dates in YYYY-MM-DD form).
	GetTransactions(ctx context.Context, accessToken string, startDate, endDate string) ([]Transaction, error)
}

// ClientConfig holds configuration for an open banking provider client.
type ClientConfig struct {
	ClientID     string
	Secret       string
	Environment  string
	BaseURL      string
	CountryCodes []string
}

// DefaultClientConfig returns configuration defaults for the provider sandbox.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Environment:  "sandbox",
		BaseURL:      "https://sandbox.plaid.com",
		CountryCodes: []string{"US"},
	}
}
