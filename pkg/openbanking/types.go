// Package openbanking provides data types and client interfaces for open
// banking integrations (linked bank accounts, transaction syncing). The
// decisioning core consumes synced transactions as raw behavioral events.
package openbanking

import "time"

// AccountType represents the type of external bank account.
type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
	AccountTypeLoan       AccountType = "LOAN"
	AccountTypeOther      AccountType = "OTHER"
)

// BankAccount represents an external bank account linked via open banking.
type BankAccount struct {
	// AccountID is the provider-assigned unique identifier.
	AccountID string
	// InstitutionName is the human-readable institution name.
	InstitutionName string
	// Name is the account name (e.g. "Plaid Checking").
	Name string
	// Type is the account type.
	Type AccountType
	// Mask is the last 4 digits of the account number.
	Mask string
	// Currency is the ISO 4217 currency code.
	Currency string
}

// Transaction represents a single transaction from an external account.
type Transaction struct {
	// TransactionID is the provider-assigned transaction identifier.
	TransactionID string
	// AccountID identifies the account this transaction belongs to.
	AccountID string
	// Amount is the transaction amount as a decimal string
	// (positive = debit, negative = credit).
	Amount string
	// Currency is the ISO 4217 currency code.
	Currency string
	// Date is the transaction date.
	Date time.Time
	// Category is the provider-assigned spending category, if any.
	Category string
	// Pending indicates the transaction has not settled yet.
	Pending bool
}

// TransactionSyncResult is the outcome of an incremental transaction sync.
type TransactionSyncResult struct {
	Added      []Transaction
	NextCursor string
	HasMore    bool
}
