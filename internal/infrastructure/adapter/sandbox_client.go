package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/altlend/decisioning/pkg/openbanking"
)

// sandboxClient simulates an open banking provider: account lists and
// transaction histories derive from a hash of the access token, so the same
// token always yields the same data.
type sandboxClient struct{}

func tokenSeed(accessToken string) uint32 {
	h := sha256.Sum256([]byte(accessToken))
	return binary.BigEndian.Uint32(h[:4])
}

func (c *sandboxClient) GetAccounts(_ context.Context, accessToken string) ([]openbanking.BankAccount, error) {
	seed := tokenSeed(accessToken)
	count := int(1 + seed%4)
	accounts := make([]openbanking.BankAccount, 0, count)
	types := []openbanking.AccountType{
		openbanking.AccountTypeChecking,
		openbanking.AccountTypeSavings,
		openbanking.AccountTypeCreditCard,
	}
	for i := 0; i < count; i++ {
		accounts = append(accounts, openbanking.BankAccount{
			AccountID:       fmt.Sprintf("acct-%08x-%d", seed, i+1),
			InstitutionName: "First National Bank (Sandbox)",
			Name:            fmt.Sprintf("Sandbox Account %d", i+1),
			Type:            types[i%len(types)],
			Mask:            fmt.Sprintf("%04d", seed%10000),
			Currency:        "USD",
		})
	}
	return accounts, nil
}

func (c *sandboxClient) GetTransactions(_ context.Context, accessToken string, startDate, endDate string) ([]openbanking.Transaction, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("parse start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("parse end date: %w", err)
	}

	seed := tokenSeed(accessToken)
	amount := int64(20 + seed%600)
	everyNthPending := int(3 + seed%5)

	var transactions []openbanking.Transaction
	for i, day := 0, start; !day.After(end); i, day = i+1, day.AddDate(0, 0, 1) {
		transactions = append(transactions, openbanking.Transaction{
			TransactionID: fmt.Sprintf("txn-%08x-%d", seed, i+1),
			AccountID:     fmt.Sprintf("acct-%08x-1", seed),
			Amount:        fmt.Sprintf("%d.00", amount),
			Currency:      "USD",
			Date:          day,
			Category:      "General Merchandise",
			Pending:       i%everyNthPending == 0 && day.AddDate(0, 0, 2).After(end),
		})
	}
	return transactions, nil
}

func (c *sandboxClient) SyncTransactions(ctx context.Context, accessToken string, _ string) (openbanking.TransactionSyncResult, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)
	added, err := c.GetTransactions(ctx, accessToken, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return openbanking.TransactionSyncResult{}, err
	}
	return openbanking.TransactionSyncResult{
		Added:      added,
		NextCursor: fmt.Sprintf("cursor-%08x", tokenSeed(accessToken)),
		HasMore:    false,
	}, nil
}
