package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/altlend/decisioning/internal/domain/model"
	"github.com/altlend/decisioning/pkg/openbanking"
)

// TokenProvider resolves the open banking access token for a borrower.
type TokenProvider interface {
	AccessToken(ctx context.Context, borrowerID string) (string, error)
}

// OpenBankingEventSource converts a borrower's linked-account transactions
// into behavioral events. It backs the feature store's raw-event side when
// borrower history lives with an open banking provider instead of our own
// tables.
type OpenBankingEventSource struct {
	client openbanking.Client
	tokens TokenProvider
	logger *slog.Logger
}

// NewOpenBankingEventSource creates the source over a provider client. If
// client is nil, a simulated sandbox client is used for development and
// testing.
func NewOpenBankingEventSource(client openbanking.Client, tokens TokenProvider, logger *slog.Logger) *OpenBankingEventSource {
	if client == nil {
		client = &sandboxClient{}
	}
	return &OpenBankingEventSource{
		client: client,
		tokens: tokens,
		logger: logger,
	}
}

// Events fetches the borrower's settled transactions in the given date range
// and converts them. Pending transactions are skipped: unsettled amounts
// inflate volume features.
func (s *OpenBankingEventSource) Events(ctx context.Context, borrowerID, startDate, endDate string) ([]model.BehavioralEvent, error) {
	token, err := s.tokens.AccessToken(ctx, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("resolve access token: %w", err)
	}

	transactions, err := s.client.GetTransactions(ctx, token, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	events := make([]model.BehavioralEvent, 0, len(transactions))
	for _, txn := range transactions {
		if txn.Pending {
			continue
		}
		amount, err := decimal.NewFromString(txn.Amount)
		if err != nil {
			s.logger.Warn("skipping transaction with malformed amount",
				"transaction_id", txn.TransactionID,
				"amount", txn.Amount,
			)
			continue
		}
		events = append(events, model.BehavioralEvent{
			EventID:    txn.TransactionID,
			BorrowerID: borrowerID,
			Type:       model.EventTypeTransaction,
			Amount:     amount,
			OccurredAt: txn.Date,
		})
	}
	return events, nil
}

// LinkedAccountCount returns how many external accounts the borrower has
// linked, feeding the linked_account_count feature.
func (s *OpenBankingEventSource) LinkedAccountCount(ctx context.Context, borrowerID string) (int, error) {
	token, err := s.tokens.AccessToken(ctx, borrowerID)
	if err != nil {
		return 0, fmt.Errorf("resolve access token: %w", err)
	}
	accounts, err := s.client.GetAccounts(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("fetch accounts: %w", err)
	}
	return len(accounts), nil
}
