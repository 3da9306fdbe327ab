package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/altlend/decisioning/internal/domain/model"
)

// StubFeatureStore is a development/test adapter that synthesizes a
// deterministic borrower history from the borrower ID, so pipeline runs are
// repeatable without a database. It implements port.FeatureStore.
type StubFeatureStore struct {
	mu      sync.Mutex
	vectors map[string]model.FeatureVector
}

// NewStubFeatureStore creates a new stub adapter.
func NewStubFeatureStore() *StubFeatureStore {
	return &StubFeatureStore{vectors: make(map[string]model.FeatureVector)}
}

// Fetch returns a profile and 30 days of events derived from a hash of the
// borrower ID.
func (s *StubFeatureStore) Fetch(_ context.Context, borrowerID string) (model.BorrowerProfile, []model.BehavioralEvent, error) {
	if borrowerID == "" {
		return model.BorrowerProfile{}, nil, fmt.Errorf("borrower ID is required")
	}

	h := sha256.Sum256([]byte(borrowerID))
	seed := binary.BigEndian.Uint32(h[:4])

	now := time.Now().UTC()
	profile := model.BorrowerProfile{
		BorrowerID:      borrowerID,
		AccountOpenedAt: now.AddDate(0, 0, -int(180+seed%1800)),
		LinkedAccounts:  int(seed % 5),
	}

	// One transaction and one payment per active day; activity density and
	// amounts derive from the seed so distinct borrowers exercise distinct
	// policy paths.
	activeDays := int(8 + seed%22) // [8, 29]
	amount := decimal.NewFromInt(int64(50 + seed%900))
	onTimeEvery := int(2 + seed%6) // 1 late payment per onTimeEvery

	events := make([]model.BehavioralEvent, 0, activeDays*2)
	for day := 1; day <= activeDays; day++ {
		occurred := now.AddDate(0, 0, -day)
		events = append(events, model.BehavioralEvent{
			EventID:    fmt.Sprintf("%s-txn-%d", borrowerID, day),
			BorrowerID: borrowerID,
			Type:       model.EventTypeTransaction,
			Amount:     amount,
			OccurredAt: occurred,
		})
		events = append(events, model.BehavioralEvent{
			EventID:    fmt.Sprintf("%s-pay-%d", borrowerID, day),
			BorrowerID: borrowerID,
			Type:       model.EventTypePayment,
			Amount:     amount.Div(decimal.NewFromInt(4)),
			OccurredAt: occurred,
			OnTime:     day%onTimeEvery != 0,
		})
	}
	return profile, events, nil
}

// PersistVector keeps the vector in memory, keyed by borrower and schema.
func (s *StubFeatureStore) PersistVector(_ context.Context, vector model.FeatureVector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := vector.BorrowerID() + "/" + vector.FeatureSet() + "/" + vector.FeatureVersion()
	s.vectors[key] = vector
	return nil
}

// StoredVectors reports how many vectors have been persisted.
func (s *StubFeatureStore) StoredVectors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vectors)
}
