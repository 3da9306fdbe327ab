package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altlend/decisioning/internal/application/dto"
	"github.com/altlend/decisioning/internal/application/usecase"
	"github.com/altlend/decisioning/internal/domain/event"
	"github.com/altlend/decisioning/internal/domain/model"
	"github.com/altlend/decisioning/internal/domain/port"
	"github.com/altlend/decisioning/internal/domain/service"
	"github.com/altlend/decisioning/internal/domain/valueobject"
	"github.com/altlend/decisioning/internal/infrastructure/adapter"
)

// --- In-memory ports ---

type memoryDecisionRepo struct {
	records map[string]model.DecisionRecord
}

func newMemoryDecisionRepo() *memoryDecisionRepo {
	return &memoryDecisionRepo{records: make(map[string]model.DecisionRecord)}
}

func (m *memoryDecisionRepo) Save(_ context.Context, record model.DecisionRecord) error {
	m.records[record.ID()] = record
	return nil
}

func (m *memoryDecisionRepo) FindByID(_ context.Context, id string) (model.DecisionRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return model.DecisionRecord{}, fmt.Errorf("decision %s not found", id)
	}
	return record, nil
}

func (m *memoryDecisionRepo) FindByBorrowerID(_ context.Context, borrowerID string) ([]model.DecisionRecord, error) {
	var result []model.DecisionRecord
	for _, record := range m.records {
		if record.BorrowerID() == borrowerID {
			result = append(result, record)
		}
	}
	return result, nil
}

type noopAuditLog struct{}

func (noopAuditLog) Record(context.Context, model.AuditEntry) {}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, ...event.DomainEvent) error { return nil }

type noopRunner struct{}

func (noopRunner) Submit(port.RecomputeJob) {}

func newTestMux(t *testing.T, repo *memoryDecisionRepo) *http.ServeMux {
	t.Helper()
	logger := slog.Default()

	decide := usecase.NewDecideUseCase(
		adapter.NewStubFeatureStore(),
		repo,
		noopAuditLog{},
		noopPublisher{},
		noopRunner{},
		service.NewFeatureEngine(service.DefaultFeatureEngineConfig(), logger),
		service.NewEnsemble(logger, service.NewRuleBasedScorer(), service.NewTrustNetworkScorer()),
		service.NewFraudEngine(logger, service.NewVolumeDetector(500), service.NewConsistencyDetector()),
		service.NewPolicyEngine(service.DefaultPolicyConfig()),
		service.NewExplanationAggregator(service.DefaultExplainerRegistry()),
		logger,
	)

	handler := NewDecisionHandler(
		decide,
		usecase.NewGetDecisionUseCase(repo),
		usecase.NewListDecisionsUseCase(repo),
		logger,
	)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	NewHealthHandler(nil, logger).RegisterRoutes(mux)
	return mux
}

// --- Tests ---

func TestDecisionHandler(t *testing.T) {
	t.Run("POST /api/v1/decisions runs the pipeline", func(t *testing.T) {
		repo := newMemoryDecisionRepo()
		mux := newTestMux(t, repo)

		body, _ := json.Marshal(dto.DecideRequest{
			BorrowerID:      "borrower-001",
			RequestedAmount: 25000,
			TermMonths:      24,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/decisions", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp dto.DecisionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.DecisionID)
		assert.Contains(t, []string{"approve", "reject", "review"}, resp.Decision)
		assert.NotEmpty(t, resp.Reasons)
		assert.Equal(t, "policy-v1", resp.PolicyVersion)
		require.NotNil(t, resp.FeatureVector)
		assert.Len(t, repo.records, 1)
	})

	t.Run("POST with missing borrower id is a 400", func(t *testing.T) {
		mux := newTestMux(t, newMemoryDecisionRepo())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/decisions",
			bytes.NewReader([]byte(`{"requestedAmount": 1000}`)))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("POST with malformed body is a 400", func(t *testing.T) {
		mux := newTestMux(t, newMemoryDecisionRepo())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/decisions",
			bytes.NewReader([]byte(`{"borrowerId": `)))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("GET returns a stored decision", func(t *testing.T) {
		repo := newMemoryDecisionRepo()
		repo.records["dec-1"] = model.ReconstructDecisionRecord(
			"dec-1", "borrower-001",
			valueobject.DecisionApprove,
			[]string{"credit score 87.0 meets approval threshold 70.0"},
			87.0, valueobject.NewFraudScore(0.15),
			"policy-v1", "borrower_behavior", "v2", nil,
			time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
		)
		mux := newTestMux(t, repo)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/decisions/dec-1", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp dto.DecisionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "dec-1", resp.DecisionID)
		assert.Equal(t, "approve", resp.Decision)
		require.NotNil(t, resp.FraudScore)
		assert.Equal(t, 0.15, *resp.FraudScore)
	})

	t.Run("GET for an unknown decision is a 404", func(t *testing.T) {
		mux := newTestMux(t, newMemoryDecisionRepo())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/decisions/missing", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("GET borrower history", func(t *testing.T) {
		repo := newMemoryDecisionRepo()
		mux := newTestMux(t, repo)

		body, _ := json.Marshal(dto.DecideRequest{BorrowerID: "borrower-007"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/decisions", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/api/v1/borrowers/borrower-007/decisions", nil)
		rec = httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Decisions []dto.DecisionResponse `json:"decisions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Decisions, 1)
		assert.Equal(t, "borrower-007", resp.Decisions[0].BorrowerID)
	})

	t.Run("absent fraud score serializes as null", func(t *testing.T) {
		repo := newMemoryDecisionRepo()
		repo.records["dec-absent"] = model.ReconstructDecisionRecord(
			"dec-absent", "borrower-001",
			valueobject.DecisionReview,
			[]string{"fraud detection unavailable — requires manual review"},
			85.0, valueobject.AbsentFraudScore(),
			"policy-v1", "borrower_behavior", "v2",
			[]string{"volume_detector", "consistency_detector"},
			time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
		)
		mux := newTestMux(t, repo)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/decisions/dec-absent", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		value, present := raw["fraudScore"]
		require.True(t, present)
		assert.Nil(t, value)
	})

	t.Run("health endpoints respond", func(t *testing.T) {
		mux := newTestMux(t, newMemoryDecisionRepo())

		for _, path := range []string{"/healthz", "/readyz"} {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code, path)
		}
	})
}
