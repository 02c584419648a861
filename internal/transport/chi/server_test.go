package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/talentgrid/matchd/internal/domain"
	healthuc "github.com/talentgrid/matchd/internal/usecase/health"
	indexuc "github.com/talentgrid/matchd/internal/usecase/index"
	rankinguc "github.com/talentgrid/matchd/internal/usecase/ranking"
)

// --- Mocks ---

type mockRepo struct {
	candidates []domain.CandidateRecord
	fetchErr   error
	existing   bool
	deleted    int
	updates    int
}

func (m *mockRepo) FetchByTenant(_ context.Context, _ string) ([]domain.CandidateRecord, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.candidates, nil
}

func (m *mockRepo) UpdateVector(_ context.Context, _, _ string, _ []float32) error {
	m.updates++
	return nil
}

func (m *mockRepo) Upsert(_ context.Context, _ *domain.CandidateRecord) (bool, error) {
	return !m.existing, nil
}

func (m *mockRepo) DeleteByTenant(_ context.Context, _ string) (int, error) {
	return m.deleted, nil
}

type mockEmbedder struct {
	vector []float32
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vector, TotalTokens: 1}, nil
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestRouter(t *testing.T, repo *mockRepo, embed *mockEmbedder, pinger *mockPinger) http.Handler {
	t.Helper()
	if pinger == nil {
		pinger = &mockPinger{}
	}

	ranking := rankinguc.New(repo, embed, nil, 2).WithWorkers(1)
	index := indexuc.New(repo, embed, 2)
	health := healthuc.New(pinger, nil)

	server := NewServer(ranking, index, health, zap.NewNop())
	r := chirouter.NewRouter()
	server.Routes(r)
	return r
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// --- Search ---

func TestHandleSearch(t *testing.T) {
	repo := &mockRepo{candidates: []domain.CandidateRecord{{
		ID: "c1", TenantID: "t1", Name: "Ada",
		Skills: []string{"Python"}, Summary: "Python engineer",
		Vector: []float32{0.6, 0.8},
	}}}
	embed := &mockEmbedder{vector: []float32{1, 0}}
	handler := newTestRouter(t, repo, embed, nil)

	rec := doJSON(t, handler, http.MethodPost, "/v1/search", searchRequest{
		TenantID: "t1", Query: "python",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp searchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(resp.Matches))
	}
	m := resp.Matches[0]
	if m.ID != "c1" || m.Name != "Ada" {
		t.Errorf("match = %+v", m)
	}
	if m.SimilarityScore <= 0.3 || m.SimilarityScore > 1 {
		t.Errorf("score = %f, want in (0.3, 1]", m.SimilarityScore)
	}
	if resp.Analysis == "" {
		t.Error("analysis must not be empty")
	}
}

func TestHandleSearch_BadBody(t *testing.T) {
	handler := newTestRouter(t, &mockRepo{}, &mockEmbedder{vector: []float32{1, 0}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Code != codeBadRequest {
		t.Errorf("code = %q, want %q", resp.Code, codeBadRequest)
	}
}

func TestHandleSearch_ValidationErrors(t *testing.T) {
	handler := newTestRouter(t, &mockRepo{}, &mockEmbedder{vector: []float32{1, 0}}, nil)

	tests := []struct {
		name     string
		req      searchRequest
		wantCode string
	}{
		{"missing tenant", searchRequest{Query: "python"}, codeTenantRequired},
		{"empty query", searchRequest{TenantID: "t1"}, codeInvalidQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/v1/search", tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var resp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleSearch_StoreUnavailable(t *testing.T) {
	repo := &mockRepo{fetchErr: domain.ErrStoreUnavailable}
	handler := newTestRouter(t, repo, &mockEmbedder{vector: []float32{1, 0}}, nil)

	rec := doJSON(t, handler, http.MethodPost, "/v1/search", searchRequest{
		TenantID: "t1", Query: "python",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleSearch_EmbedderDown_DegradedOK(t *testing.T) {
	repo := &mockRepo{candidates: []domain.CandidateRecord{{
		ID: "c1", TenantID: "t1", Name: "Ada", Vector: []float32{1, 0},
	}}}
	embed := &mockEmbedder{err: domain.ErrEmbeddingUnavailable}
	handler := newTestRouter(t, repo, embed, nil)

	rec := doJSON(t, handler, http.MethodPost, "/v1/search", searchRequest{
		TenantID: "t1", Query: "python",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("degraded search must return 200, got %d", rec.Code)
	}
	var resp searchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Matches) != 0 {
		t.Errorf("matches = %d, want 0", len(resp.Matches))
	}
	if resp.Analysis != domain.AnalysisSearchDegraded {
		t.Errorf("analysis = %q", resp.Analysis)
	}
}

// --- Candidates ---

func TestHandleUpsertCandidate_Created(t *testing.T) {
	handler := newTestRouter(t, &mockRepo{}, &mockEmbedder{vector: []float32{1, 0}}, nil)

	rec := doJSON(t, handler, http.MethodPut, "/v1/candidates", candidateRequest{
		TenantID: "t1", Name: "Ada", Skills: []string{"Go"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
	var resp upsertResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" {
		t.Error("expected a generated candidate ID")
	}
	if !resp.Created {
		t.Error("created = false, want true")
	}
}

func TestHandleUpsertCandidate_Updated(t *testing.T) {
	handler := newTestRouter(t, &mockRepo{existing: true}, &mockEmbedder{vector: []float32{1, 0}}, nil)

	rec := doJSON(t, handler, http.MethodPut, "/v1/candidates", candidateRequest{
		ID: "c1", TenantID: "t1", Name: "Ada",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleUpsertCandidate_EmbedderDown(t *testing.T) {
	handler := newTestRouter(t, &mockRepo{}, &mockEmbedder{err: domain.ErrEmbeddingUnavailable}, nil)

	rec := doJSON(t, handler, http.MethodPut, "/v1/candidates", candidateRequest{
		TenantID: "t1", Name: "Ada",
	})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestHandleUpsertCandidate_MissingName(t *testing.T) {
	handler := newTestRouter(t, &mockRepo{}, &mockEmbedder{vector: []float32{1, 0}}, nil)

	rec := doJSON(t, handler, http.MethodPut, "/v1/candidates", candidateRequest{TenantID: "t1"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// --- Tenant maintenance ---

func TestHandleBackfill(t *testing.T) {
	repo := &mockRepo{candidates: []domain.CandidateRecord{
		{ID: "c1", TenantID: "t1", Name: "A"},
		{ID: "c2", TenantID: "t1", Name: "B", Vector: []float32{1, 0}},
	}}
	handler := newTestRouter(t, repo, &mockEmbedder{vector: []float32{1, 0}}, nil)

	rec := doJSON(t, handler, http.MethodPost, "/v1/tenants/t1/backfill", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var resp backfillResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Updated != 1 {
		t.Errorf("updated = %d, want 1", resp.Updated)
	}
}

func TestHandleClearTenant(t *testing.T) {
	handler := newTestRouter(t, &mockRepo{deleted: 4}, &mockEmbedder{vector: []float32{1, 0}}, nil)

	rec := doJSON(t, handler, http.MethodDelete, "/v1/tenants/t1/candidates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp clearResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Deleted != 4 {
		t.Errorf("deleted = %d, want 4", resp.Deleted)
	}
}

// --- Health ---

func TestHandleHealth(t *testing.T) {
	handler := newTestRouter(t, &mockRepo{}, &mockEmbedder{vector: []float32{1, 0}}, &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestHandleHealth_Degraded(t *testing.T) {
	pinger := &mockPinger{err: errors.New("refused")}
	handler := newTestRouter(t, &mockRepo{}, &mockEmbedder{vector: []float32{1, 0}}, pinger)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
