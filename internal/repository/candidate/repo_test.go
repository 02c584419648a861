package candidate

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/talentgrid/matchd/internal/db"
	"github.com/talentgrid/matchd/internal/domain"
)

// fakeStore is an in-memory key-value store for repository tests.
type fakeStore struct {
	data    map[string][]byte
	scanErr error
	getErr  error
	setErr  error
	delErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeStore) GetMulti(_ context.Context, keys []string) ([][]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if v, ok := f.data[k]; ok {
			out[i] = v
		}
	}
	return out, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) (int, error) {
	if f.delErr != nil {
		return 0, f.delErr
	}
	count := 0
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	if f.getErr != nil {
		return false, f.getErr
	}
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func seedCandidate(t *testing.T, f *fakeStore, cand domain.CandidateRecord) {
	t.Helper()
	data, err := json.Marshal(toDTO(&cand))
	if err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	f.data[candKey(cand.TenantID, cand.ID)] = data
}

func TestFetchByTenant(t *testing.T) {
	store := newFakeStore()
	seedCandidate(t, store, domain.CandidateRecord{
		ID: "c1", TenantID: "t1", Name: "Ada",
		Skills: []string{"Go"}, Vector: []float32{0.1, 0.2},
	})
	seedCandidate(t, store, domain.CandidateRecord{ID: "c2", TenantID: "t1", Name: "Grace"})
	seedCandidate(t, store, domain.CandidateRecord{ID: "x1", TenantID: "t2", Name: "Other"})

	repo := New(store)
	cands, err := repo.FetchByTenant(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cands))
	}
	for _, c := range cands {
		if c.TenantID != "t1" {
			t.Errorf("candidate %s has tenant %q, want t1", c.ID, c.TenantID)
		}
	}
	if cands[0].Name != "Ada" || len(cands[0].Vector) != 2 {
		t.Errorf("round-trip lost fields: %+v", cands[0])
	}
}

func TestFetchByTenant_Empty(t *testing.T) {
	repo := New(newFakeStore())
	cands, err := repo.FetchByTenant(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("got %d candidates, want 0", len(cands))
	}
}

func TestFetchByTenant_SkipsCorruptRecords(t *testing.T) {
	store := newFakeStore()
	seedCandidate(t, store, domain.CandidateRecord{ID: "c1", TenantID: "t1", Name: "Ada"})
	store.data[candKey("t1", "broken")] = []byte("{not json")

	repo := New(store)
	cands, err := repo.FetchByTenant(context.Background(), "t1")
	if err != nil {
		t.Fatalf("corrupt record must not fail the fetch: %v", err)
	}
	if len(cands) != 1 || cands[0].ID != "c1" {
		t.Errorf("got %d candidates, want only the decodable one", len(cands))
	}
}

func TestFetchByTenant_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.scanErr = errors.New("connection refused")

	repo := New(store)
	_, err := repo.FetchByTenant(context.Background(), "t1")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrStoreUnavailable", err)
	}
}

func TestUpsert(t *testing.T) {
	store := newFakeStore()
	repo := New(store)

	cand := domain.CandidateRecord{ID: "c1", TenantID: "t1", Name: "Ada", Vector: []float32{0.1}}

	created, err := repo.Upsert(context.Background(), &cand)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("created = false on first upsert, want true")
	}

	cand.Name = "Ada Lovelace"
	created, err = repo.Upsert(context.Background(), &cand)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("created = true on second upsert, want false")
	}

	cands, err := repo.FetchByTenant(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 1 || cands[0].Name != "Ada Lovelace" {
		t.Errorf("upsert did not replace the record: %+v", cands)
	}
}

func TestUpdateVector(t *testing.T) {
	store := newFakeStore()
	seedCandidate(t, store, domain.CandidateRecord{ID: "c1", TenantID: "t1", Name: "Ada"})

	repo := New(store)
	if err := repo.UpdateVector(context.Background(), "t1", "c1", []float32{0.5, 0.6}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cands, err := repo.FetchByTenant(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	if len(cands[0].Vector) != 2 || cands[0].Vector[0] != 0.5 {
		t.Errorf("vector not updated: %v", cands[0].Vector)
	}
	if cands[0].Name != "Ada" {
		t.Errorf("UpdateVector must preserve other fields, got name %q", cands[0].Name)
	}
}

func TestUpdateVector_NotFound(t *testing.T) {
	repo := New(newFakeStore())
	err := repo.UpdateVector(context.Background(), "t1", "missing", []float32{0.1})
	if !errors.Is(err, domain.ErrCandidateNotFound) {
		t.Errorf("err = %v, want ErrCandidateNotFound", err)
	}
}

func TestDeleteByTenant(t *testing.T) {
	store := newFakeStore()
	seedCandidate(t, store, domain.CandidateRecord{ID: "c1", TenantID: "t1", Name: "A"})
	seedCandidate(t, store, domain.CandidateRecord{ID: "c2", TenantID: "t1", Name: "B"})
	seedCandidate(t, store, domain.CandidateRecord{ID: "x1", TenantID: "t2", Name: "C"})

	repo := New(store)
	count, err := repo.DeleteByTenant(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("deleted = %d, want 2", count)
	}

	remaining, err := repo.FetchByTenant(context.Background(), "t2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("other tenant's candidates must survive, got %d", len(remaining))
	}
}

func TestDeleteByTenant_Empty(t *testing.T) {
	repo := New(newFakeStore())
	count, err := repo.DeleteByTenant(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("deleted = %d, want 0", count)
	}
}
