package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"decor-studio/internal/domain"
	"decor-studio/internal/domain/model"
	"decor-studio/internal/domain/ports/repository"
)

// memTxManager runs the callback without a real transaction; the in-memory
// repos below ignore the tx handle anyway.
type memTxManager struct {
	beginErr error
}

func (m *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(ctx, repository.NoTX)
}

// memJobRepo is a small in-memory implementation used by unit tests.
type memJobRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.Job
	createErr error
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{store: make(map[string]*model.Job)}
}

func (m *memJobRepo) Create(ctx context.Context, _ repository.Tx, job *model.Job) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.store[job.ID] = &cp
	return nil
}

func (m *memJobRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) MarkProcessing(ctx context.Context, id string, leaseUntil time.Time) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := j.MarkProcessing(leaseUntil); err != nil {
		return nil, err
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) ExtendLease(ctx context.Context, id string, leaseUntil time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.store[id]; ok && j.Status == model.JobStatusProcessing {
		j.LeaseExpiresAt = &leaseUntil
	}
	return nil
}

func (m *memJobRepo) Complete(ctx context.Context, id string, result *model.JobResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	return j.Complete(result)
}

func (m *memJobRepo) Fail(ctx context.Context, id string, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Status != model.JobStatusProcessing {
		return domain.ErrInvalidTransition
	}
	return j.Fail(errMsg)
}

func (m *memJobRepo) FailDispatch(ctx context.Context, id string, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Status != model.JobStatusPending {
		return domain.ErrInvalidTransition
	}
	return j.Fail(errMsg)
}

func (m *memJobRepo) FailStale(ctx context.Context, olderThan time.Time, errMsg string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, j := range m.store {
		if j.Status == model.JobStatusProcessing && j.LeaseExpiresAt != nil && j.LeaseExpiresAt.Before(olderThan) {
			_ = j.Fail(errMsg)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// memCreditRepo keeps balances and job-keyed ledger entries in memory.
type memCreditRepo struct {
	mu       sync.Mutex
	balances map[string]int64
	entries  map[string]bool // by job id
}

func newMemCreditRepo() *memCreditRepo {
	return &memCreditRepo{balances: make(map[string]int64), entries: make(map[string]bool)}
}

func (m *memCreditRepo) Balance(ctx context.Context, _ repository.Tx, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[userID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return b, nil
}

func (m *memCreditRepo) Deduct(ctx context.Context, _ repository.Tx, userID string, amount int64) (*model.Deduction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if b < amount {
		return nil, domain.ErrInsufficientCredits
	}
	m.balances[userID] = b - amount
	return &model.Deduction{Previous: b, New: b - amount, Amount: amount}, nil
}

func (m *memCreditRepo) DeductForJob(ctx context.Context, tx repository.Tx, userID, jobID string, amount int64) (bool, error) {
	if amount <= 0 {
		return false, nil
	}
	m.mu.Lock()
	if m.entries[jobID] {
		m.mu.Unlock()
		return false, nil
	}
	m.entries[jobID] = true
	m.mu.Unlock()
	if _, err := m.Deduct(ctx, tx, userID, amount); err != nil {
		return false, err
	}
	return true, nil
}

func (m *memCreditRepo) Grant(ctx context.Context, _ repository.Tx, userID string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] += amount
	return nil
}

// memSpaceRepo stores entries append-only and enforces job id uniqueness.
type memSpaceRepo struct {
	mu      sync.Mutex
	entries []*model.SpaceResult
	byJob   map[string]bool
}

func newMemSpaceRepo() *memSpaceRepo {
	return &memSpaceRepo{byJob: make(map[string]bool)}
}

func (m *memSpaceRepo) Insert(ctx context.Context, _ repository.Tx, entry *model.SpaceResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byJob[entry.JobID] {
		return false, nil
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	cp := *entry
	m.entries = append(m.entries, &cp)
	m.byJob[entry.JobID] = true
	return true, nil
}

func (m *memSpaceRepo) Latest(ctx context.Context, _ repository.Tx, spaceID, userID string) (*model.SpaceResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.SpaceID == spaceID && e.UserID == userID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// memCache is an in-memory ResultCache.
type memCache struct {
	mu    sync.Mutex
	store map[string]*model.SpaceResult
}

func newMemCache() *memCache {
	return &memCache{store: make(map[string]*model.SpaceResult)}
}

func (m *memCache) Get(ctx context.Context, spaceID, userID string) (*model.SpaceResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[spaceID+":"+userID]
	return e, ok
}

func (m *memCache) Store(ctx context.Context, entry *model.SpaceResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[entry.SpaceID+":"+entry.UserID] = entry
	return nil
}

// stubDispatcher lets tests script the dispatch outcome.
type stubDispatcher struct {
	mu      sync.Mutex
	calls   []string
	dispErr error
}

func (d *stubDispatcher) Dispatch(ctx context.Context, jobID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, jobID)
	return d.dispErr
}

// memClaimer hands out at most one claim per job id.
type memClaimer struct {
	mu     sync.Mutex
	claims map[string]string
}

func newMemClaimer() *memClaimer {
	return &memClaimer{claims: make(map[string]string)}
}

func (m *memClaimer) TryClaim(ctx context.Context, jobID string, _ time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.claims[jobID]; taken {
		return "", false, nil
	}
	token := "tok-" + jobID
	m.claims[jobID] = token
	return token, true, nil
}

func (m *memClaimer) Release(ctx context.Context, jobID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claims[jobID] == token {
		delete(m.claims, jobID)
	}
	return nil
}
