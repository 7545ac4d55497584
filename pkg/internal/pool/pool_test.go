package pool_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumik183/instavault/pkg/internal/model"
	"github.com/soumik183/instavault/pkg/internal/pool"
)

// fakeStore 内存版账号注册表，用于隔离测试池的行为.
type fakeStore struct {
	mu           sync.Mutex
	order        []string
	accounts     map[string]*model.StorageAccount
	setActiveErr error
}

func newFakeStore(accounts ...model.StorageAccount) *fakeStore {
	s := &fakeStore{accounts: make(map[string]*model.StorageAccount)}
	for i := range accounts {
		a := accounts[i]
		s.order = append(s.order, a.ID)
		s.accounts[a.ID] = &a
	}

	return s
}

func (s *fakeStore) ListForUser(ctx context.Context, userID string) ([]model.StorageAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.StorageAccount, 0, len(s.order))
	for _, id := range s.order {
		if a := s.accounts[id]; a.UserID == userID {
			out = append(out, *a)
		}
	}

	return out, nil
}

func (s *fakeStore) GetAccount(ctx context.Context, id string) (*model.StorageAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, errors.New("record not found")
	}

	snapshot := *a

	return &snapshot, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id string, status model.AccountStatus, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return errors.New("record not found")
	}

	now := time.Now().UTC()
	a.Status = status
	a.ErrorMessage = errorMessage
	a.LastChecked = &now

	return nil
}

func (s *fakeStore) SetActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.setActiveErr != nil {
		return s.setActiveErr
	}

	a, ok := s.accounts[id]
	if !ok {
		return errors.New("record not found")
	}

	a.IsActive = active

	return nil
}

// fakeBackend 内存版对象存储后端.
type fakeBackend struct {
	probeErr error
	putErr   error

	mu      sync.Mutex
	objects map[string][]byte
	removed []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{objects: make(map[string][]byte)}
}

func (b *fakeBackend) Probe(ctx context.Context) error {
	return b.probeErr
}

func (b *fakeBackend) Put(ctx context.Context, objectPath string, reader io.Reader, size int64, contentType string) (string, error) {
	if b.putErr != nil {
		return "", b.putErr
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	b.objects[objectPath] = data
	b.mu.Unlock()

	return "https://fake.storage/" + objectPath, nil
}

func (b *fakeBackend) Get(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.objects[objectPath]
	if !ok {
		return nil, errors.New("object not found")
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *fakeBackend) Remove(ctx context.Context, objectPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, objectPath)
	b.removed = append(b.removed, objectPath)

	return nil
}

// okDialer 每个账号都拨通一个空后端.
func okDialer() pool.Dialer {
	return func(account *model.StorageAccount) (pool.ObjectStorage, error) {
		return newFakeBackend(), nil
	}
}

// backendDialer 按账号 id 返回指定后端，未指定的账号拨通空后端.
func backendDialer(backends map[string]*fakeBackend) pool.Dialer {
	return func(account *model.StorageAccount) (pool.ObjectStorage, error) {
		if b, ok := backends[account.ID]; ok {
			return b, nil
		}

		return newFakeBackend(), nil
	}
}

// TestInitialize 探测通过的启用账号进池，失败的记录错误，停用的跳过.
func TestInitialize(t *testing.T) {
	ctx := t.Context()

	store := newFakeStore(
		rankAccount("good", func(a *model.StorageAccount) { a.IsPrimary = true }),
		rankAccount("broken", nil),
		rankAccount("paused", func(a *model.StorageAccount) { a.IsActive = false }),
	)

	backends := map[string]*fakeBackend{
		"broken": {probeErr: errors.New("connection refused")},
	}

	p := pool.New("test-user@example.com", store, backendDialer(backends))

	accounts, err := p.Initialize(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	assert.Equal(t, 1, p.Len())
	assert.Equal(t, "good", p.DefaultID())

	// 返回的完整列表带着探测结果，供展示层显示失败账号
	byID := make(map[string]model.StorageAccount, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	assert.Equal(t, model.StatusConnected, byID["good"].Status)
	assert.Equal(t, model.StatusError, byID["broken"].Status)
	assert.Contains(t, byID["broken"].ErrorMessage, "connection refused")
	// 停用账号不探测，状态保持原样
	assert.Equal(t, model.StatusConnected, byID["paused"].Status)

	// 探测结果回写注册表
	row, err := store.GetAccount(ctx, "broken")
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, row.Status)
	assert.NotNil(t, row.LastChecked)
}

// TestAddProbeFailure 探测失败的账号不进池，错误信息可见.
func TestAddProbeFailure(t *testing.T) {
	ctx := t.Context()

	store := newFakeStore()
	backends := map[string]*fakeBackend{
		"bad": {probeErr: errors.New("invalid credentials")},
	}
	p := pool.New("test-user@example.com", store, backendDialer(backends))

	account := rankAccount("bad", nil)
	account.Status = model.StatusDisconnected
	store.accounts["bad"] = &account
	store.order = append(store.order, "bad")

	err := p.Add(ctx, &account)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, model.StatusError, account.Status)
}

// TestAddFirstAccountBecomesDefault 第一个进池的账号成为默认账号.
func TestAddFirstAccountBecomesDefault(t *testing.T) {
	ctx := t.Context()

	store := newFakeStore()
	p := pool.New("test-user@example.com", store, okDialer())

	first := rankAccount("first", nil)
	store.accounts["first"] = &first
	store.order = append(store.order, "first")
	require.NoError(t, p.Add(ctx, &first))
	assert.Equal(t, "first", p.DefaultID())

	second := rankAccount("second", nil)
	store.accounts["second"] = &second
	store.order = append(store.order, "second")
	require.NoError(t, p.Add(ctx, &second))
	// 默认账号不因后续加入而改变
	assert.Equal(t, "first", p.DefaultID())
}

// TestRemoveRecomputesDefaultLazily 移除默认账号后，默认账号在下一次
// Select 时惰性重算.
func TestRemoveRecomputesDefaultLazily(t *testing.T) {
	ctx := t.Context()

	store := newFakeStore(
		rankAccount("a", func(acc *model.StorageAccount) { acc.IsPrimary = true }),
		rankAccount("b", func(acc *model.StorageAccount) {
			acc.CreatedAt = acc.CreatedAt.Add(time.Hour)
		}),
	)

	p := pool.New("test-user@example.com", store, okDialer())
	_, err := p.Initialize(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", p.DefaultID())

	p.Remove("a")
	assert.Empty(t, p.DefaultID())
	assert.Equal(t, 1, p.Len())

	h, err := p.Select(0)
	require.NoError(t, err)
	assert.Equal(t, "b", h.Account.ID)
	assert.Equal(t, "b", p.DefaultID())
}

// TestToggleActiveRollback 注册表写失败时本地快照回滚.
func TestToggleActiveRollback(t *testing.T) {
	ctx := t.Context()

	store := newFakeStore(rankAccount("a", nil))
	p := pool.New("test-user@example.com", store, okDialer())
	_, err := p.Initialize(ctx)
	require.NoError(t, err)

	store.mu.Lock()
	store.setActiveErr = errors.New("db unavailable")
	store.mu.Unlock()

	active, err := p.ToggleActive(ctx, "a")
	require.Error(t, err)
	assert.True(t, active, "snapshot should be rolled back to the previous value")

	h, ok := p.Get("a")
	require.True(t, ok)
	assert.True(t, h.Account.IsActive)
}

// TestToggleActiveUnknownAccount 不在池中的账号返回专门的错误.
func TestToggleActiveUnknownAccount(t *testing.T) {
	p := pool.New("test-user@example.com", newFakeStore(), okDialer())

	_, err := p.ToggleActive(t.Context(), "ghost")
	assert.ErrorIs(t, err, pool.ErrAccountNotFound)
}

// TestReloadAccountPreservesSessionStatus 重载只刷新注册表拥有的字段，
// 会话内探测得到的状态保留.
func TestReloadAccountPreservesSessionStatus(t *testing.T) {
	ctx := t.Context()

	store := newFakeStore(rankAccount("a", nil))
	p := pool.New("test-user@example.com", store, okDialer())
	_, err := p.Initialize(ctx)
	require.NoError(t, err)

	// 注册表中的计数器被刷新，状态被别的进程改掉
	store.mu.Lock()
	store.accounts["a"].StorageUsed = 42 * mib
	store.accounts["a"].FilesCount = 7
	store.accounts["a"].Status = model.StatusDisconnected
	store.mu.Unlock()

	require.NoError(t, p.ReloadAccount(ctx, "a"))

	h, ok := p.Get("a")
	require.True(t, ok)
	assert.Equal(t, 42*mib, h.Account.StorageUsed)
	assert.Equal(t, int64(7), h.Account.FilesCount)
	assert.Equal(t, model.StatusConnected, h.Account.Status)
}

// TestStats 聚合统计只覆盖存活账号.
func TestStats(t *testing.T) {
	ctx := t.Context()

	store := newFakeStore(
		rankAccount("a", func(acc *model.StorageAccount) {
			acc.StorageUsed = 100 * mib
			acc.FilesCount = 3
		}),
		rankAccount("b", func(acc *model.StorageAccount) {
			acc.StorageUsed = 50 * mib
			acc.FilesCount = 2
		}),
	)

	p := pool.New("test-user@example.com", store, okDialer())
	_, err := p.Initialize(ctx)
	require.NoError(t, err)

	got := p.Stats()
	assert.Equal(t, pool.Totals{
		TotalUsed:      150 * mib,
		TotalLimit:     1000 * mib,
		TotalFiles:     5,
		AccountsCount:  2,
		ConnectedCount: 2,
	}, got)
}

// TestManagerForUser 同一用户复用同一个池，不同用户互相隔离.
func TestManagerForUser(t *testing.T) {
	ctx := t.Context()

	other := rankAccount("other", nil)
	other.UserID = "someone-else@example.com"

	store := newFakeStore(rankAccount("a", nil), other)
	m := pool.NewManager(store, okDialer())

	p1, err := m.ForUser(ctx, "test-user@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, p1.Len())

	p2, err := m.ForUser(ctx, "test-user@example.com")
	require.NoError(t, err)
	assert.Same(t, p1, p2)

	p3, err := m.ForUser(ctx, "someone-else@example.com")
	require.NoError(t, err)
	assert.NotSame(t, p1, p3)
	assert.Equal(t, 1, p3.Len())

	m.Drop("test-user@example.com")

	p4, err := m.ForUser(ctx, "test-user@example.com")
	require.NoError(t, err)
	assert.NotSame(t, p1, p4)
}
