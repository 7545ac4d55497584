// Package pool 维护一个用户会话内的存活账号池：已通过探测的账号句柄、
// 当前默认账号，以及上传目标的挑选策略. 池不是计数器的可信来源，
// 计数器保存在账号注册表中，每次变更操作后重新加载.
package pool

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/soumik183/instavault/pkg/internal/model"
	nlog "github.com/soumik183/instavault/pkg/log"
	"github.com/soumik183/instavault/pkg/metrics"
)

var (
	// ErrNoStorage 没有满足条件的账号可接收上传，对调用方是终态失败.
	ErrNoStorage = errors.New("no available storage: all accounts are full, inactive or disconnected")
	// ErrAccountNotFound 请求的账号不在存活池中.
	ErrAccountNotFound = errors.New("account not found in pool")
)

// ObjectStorage 一个账号后端的对象操作能力.
type ObjectStorage interface {
	// Probe 连通性与能力检查；后端错误原样返回.
	Probe(ctx context.Context) error
	// Put 写入对象并返回可取回 URL.
	Put(ctx context.Context, objectPath string, reader io.Reader, size int64, contentType string) (string, error)
	// Get 打开对象可读流.
	Get(ctx context.Context, objectPath string) (io.ReadCloser, error)
	// Remove 删除对象.
	Remove(ctx context.Context, objectPath string) error
}

// AccountStore 池依赖的注册表操作子集.
type AccountStore interface {
	ListForUser(ctx context.Context, userID string) ([]model.StorageAccount, error)
	GetAccount(ctx context.Context, id string) (*model.StorageAccount, error)
	UpdateStatus(ctx context.Context, id string, status model.AccountStatus, errorMessage string) error
	SetActive(ctx context.Context, id string, active bool) error
}

// Dialer 根据账号行构建其对象存储客户端.
type Dialer func(account *model.StorageAccount) (ObjectStorage, error)

// Handle 池中一个存活账号：已探测的客户端加账号快照.
type Handle struct {
	Client  ObjectStorage
	Account model.StorageAccount
}

// Pool 一个用户会话的存活账号池. 显式构造并传递，不使用全局单例，
// 便于隔离测试各自独立的池.
type Pool struct {
	userID string
	store  AccountStore
	dial   Dialer

	mu        sync.RWMutex
	live      map[string]*Handle
	defaultID string
}

// New 创建指定用户的空池，随后通过 Initialize 或 Add 填充.
func New(userID string, store AccountStore, dial Dialer) *Pool {
	return &Pool{
		userID: userID,
		store:  store,
		dial:   dial,
		live:   make(map[string]*Handle),
	}
}

// UserID 返回池所属用户.
func (p *Pool) UserID() string { return p.userID }

// probeConcurrency Initialize 时并行探测的上限.
const probeConcurrency = 4

// Initialize 从注册表加载用户全部账号，探测所有启用的账号并把通过的加入
// 存活池，探测结果回写注册表. 返回完整账号列表（包含探测失败的），
// 供展示层显示失败账号.
func (p *Pool) Initialize(ctx context.Context) ([]model.StorageAccount, error) {
	accounts, err := p.store.ListForUser(ctx, p.userID)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)

	for i := range accounts {
		if !accounts[i].IsActive {
			continue
		}

		account := &accounts[i]

		g.Go(func() error {
			p.probeAndAdmit(gctx, account)
			return nil
		})
	}

	_ = g.Wait()

	// 计算初始默认账号：主账号且已连接 > 第一个已连接 > 无
	p.mu.Lock()
	p.defaultID = p.computeDefaultLocked()
	p.mu.Unlock()

	p.publishGauge()

	return accounts, nil
}

// probeAndAdmit 探测单个账号，通过则加入存活池；状态与错误信息回写注册表，
// 并同步到返回给调用方的快照上.
func (p *Pool) probeAndAdmit(ctx context.Context, account *model.StorageAccount) {
	client, err := p.dial(account)
	if err == nil {
		err = client.Probe(ctx)
	}

	if err != nil {
		// 后端错误信息原样保留，供用户展示
		account.Status = model.StatusError
		account.ErrorMessage = err.Error()
		metrics.ProbeFailures.WithLabelValues(account.ID).Inc()

		if uerr := p.store.UpdateStatus(ctx, account.ID, model.StatusError, err.Error()); uerr != nil {
			nlog.Logger().Warn().Err(uerr).Str("account", account.ID).Msg("failed to record probe error")
		}

		return
	}

	account.Status = model.StatusConnected
	account.ErrorMessage = ""

	if uerr := p.store.UpdateStatus(ctx, account.ID, model.StatusConnected, ""); uerr != nil {
		nlog.Logger().Warn().Err(uerr).Str("account", account.ID).Msg("failed to record probe success")
	}

	p.mu.Lock()
	p.live[account.ID] = &Handle{Client: client, Account: *account}
	p.mu.Unlock()
}

// Add 探测并将账号加入存活池. 探测失败时错误记入注册表并返回，不加入池.
func (p *Pool) Add(ctx context.Context, account *model.StorageAccount) error {
	snapshot := *account
	p.probeAndAdmit(ctx, &snapshot)

	if snapshot.Status != model.StatusConnected {
		*account = snapshot
		return errors.New(snapshot.ErrorMessage)
	}

	*account = snapshot

	p.mu.Lock()
	if p.defaultID == "" {
		p.defaultID = snapshot.ID
	}
	p.mu.Unlock()

	p.publishGauge()

	return nil
}

// Remove 仅从存活池移除（注册表删除由上层单独调用）. 若移除的是默认账号，
// 默认账号置空，等到下一次 Select 时惰性重算.
func (p *Pool) Remove(id string) {
	p.mu.Lock()
	delete(p.live, id)

	if p.defaultID == id {
		p.defaultID = ""
	}
	p.mu.Unlock()

	p.publishGauge()
}

// Evict 会话内的故障剔除：上传写入失败后把账号移出存活池，
// 视为本会话的临时能力丧失，不回写注册表.
func (p *Pool) Evict(id string) {
	p.Remove(id)
}

// Get 返回存活句柄.
func (p *Pool) Get(id string) (*Handle, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	h, ok := p.live[id]

	return h, ok
}

// Len 存活账号数量.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.live)
}

// List 返回存活账号快照，按创建时间升序，便于稳定展示.
func (p *Pool) List() []model.StorageAccount {
	p.mu.RLock()
	defer p.mu.RUnlock()

	accounts := make([]model.StorageAccount, 0, len(p.live))
	for _, h := range p.live {
		accounts = append(accounts, h.Account)
	}

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].ID < accounts[j].ID
		}

		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	return accounts
}

// DefaultID 当前默认账号 id，可能为空.
func (p *Pool) DefaultID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.defaultID
}

// ToggleActive 翻转用户控制的启用开关，先改本地快照再写注册表；
// 注册表写失败时回滚本地快照（悲观回退，不假设读己之写）.
func (p *Pool) ToggleActive(ctx context.Context, id string) (bool, error) {
	p.mu.Lock()
	h, ok := p.live[id]
	if !ok {
		p.mu.Unlock()
		return false, ErrAccountNotFound
	}

	prev := h.Account.IsActive
	next := !prev
	h.Account.IsActive = next
	p.mu.Unlock()

	if err := p.store.SetActive(ctx, id, next); err != nil {
		p.mu.Lock()
		if h, ok := p.live[id]; ok {
			h.Account.IsActive = prev
		}
		p.mu.Unlock()

		return prev, err
	}

	return next, nil
}

// ReloadAccount 从注册表重读账号行并更新存活快照（计数器变更后调用）.
func (p *Pool) ReloadAccount(ctx context.Context, id string) error {
	account, err := p.store.GetAccount(ctx, id)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	h, ok := p.live[id]
	if !ok {
		return ErrAccountNotFound
	}

	// 保留会话内探测得到的状态，只刷新注册表拥有的字段
	status, msg := h.Account.Status, h.Account.ErrorMessage
	h.Account = *account
	h.Account.Status, h.Account.ErrorMessage = status, msg

	return nil
}

// Totals 聚合存活账号的用量统计.
type Totals struct {
	TotalUsed      int64 `json:"total_used"`
	TotalLimit     int64 `json:"total_limit"`
	TotalFiles     int64 `json:"total_files"`
	AccountsCount  int   `json:"accounts_count"`
	ConnectedCount int   `json:"connected_count"`
}

// Stats 返回存活账号的聚合统计.
func (p *Pool) Stats() Totals {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var t Totals
	for _, h := range p.live {
		t.TotalUsed += h.Account.StorageUsed
		t.TotalLimit += h.Account.StorageLimit
		t.TotalFiles += h.Account.FilesCount
		t.AccountsCount++

		if h.Account.Status == model.StatusConnected {
			t.ConnectedCount++
		}
	}

	return t
}

// computeDefaultLocked 主账号且已连接优先，否则第一个已连接账号（按创建时间），
// 都没有则为空. 调用方必须持有写锁.
func (p *Pool) computeDefaultLocked() string {
	var first *Handle

	handles := make([]*Handle, 0, len(p.live))
	for _, h := range p.live {
		handles = append(handles, h)
	}

	sort.Slice(handles, func(i, j int) bool {
		if handles[i].Account.CreatedAt.Equal(handles[j].Account.CreatedAt) {
			return handles[i].Account.ID < handles[j].Account.ID
		}

		return handles[i].Account.CreatedAt.Before(handles[j].Account.CreatedAt)
	})

	for _, h := range handles {
		if h.Account.Status != model.StatusConnected {
			continue
		}

		if h.Account.IsPrimary {
			return h.Account.ID
		}

		if first == nil {
			first = h
		}
	}

	if first != nil {
		return first.Account.ID
	}

	return ""
}

// publishGauge 更新存活账号数量指标.
func (p *Pool) publishGauge() {
	p.mu.RLock()
	n := len(p.live)
	p.mu.RUnlock()

	metrics.LiveAccounts.Set(float64(n))
}
