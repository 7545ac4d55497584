package pool

import (
	"context"
	"sync"
)

// Manager 按用户维护会话级的池实例：宿主应用定义的会话作用域.
// 第一次取用时构造并初始化，之后复用同一个池.
type Manager struct {
	store AccountStore
	dial  Dialer

	mu    sync.Mutex
	pools map[string]*Pool
}

// NewManager 创建池管理器.
func NewManager(store AccountStore, dial Dialer) *Manager {
	return &Manager{
		store: store,
		dial:  dial,
		pools: make(map[string]*Pool),
	}
}

// ForUser 返回用户的池，必要时创建并初始化.
func (m *Manager) ForUser(ctx context.Context, userID string) (*Pool, error) {
	m.mu.Lock()
	p, ok := m.pools[userID]
	m.mu.Unlock()

	if ok {
		return p, nil
	}

	p = New(userID, m.store, m.dial)
	if _, err := p.Initialize(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	// 初始化期间可能有并发请求先完成，保留先到的池
	if existing, ok := m.pools[userID]; ok {
		p = existing
	} else {
		m.pools[userID] = p
	}
	m.mu.Unlock()

	return p, nil
}

// Drop 移除用户的池（例如会话结束）.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	delete(m.pools, userID)
	m.mu.Unlock()
}
