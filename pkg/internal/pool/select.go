package pool

import (
	"sort"

	"github.com/soumik183/instavault/pkg/internal/model"
)

// Rank 对候选账号做纯排序：先过滤出已连接、启用且剩余容量足够的账号，
// 再按 主账号 > 速度档位 > 更低用量比例 排序. 不做任何 I/O，
// 对固定输入是确定性的.
func Rank(accounts []model.StorageAccount, requiredBytes int64) []model.StorageAccount {
	candidates := make([]model.StorageAccount, 0, len(accounts))

	for _, a := range accounts {
		if a.Status != model.StatusConnected || !a.IsActive {
			continue
		}

		if a.AvailableBytes() < requiredBytes {
			continue
		}

		candidates = append(candidates, a)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := &candidates[i], &candidates[j]

		// 主账号优先
		if a.IsPrimary != b.IsPrimary {
			return a.IsPrimary
		}

		// 速度档位 fast > medium > slow
		if sa, sb := a.ConnectionSpeed.Score(), b.ConnectionSpeed.Score(); sa != sb {
			return sa > sb
		}

		// 更低的用量比例优先
		return a.UsageRatio() < b.UsageRatio()
	})

	return candidates
}

// Select 为指定字节数挑选上传目标账号. 没有合格账号时返回 ErrNoStorage，
// 这是调用方的硬失败，不会隐式越过容量上限.
// 若默认账号此前被移除，这里会顺带惰性重算默认账号.
func (p *Pool) Select(requiredBytes int64) (*Handle, error) {
	p.mu.Lock()

	if p.defaultID == "" && len(p.live) > 0 {
		p.defaultID = p.computeDefaultLocked()
	}

	accounts := make([]model.StorageAccount, 0, len(p.live))
	for _, h := range p.live {
		accounts = append(accounts, h.Account)
	}
	p.mu.Unlock()

	// 先按创建时间排定基准顺序，保证排序对固定输入确定
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].ID < accounts[j].ID
		}

		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	ranked := Rank(accounts, requiredBytes)
	if len(ranked) == 0 {
		return nil, ErrNoStorage
	}

	h, ok := p.Get(ranked[0].ID)
	if !ok {
		return nil, ErrNoStorage
	}

	return h, nil
}
