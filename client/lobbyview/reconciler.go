// Package lobbyview 客户端大厅视图收敛：权威读失败时分级降级，
// 宁可给出降级快照也不把用户卡在硬错误上。
package lobbyview

import (
	"context"
	"sync"
	"time"

	"BetHub/logger"
	lobbymodel "BetHub/module/lobby/model"
	"BetHub/tools/errs"
)

// Tier 视图层级，按尝试顺序排列
type Tier int32

const (
	TierAuthoritative Tier = 0 // 直接读到权威大厅
	TierRepaired      Tier = 1 // 修复后重读成功
	TierReconstructed Tier = 2 // 本地合成快照（兼容模式）
	TierEmergency     Tier = 3 // 非预期异常兜底
)

func (t Tier) String() string {
	switch t {
	case TierAuthoritative:
		return "authoritative"
	case TierRepaired:
		return "repaired"
	case TierReconstructed:
		return "reconstructed"
	case TierEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// Fetcher 读路径抽象：HTTP 客户端或服务内直连均可
type Fetcher interface {
	GetLobby(ctx context.Context, lobbyID string) (*lobbymodel.Lobby, error)
	Repair(ctx context.Context, lobbyID string) error
}

// Snapshot 一次收敛的产出。Warning 非空表示降级提示，永远不是硬错误。
type Snapshot struct {
	Tier    Tier
	Lobby   *lobbymodel.Lobby
	Warning string
}

// synthesize 本地合成快照：请求者为房主兼唯一成员，从不写回存储
func synthesize(lobbyID, userID, kind string) *lobbymodel.Lobby {
	return &lobbymodel.Lobby{
		LobbyID:    lobbyID,
		OwnerID:    userID,
		Kind:       kind,
		Status:     lobbymodel.StatusActive,
		Capacity:   lobbymodel.CapacityForKind(lobbymodel.KindDuo),
		MemberIDs:  []string{userID},
		CreateTime: time.Now(),
	}
}

// Resolve 逐级尝试：权威读 → 修复后重读一次 → 本地重建。
// 任何一级骤然 panic 时落到 emergency 快照，绝不向调用方抛出。
func Resolve(ctx context.Context, f Fetcher, lobbyID, userID string) (snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("lobby view resolve panic, lobby=%s: %v", lobbyID, r)
			snap = Snapshot{
				Tier:    TierEmergency,
				Lobby:   synthesize(lobbyID, userID, lobbymodel.KindEmergency),
				Warning: "lobby state unavailable, emergency mode",
			}
		}
	}()

	l, err := f.GetLobby(ctx, lobbyID)
	if err == nil {
		return Snapshot{Tier: TierAuthoritative, Lobby: l}
	}
	logger.Warnf("authoritative lobby fetch failed, lobby=%s: %v", lobbyID, errs.AsCodeError(err).Msg)

	if rerr := f.Repair(ctx, lobbyID); rerr == nil {
		if l, err = f.GetLobby(ctx, lobbyID); err == nil {
			return Snapshot{Tier: TierRepaired, Lobby: l}
		}
	}

	return Snapshot{
		Tier:    TierReconstructed,
		Lobby:   synthesize(lobbyID, userID, lobbymodel.KindReconstructed),
		Warning: "lobby running in compatibility mode",
	}
}

// Poller 周期性重跑收敛；Stop 之后迟到的结果直接丢弃。
// 后续某次权威读成功会把视图静默升回真实状态。
type Poller struct {
	fetcher  Fetcher
	lobbyID  string
	userID   string
	interval time.Duration
	onUpdate func(Snapshot)

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
}

func NewPoller(f Fetcher, lobbyID, userID string, interval time.Duration, onUpdate func(Snapshot)) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Poller{
		fetcher:  f,
		lobbyID:  lobbyID,
		userID:   userID,
		interval: interval,
		onUpdate: onUpdate,
	}
}

func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		p.deliver(Resolve(ctx, p.fetcher, p.lobbyID, p.userID))
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.deliver(Resolve(ctx, p.fetcher, p.lobbyID, p.userID))
			}
		}
	}()
}

func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
}

// deliver 投递前再检查一次 stopped，迟到结果不触发回调
func (p *Poller) deliver(s Snapshot) {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped || p.onUpdate == nil {
		return
	}
	p.onUpdate(s)
}
