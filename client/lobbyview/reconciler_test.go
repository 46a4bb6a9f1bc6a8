package lobbyview

import (
	"context"
	"sync"
	"testing"
	"time"

	lobbymodel "BetHub/module/lobby/model"
	"BetHub/tools/errs"
)

// fakeFetcher 可编程的读路径：模拟各级失败
type fakeFetcher struct {
	mu          sync.Mutex
	lobby       *lobbymodel.Lobby
	failFetch   bool
	failRepair  bool
	panicFetch  bool
	fixOnRepair bool
	fetchCalls  int
}

func (f *fakeFetcher) GetLobby(ctx context.Context, lobbyID string) (*lobbymodel.Lobby, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.panicFetch {
		panic("backend exploded")
	}
	if f.failFetch {
		return nil, errs.ErrStoreUnavailable.WithDetail("simulated outage")
	}
	if f.lobby == nil {
		return nil, errs.ErrRecordNotFound.WithDetail("lobby " + lobbyID)
	}
	cp := *f.lobby
	return &cp, nil
}

func (f *fakeFetcher) Repair(ctx context.Context, lobbyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRepair {
		return errs.ErrStoreUnavailable.WithDetail("repair failed")
	}
	if f.fixOnRepair {
		f.failFetch = false
		if f.lobby == nil {
			f.lobby = &lobbymodel.Lobby{
				LobbyID:   lobbyID,
				OwnerID:   "A",
				Kind:      lobbymodel.KindDuo,
				Status:    lobbymodel.StatusActive,
				Capacity:  2,
				MemberIDs: []string{"A"},
			}
		}
	}
	return nil
}

func TestResolveAuthoritative(t *testing.T) {
	f := &fakeFetcher{lobby: &lobbymodel.Lobby{
		LobbyID:   "L1",
		OwnerID:   "A",
		Kind:      lobbymodel.KindDuo,
		Status:    lobbymodel.StatusActive,
		MemberIDs: []string{"A", "B"},
	}}
	snap := Resolve(context.Background(), f, "L1", "B")
	if snap.Tier != TierAuthoritative {
		t.Fatalf("tier = %s, want authoritative", snap.Tier)
	}
	if snap.Warning != "" {
		t.Errorf("authoritative snapshot carries warning %q", snap.Warning)
	}
	if len(snap.Lobby.MemberIDs) != 2 {
		t.Errorf("lobby = %+v", snap.Lobby)
	}
}

func TestResolveRepaired(t *testing.T) {
	f := &fakeFetcher{failFetch: true, fixOnRepair: true}
	snap := Resolve(context.Background(), f, "L1", "B")
	if snap.Tier != TierRepaired {
		t.Fatalf("tier = %s, want repaired", snap.Tier)
	}
	if snap.Lobby == nil || snap.Lobby.LobbyID != "L1" {
		t.Errorf("repaired lobby = %+v", snap.Lobby)
	}
}

func TestResolveReconstructed(t *testing.T) {
	f := &fakeFetcher{failFetch: true, failRepair: true}
	snap := Resolve(context.Background(), f, "L1", "B")
	if snap.Tier != TierReconstructed {
		t.Fatalf("tier = %s, want reconstructed", snap.Tier)
	}
	l := snap.Lobby
	if l.Kind != lobbymodel.KindReconstructed {
		t.Errorf("kind = %s, want reconstructed", l.Kind)
	}
	if l.OwnerID != "B" || len(l.MemberIDs) != 1 || l.MemberIDs[0] != "B" {
		t.Errorf("requesting user must be sole member and owner, got %+v", l)
	}
	if snap.Warning == "" {
		t.Error("degraded snapshot must carry a non-fatal warning")
	}
}

func TestResolveEmergencyOnPanic(t *testing.T) {
	f := &fakeFetcher{panicFetch: true}
	snap := Resolve(context.Background(), f, "L1", "B")
	if snap.Tier != TierEmergency {
		t.Fatalf("tier = %s, want emergency", snap.Tier)
	}
	if snap.Lobby.Kind != lobbymodel.KindEmergency {
		t.Errorf("kind = %s, want emergency", snap.Lobby.Kind)
	}
	if snap.Lobby.OwnerID != "B" {
		t.Errorf("owner = %s, want requesting user", snap.Lobby.OwnerID)
	}
	if snap.Warning == "" {
		t.Error("emergency snapshot must carry a warning")
	}
}

func TestPollerPromotesBackToAuthoritative(t *testing.T) {
	f := &fakeFetcher{failFetch: true, failRepair: true}
	tiers := make(chan Tier, 16)
	p := NewPoller(f, "L1", "B", 10*time.Millisecond, func(s Snapshot) {
		tiers <- s.Tier
	})
	p.Start(context.Background())
	defer p.Stop()

	if tier := <-tiers; tier != TierReconstructed {
		t.Fatalf("first cycle tier = %s, want reconstructed", tier)
	}

	// 后端恢复后，下一拍静默升回权威视图
	f.mu.Lock()
	f.failFetch = false
	f.lobby = &lobbymodel.Lobby{LobbyID: "L1", OwnerID: "A", MemberIDs: []string{"A"}}
	f.mu.Unlock()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case tier := <-tiers:
			if tier == TierAuthoritative {
				return
			}
		case <-deadline:
			t.Fatal("never promoted back to authoritative")
		}
	}
}

func TestPollerStopDiscardsLateResults(t *testing.T) {
	f := &fakeFetcher{lobby: &lobbymodel.Lobby{LobbyID: "L1", OwnerID: "A", MemberIDs: []string{"A"}}}
	var mu sync.Mutex
	deliveries := 0
	p := NewPoller(f, "L1", "A", 5*time.Millisecond, func(Snapshot) {
		mu.Lock()
		deliveries++
		mu.Unlock()
	})
	p.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	p.Stop()

	mu.Lock()
	atStop := deliveries
	mu.Unlock()
	if atStop == 0 {
		t.Fatal("poller never delivered before stop")
	}

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	after := deliveries
	mu.Unlock()
	if after != atStop {
		t.Errorf("stale deliveries after Stop: %d → %d", atStop, after)
	}
}
