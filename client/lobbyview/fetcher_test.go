package lobbyview

import (
	"context"
	"testing"

	lobbymodel "BetHub/module/lobby/model"
	lobbyservice "BetHub/module/lobby/service"
	"BetHub/module/match"
	userservice "BetHub/module/user/service"
)

func TestServiceFetcher(t *testing.T) {
	ctx := context.Background()
	store := lobbyservice.NewMemStore()
	svc := lobbyservice.NewService(store, userservice.NewMemDirectory(), match.NewMemCreator())
	f := NewServiceFetcher(svc)

	// 大厅不存在：修复也无济于事，落到本地重建
	snap := Resolve(ctx, f, "ghost", "B")
	if snap.Tier != TierReconstructed {
		t.Fatalf("missing lobby tier = %s, want reconstructed", snap.Tier)
	}

	if err := store.Insert(ctx, &lobbymodel.Lobby{
		LobbyID:   "L1",
		OwnerID:   "A",
		Kind:      lobbymodel.KindDuo,
		Status:    lobbymodel.StatusActive,
		Capacity:  2,
		MemberIDs: []string{"A"},
	}); err != nil {
		t.Fatal(err)
	}
	snap = Resolve(ctx, f, "L1", "B")
	if snap.Tier != TierAuthoritative {
		t.Fatalf("existing lobby tier = %s, want authoritative", snap.Tier)
	}
	if snap.Lobby.OwnerID != "A" {
		t.Errorf("lobby = %+v", snap.Lobby)
	}
}
