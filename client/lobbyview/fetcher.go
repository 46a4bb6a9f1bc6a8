package lobbyview

import (
	"context"

	lobbymodel "BetHub/module/lobby/model"
	lobbyservice "BetHub/module/lobby/service"
)

// ServiceFetcher 进程内直连读路径（同节点客户端/测试用）
type ServiceFetcher struct {
	svc *lobbyservice.Service
}

func NewServiceFetcher(svc *lobbyservice.Service) *ServiceFetcher {
	return &ServiceFetcher{svc: svc}
}

func (f *ServiceFetcher) GetLobby(ctx context.Context, lobbyID string) (*lobbymodel.Lobby, error) {
	return f.svc.Store().Get(ctx, lobbyID)
}

func (f *ServiceFetcher) Repair(ctx context.Context, lobbyID string) error {
	return f.svc.Repair(ctx, lobbyID)
}
