package service

import (
	"context"

	apperrors "zenstream/internal/errors"
	"zenstream/internal/ledger"
	"zenstream/internal/model"
	"zenstream/internal/repository"
)

type ShopService struct {
	ledger   *ledger.Ledger
	progress *repository.ProgressRepository
}

type ProgressView struct {
	TotalMinutesFocused int                `json:"totalMinutesFocused"`
	UnlockedItems       []model.RewardItem `json:"unlockedItems"`
}

func NewShopService(zenLedger *ledger.Ledger, progress *repository.ProgressRepository) *ShopService {
	return &ShopService{ledger: zenLedger, progress: progress}
}

func (s *ShopService) Catalog() []model.CatalogEntry {
	return model.Catalog()
}

func (s *ShopService) GetProgress() ProgressView {
	return toProgressView(s.ledger.Snapshot())
}

func (s *ShopService) Purchase(ctx context.Context, itemID string) (*model.Purchase, *ProgressView, *apperrors.APIError) {
	purchase, err := s.ledger.Purchase(ctx, model.RewardItem(itemID))
	if err != nil {
		return nil, nil, apperrors.FromDomain(err, "failed to record purchase")
	}

	view := toProgressView(s.ledger.Snapshot())
	return &purchase, &view, nil
}

func (s *ShopService) ListPurchases(ctx context.Context) ([]model.Purchase, *apperrors.APIError) {
	purchases, err := s.progress.ListPurchases(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to list purchases")
	}
	return purchases, nil
}

func toProgressView(progress model.Progress) ProgressView {
	items := progress.UnlockedItems
	if items == nil {
		items = []model.RewardItem{}
	}
	return ProgressView{
		TotalMinutesFocused: progress.TotalMinutesFocused,
		UnlockedItems:       items,
	}
}
