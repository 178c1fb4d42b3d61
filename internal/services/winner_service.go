package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/repositories"
)

// Compile-time check to ensure WinnerServiceImpl implements WinnerService
var _ WinnerService = (*WinnerServiceImpl)(nil)

// WinnerServiceImpl serves anonymized winner announcements.
type WinnerServiceImpl struct {
	drawRepo     repositories.DrawRepository
	categoryRepo repositories.CategoryRepository
}

// NewWinnerService creates a new WinnerServiceImpl
func NewWinnerService(drawRepo repositories.DrawRepository, categoryRepo repositories.CategoryRepository) *WinnerServiceImpl {
	return &WinnerServiceImpl{drawRepo: drawRepo, categoryRepo: categoryRepo}
}

// GetRecentWinners lists winners from the most recently completed draws,
// newest first, wallet addresses anonymized.
func (s *WinnerServiceImpl) GetRecentWinners(ctx context.Context, limit int) ([]models.RecentWinnerInfo, error) {
	if limit <= 0 {
		limit = 20
	}

	draws, err := s.drawRepo.FindCompleted(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch completed draws: %v", ErrUnavailable, err)
	}

	categoryNames := make(map[string]string)
	winners := make([]models.RecentWinnerInfo, 0, limit)
	for _, draw := range draws {
		catID := draw.CategoryID.Hex()
		name, ok := categoryNames[catID]
		if !ok {
			category, err := s.categoryRepo.FindByID(ctx, draw.CategoryID)
			if err == nil {
				name = category.Name
			}
			categoryNames[catID] = name
		}

		closedTime := ""
		if draw.ActualCloseTime != nil {
			closedTime = draw.ActualCloseTime.UTC().Format(time.RFC3339)
		}

		for _, w := range draw.WinnersByTier {
			winners = append(winners, models.RecentWinnerInfo{
				DrawID:           draw.ID.Hex(),
				CategoryID:       catID,
				CategoryName:     name,
				WalletAnonymized: AnonymizeWallet(w.WalletAddress),
				TierName:         w.TierName,
				NetPrizePayable:  w.NetPrizePayable,
				ClosedTime:       closedTime,
			})
			if len(winners) >= limit {
				return winners, nil
			}
		}
	}
	return winners, nil
}

// AnonymizeWallet masks the middle of a wallet address, keeping the first
// five and last three characters. Short addresses are fully masked.
func AnonymizeWallet(address string) string {
	if len(address) <= 8 {
		return "..."
	}
	return address[:5] + "..." + address[len(address)-3:]
}
