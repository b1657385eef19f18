// Package network はネットワーク統計のビジネスロジックを提供する。
package network

import (
	"context"
	"fmt"

	"github.com/hm-community/hmnet/internal/model"
)

// PersonCounter は統計に必要な最小限のリポジトリインターフェース。
type PersonCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Service はネットワーク統計を提供する。
type Service struct {
	people PersonCounter
}

// NewService はServiceを生成する。
func NewService(people PersonCounter) *Service {
	return &Service{people: people}
}

// Stats は全Person数の集計を返す。
func (s *Service) Stats(ctx context.Context) (*model.NetworkStats, error) {
	total, err := s.people.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get network stats: %w", err)
	}
	return &model.NetworkStats{TotalPeople: total}, nil
}
