// Package people は連絡先ディレクトリのビジネスロジックを提供する。
package people

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hm-community/hmnet/internal/model"
	"github.com/hm-community/hmnet/internal/repository"
)

// DefaultListLimit は一覧取得のデフォルト件数。
const DefaultListLimit = 10

// Service は連絡先ディレクトリのCRUD操作を提供する。
type Service struct {
	repo      repository.PersonRepository
	sanitizer *bluemonday.Policy

	// テスト用にオーバーライド可能な現在時刻
	now func() time.Time
}

// NewService はServiceを生成する。
// resources/needsはフロントエンドでリッチテキストとして表示されるため、
// 書き込み時にUGCポリシーでサニタイズする。
func NewService(repo repository.PersonRepository) *Service {
	return &Service{
		repo:      repo,
		sanitizer: bluemonday.UGCPolicy(),
		now:       time.Now,
	}
}

// List はPersonをcreated_at降順で最大limit件返す。
// limitが0以下の場合はDefaultListLimitを使う。
func (s *Service) List(ctx context.Context, limit int) ([]*model.Person, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	people, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return people, nil
}

// Get は指定IDのPersonを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Person, error) {
	person, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	if person == nil {
		return nil, model.NewPersonNotFoundError(id)
	}
	return person, nil
}

// Create はPersonを作成する。
// created_atとupdated_atはサーバー側で同一の現在時刻に設定する。
func (s *Service) Create(ctx context.Context, input *model.Person) (*model.Person, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	now := model.Timestamp(s.now())
	input.CreatedAt = now
	input.UpdatedAt = now
	s.sanitize(input)

	created, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}
	return created, nil
}

// Update は指定IDのPersonの全フィールドを置き換える（idとcreated_atを除く）。
// updated_atはサーバー側で現在時刻に設定する。
func (s *Service) Update(ctx context.Context, id string, input *model.Person) (*model.Person, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	input.UpdatedAt = model.Timestamp(s.now())
	s.sanitize(input)

	updated, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, fmt.Errorf("failed to update person: %w", err)
	}
	if updated == nil {
		return nil, model.NewPersonNotFoundError(id)
	}
	return updated, nil
}

// Delete は指定IDのPersonを物理削除する。
// 削除対象が存在しない場合はNotFoundを返す。
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	if !deleted {
		return model.NewPersonNotFoundError(id)
	}
	return nil
}

// validate は必須フィールドを検証する。
func (s *Service) validate(input *model.Person) error {
	if input == nil || strings.TrimSpace(input.Name) == "" {
		return model.NewValidationError("nameは必須です")
	}
	return nil
}

// sanitize は自由記述フィールドをサニタイズする。
func (s *Service) sanitize(input *model.Person) {
	if input.Resources != nil {
		cleaned := s.sanitizer.Sanitize(*input.Resources)
		input.Resources = &cleaned
	}
	if input.Needs != nil {
		cleaned := s.sanitizer.Sanitize(*input.Needs)
		input.Needs = &cleaned
	}
}
