// Package treatment 疗程目录，列表走 Redis 缓存
package treatment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"massage-booking-api/internal/core/cache"
	"massage-booking-api/internal/core/validate"
	"massage-booking-api/internal/domain"
)

const listKey = "treatments"

type Input struct {
	Title       string `json:"title" validate:"required,max=128"`
	Description string `json:"description" validate:"max=1024"`
	Version     *int64 `json:"version"`
}

type Service struct {
	Repo  domain.TreatmentRepository
	Cache *cache.Cache // nil 表示不走缓存
	TTL   time.Duration
	Log   *zap.Logger
}

func (s *Service) List(ctx context.Context) ([]domain.Treatment, error) {
	out, err := cache.GetOrLoadJSON(s.Cache, ctx, listKey, s.TTL, func(ctx context.Context) (*[]domain.Treatment, error) {
		items, err := s.Repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []domain.Treatment{}
		}
		return &items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list treatments: %w", err)
	}
	if out == nil {
		return []domain.Treatment{}, nil
	}
	return *out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Treatment, error) {
	t, err := s.Repo.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("treatment %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find treatment: %w", err)
	}
	return t, nil
}

func clean(in Input) (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	return in, validate.Struct(in)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Treatment, error) {
	in, err := clean(in)
	if err != nil {
		return nil, err
	}
	t := &domain.Treatment{Title: in.Title, Description: in.Description}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create treatment: %w", err)
	}
	s.invalidate(ctx)
	return t, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Treatment, error) {
	in, err := clean(in)
	if err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Version != nil && *in.Version != t.Version {
		return nil, domain.Conflict("treatment was modified by another request, reload and retry")
	}
	t.Title, t.Description = in.Title, in.Description
	if err := s.Repo.Update(ctx, t); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConcurrencyConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("update treatment: %w", err)
	}
	s.invalidate(ctx)
	return t, nil
}

// Delete 级联软删该疗程的预约
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("treatment %s not found", id)
		}
		return fmt.Errorf("delete treatment: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, listKey); err != nil && s.Log != nil {
		s.Log.Warn("invalidate treatments cache", zap.Error(err))
	}
}
