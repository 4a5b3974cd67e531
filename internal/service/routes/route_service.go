package routes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/Domenick1991/transfers/internal/repository"
)

type RouteUseCase interface {
	List(ctx context.Context) ([]domain.Route, error)
	GetByID(ctx context.Context, id int64) (*domain.Route, error)
	Refresh(ctx context.Context) ([]domain.Route, error)
}

type RouteCache interface {
	GetRoutes(ctx context.Context) ([]domain.Route, error)
	SetRoutes(ctx context.Context, routes []domain.Route) error
	InvalidateRoutes(ctx context.Context) error
}

type RouteService struct {
	repo   repository.RouteRepository
	cache  RouteCache
	logger *slog.Logger
}

func NewRouteService(repo repository.RouteRepository, cache RouteCache, logger *slog.Logger) *RouteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RouteService{repo: repo, cache: cache, logger: logger}
}

// List serves routes from the cache when possible. Cache failures fall back
// to the database.
func (s *RouteService) List(ctx context.Context) ([]domain.Route, error) {
	if s.cache != nil {
		cached, err := s.cache.GetRoutes(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "read routes cache", slog.String("error", err.Error()))
		} else if cached != nil {
			return cached, nil
		}
	}

	routes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetRoutes(ctx, routes); err != nil {
			s.logger.WarnContext(ctx, "write routes cache", slog.String("error", err.Error()))
		}
	}
	return routes, nil
}

func (s *RouteService) GetByID(ctx context.Context, id int64) (*domain.Route, error) {
	return s.repo.GetByID(ctx, id)
}

// Refresh drops the cached route list after routes were edited and reloads it
// from the database.
func (s *RouteService) Refresh(ctx context.Context) ([]domain.Route, error) {
	if s.cache != nil {
		if err := s.cache.InvalidateRoutes(ctx); err != nil {
			return nil, fmt.Errorf("invalidate routes cache: %w", err)
		}
	}
	return s.List(ctx)
}

var _ RouteUseCase = (*RouteService)(nil)
