package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/repository"
)

// ErrFactoryRequired is returned by Resolve when no code is given and the
// store holds more than one factory.
var ErrFactoryRequired = errors.New("factory is required")

type FactoryService interface {
	// Resolve finds a factory by code. An empty code resolves to the only
	// factory on record, if there is exactly one.
	Resolve(ctx context.Context, code string) (*domain.Factory, error)
	List(ctx context.Context) ([]*domain.Factory, error)
}

type factoryService struct {
	factories repository.FactoryRepo
}

func NewFactoryService(factories repository.FactoryRepo) FactoryService {
	return &factoryService{factories: factories}
}

func (s *factoryService) Resolve(ctx context.Context, code string) (*domain.Factory, error) {
	if code != "" {
		f, err := s.factories.GetByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("resolving factory: %w", err)
		}
		return f, nil
	}

	all, err := s.factories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving factory: %w", err)
	}
	if len(all) == 1 {
		return all[0], nil
	}
	return nil, ErrFactoryRequired
}

func (s *factoryService) List(ctx context.Context) ([]*domain.Factory, error) {
	return s.factories.List(ctx)
}
