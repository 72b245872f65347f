package application

import (
	"context"

	"github.com/oksasatya/library-management/internal/domain/entity"
	repo "github.com/oksasatya/library-management/internal/domain/repository"
)

type StatsService struct {
	Store repo.Store
}

func NewStatsService(store repo.Store) *StatsService {
	return &StatsService{Store: store}
}

func (s *StatsService) Counts(ctx context.Context) (*entity.Counts, error) {
	var (
		c   entity.Counts
		err error
	)
	if c.Books, err = s.Store.Books().Count(ctx); err != nil {
		return nil, err
	}
	if c.Users, err = s.Store.Users().Count(ctx); err != nil {
		return nil, err
	}
	if c.Loans, err = s.Store.Loans().Count(ctx); err != nil {
		return nil, err
	}
	if c.Members, err = s.Store.Members().Count(ctx); err != nil {
		return nil, err
	}
	return &c, nil
}
