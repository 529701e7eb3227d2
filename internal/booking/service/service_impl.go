package service

import (
	"context"

	"github.com/inkhaus/studio/internal/booking/domain"
	"github.com/inkhaus/studio/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	log  *zap.Logger
	repo domain.Repository
}

func New(p ServiceParam) domain.Service {
	return &Service{
		log:  p.Log.Named("booking.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListBookingRequest) (domain.ListBookingResponse, error) {
	req.Pagination = req.Pagination.Normalize()
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		s.log.Error("booking list failed", zap.Error(err))
		return domain.ListBookingResponse{}, err
	}

	bookings := make([]domain.Booking, 0, len(items))
	for _, item := range items {
		bookings = append(bookings, *item)
	}

	return domain.ListBookingResponse{
		Bookings:   bookings,
		Pagination: pagination.BuildPageInfo(req.Pagination, total),
	}, nil
}

func (s *Service) SyncStatus(ctx context.Context) (*domain.SyncState, error) {
	state, err := s.repo.GetSyncState(ctx, domain.SyncTypeCalcomBookings)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, domain.ErrNotFound
	}
	return state, nil
}
