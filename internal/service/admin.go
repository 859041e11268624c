package service

import (
	"context"
	"meteoapi/internal/entity/dto"
	"meteoapi/internal/model"
)

// AdminService collects dashboard counters.
type AdminService struct {
	repo      model.Repository
	cacheName string
}

func NewAdminService(repo model.Repository, cacheName string) *AdminService {
	return &AdminService{repo: repo, cacheName: cacheName}
}

func (s *AdminService) Dashboard(ctx context.Context) (*dto.DashboardStats, error) {
	users, err := s.repo.UserStats(ctx)
	if err != nil {
		return nil, err
	}
	stations, err := s.repo.StationStats(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.repo.CountUserStations(ctx)
	if err != nil {
		return nil, err
	}
	params, err := s.repo.CountParameters(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardStats{
		Users:      users,
		Stations:   stations,
		Links:      links,
		Parameters: params,
		Cache:      s.cacheName,
	}, nil
}
