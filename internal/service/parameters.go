package service

import (
	"context"
	"errors"
	"fmt"
	"meteoapi/internal/entity"
	"meteoapi/internal/entity/converter"
	"meteoapi/internal/entity/dto"
	"strings"
)

// ListParametersWithVisibility returns every parameter of a linked station
// with its visibility state, in display order.
func (r *Resolver) ListParametersWithVisibility(ctx context.Context, userID uint, stationNumber string) (*dto.ParameterVisibilityListResponse, error) {
	link, err := r.access.RequireStation(ctx, userID, stationNumber)
	if err != nil {
		return nil, err
	}
	rows, err := r.repo.ListUserStationParameters(ctx, link.ID, false)
	if err != nil {
		return nil, err
	}
	return &dto.ParameterVisibilityListResponse{
		StationNumber: link.Station.StationNumber,
		Parameters:    converter.VisibilityToItems(rows),
	}, nil
}

// SetVisibility shows or hides one parameter and returns the updated row.
func (r *Resolver) SetVisibility(ctx context.Context, userID uint, stationNumber, code string, visible bool) (*dto.ParameterVisibilityItem, error) {
	code = strings.TrimSpace(code)
	link, err := r.access.RequireStation(ctx, userID, stationNumber)
	if err != nil {
		return nil, err
	}
	if err := r.repo.SetParameterVisibility(ctx, link.ID, code, visible); err != nil {
		return nil, translateStoreError(err, "parameter "+code)
	}
	row, err := r.repo.GetUserStationParameter(ctx, link.ID, code)
	if err != nil {
		return nil, translateStoreError(err, "parameter "+code)
	}
	item := converter.VisibilityToItem(row)
	return &item, nil
}

// SetVisibilityBulk applies all changes or none. Any code without a row for
// the link fails the whole batch with ErrNotFound.
func (r *Resolver) SetVisibilityBulk(ctx context.Context, userID uint, stationNumber string, changes []dto.VisibilityChange) (*dto.ParameterVisibilityListResponse, error) {
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: no parameters given", ErrInvalidArgument)
	}
	wanted := make(map[string]bool, len(changes))
	for _, change := range changes {
		code := strings.TrimSpace(change.Code)
		if code == "" || change.IsVisible == nil {
			return nil, fmt.Errorf("%w: code and is_visible are required", ErrInvalidArgument)
		}
		if prev, dup := wanted[code]; dup && prev != *change.IsVisible {
			return nil, fmt.Errorf("%w: conflicting values for parameter %s", ErrInvalidArgument, code)
		}
		wanted[code] = *change.IsVisible
	}

	link, err := r.access.RequireStation(ctx, userID, stationNumber)
	if err != nil {
		return nil, err
	}

	if err := r.repo.SetParameterVisibilityBulk(ctx, link.ID, wanted); err != nil {
		var unknown *entity.UnknownParametersError
		if errors.As(err, &unknown) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, unknown.Error())
		}
		return nil, err
	}

	rows, err := r.repo.ListUserStationParameters(ctx, link.ID, false)
	if err != nil {
		return nil, err
	}
	return &dto.ParameterVisibilityListResponse{
		StationNumber: link.Station.StationNumber,
		Parameters:    converter.VisibilityToItems(rows),
	}, nil
}
