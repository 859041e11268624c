package service

import (
	"context"
	"errors"
	"fmt"
	"meteoapi/internal/entity"
	"meteoapi/internal/entity/converter"
	"meteoapi/internal/entity/db"
	"meteoapi/internal/entity/dto"
	"meteoapi/internal/model"
	"meteoapi/internal/sensor"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StationService manages stations, their parameters and user links. Every
// change that can add a visibility row goes through the Synchronizer.
type StationService struct {
	repo    model.Repository
	source  sensor.Source
	sync    *Synchronizer
	access  *Access
	pattern *regexp.Regexp
}

func NewStationService(repo model.Repository, source sensor.Source, sync *Synchronizer, access *Access, numberPattern string) (*StationService, error) {
	pattern, err := regexp.Compile(numberPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid station number pattern: %w", err)
	}
	return &StationService{repo: repo, source: source, sync: sync, access: access, pattern: pattern}, nil
}

// ValidateStationNumber trims number and checks it against the configured pattern.
func (s *StationService) ValidateStationNumber(number string) (string, error) {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" || !s.pattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: invalid station number %q", ErrInvalidArgument, number)
	}
	return trimmed, nil
}

// RegisterParameters activates codes on the station and syncs visibility for
// each newly active one. It returns the codes that were newly activated.
func (s *StationService) RegisterParameters(ctx context.Context, station *db.Station, codes []string) ([]string, int64, error) {
	var added []string
	var rows int64
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		activated, err := s.repo.ActivateStationParameter(ctx, station.ID, code)
		if err != nil {
			return added, rows, translateStoreError(err, "station "+station.StationNumber)
		}
		if !activated {
			continue
		}
		added = append(added, code)
		created, err := s.sync.SyncOnStationParameterAdded(ctx, station.ID, code)
		if err != nil {
			return added, rows, err
		}
		rows += created
	}
	return added, rows, nil
}

// ---- user links ----

func (s *StationService) ListUserStations(ctx context.Context, userID uint) (*dto.UserStationListResponse, error) {
	links, err := s.repo.ListUserStations(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserStationItem, len(links))
	for i := range links {
		items[i] = converter.UserStationToItem(&links[i])
	}
	return &dto.UserStationListResponse{Stations: items}, nil
}

// AddUserStation links the user to a station. A station only known to the
// sensor source is created locally first, with the parameters it reports.
func (s *StationService) AddUserStation(ctx context.Context, userID uint, req dto.UserStationAddRequest) (*dto.UserStationItem, error) {
	number, err := s.ValidateStationNumber(req.StationNumber)
	if err != nil {
		return nil, err
	}

	station, err := s.ensureStation(ctx, number)
	if err != nil {
		return nil, err
	}

	link := &db.UserStation{UserID: userID, StationID: station.ID}
	if req.CustomName != nil {
		if name := strings.TrimSpace(*req.CustomName); name != "" {
			link.CustomName = &name
		}
	}
	if err := s.repo.CreateUserStation(ctx, link); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: station %s is already linked", ErrConflict, number)
		}
		return nil, translateStoreError(err, "station "+number)
	}

	if _, err := s.sync.SyncOnUserStationCreated(ctx, link.ID); err != nil {
		return nil, err
	}

	created, err := s.repo.FindUserStation(ctx, userID, number)
	if err != nil {
		return nil, translateStoreError(err, "station "+number)
	}
	item := converter.UserStationToItem(created)
	return &item, nil
}

func (s *StationService) ensureStation(ctx context.Context, number string) (*db.Station, error) {
	station, err := s.repo.GetStationByNumber(ctx, number)
	if err == nil {
		return station, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	known, err := s.source.HasStation(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalSourceUnavailable, err)
	}
	if !known {
		return nil, fmt.Errorf("%w: station %s", ErrNotFound, number)
	}

	station = &db.Station{StationNumber: number, Name: number, IsActive: true}
	if err := s.repo.CreateStation(ctx, station); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// created concurrently
		station, err = s.repo.GetStationByNumber(ctx, number)
		if err != nil {
			return nil, translateStoreError(err, "station "+number)
		}
		return station, nil
	}

	codes, err := s.source.Parameters(ctx, number)
	if err != nil {
		logrus.WithError(err).WithField("station_number", number).Warn("failed to list station parameters, discovery will retry")
		return station, nil
	}
	if _, _, err := s.RegisterParameters(ctx, station, codes); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"station_number": number,
		"parameters":     len(codes),
	}).Info("station registered from sensor source")
	return station, nil
}

func (s *StationService) UpdateUserStation(ctx context.Context, userID uint, stationNumber string, req dto.UserStationUpdateRequest) (*dto.UserStationItem, error) {
	link, err := s.access.RequireStation(ctx, userID, stationNumber)
	if err != nil {
		return nil, err
	}
	updates := entity.UserStationUpdates{CustomName: req.CustomName, IsFavorite: req.IsFavorite}
	if err := s.repo.UpdateUserStation(ctx, link.ID, updates); err != nil {
		return nil, translateStoreError(err, "station "+stationNumber)
	}
	updated, err := s.access.RequireStation(ctx, userID, stationNumber)
	if err != nil {
		return nil, err
	}
	item := converter.UserStationToItem(updated)
	return &item, nil
}

// RemoveUserStation deletes the link and its visibility rows.
func (s *StationService) RemoveUserStation(ctx context.Context, userID uint, stationNumber string) error {
	link, err := s.access.RequireStation(ctx, userID, stationNumber)
	if err != nil {
		return err
	}
	return translateStoreError(s.repo.DeleteUserStation(ctx, link.ID), "station "+stationNumber)
}

// ---- admin ----

func (s *StationService) ListStations(ctx context.Context, query *dto.StationQuery) (*dto.StationListResponse, error) {
	if query == nil {
		query = &dto.StationQuery{}
	}
	query.Normalize(20, 100)
	stations, meta, err := s.repo.ListStations(ctx, query)
	if err != nil {
		return nil, err
	}
	return &dto.StationListResponse{Stations: converter.StationsToSummaries(stations), Meta: meta}, nil
}

func (s *StationService) GetStation(ctx context.Context, stationNumber string) (*db.Station, error) {
	station, err := s.repo.GetStationByNumber(ctx, strings.TrimSpace(stationNumber))
	if err != nil {
		return nil, translateStoreError(err, "station "+stationNumber)
	}
	return station, nil
}

func (s *StationService) CreateStation(ctx context.Context, req dto.StationCreateRequest) (*dto.StationSummary, error) {
	number, err := s.ValidateStationNumber(req.StationNumber)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = number
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	station := &db.Station{
		StationNumber: number,
		Name:          name,
		Location:      req.Location,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Altitude:      req.Altitude,
		IsActive:      active,
	}
	if err := s.repo.CreateStation(ctx, station); err != nil {
		return nil, translateStoreError(err, "station "+number)
	}
	summary := converter.StationToSummary(station)
	return &summary, nil
}

func (s *StationService) UpdateStation(ctx context.Context, stationNumber string, req dto.StationUpdateRequest) (*dto.StationSummary, error) {
	station, err := s.GetStation(ctx, stationNumber)
	if err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	updates := entity.StationUpdates{
		Name:      req.Name,
		Location:  req.Location,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Altitude:  req.Altitude,
		IsActive:  req.IsActive,
	}
	if err := s.repo.UpdateStation(ctx, station.ID, updates); err != nil {
		return nil, translateStoreError(err, "station "+stationNumber)
	}
	updated, err := s.repo.GetStationByID(ctx, station.ID)
	if err != nil {
		return nil, translateStoreError(err, "station "+stationNumber)
	}
	summary := converter.StationToSummary(updated)
	return &summary, nil
}

// DeleteStation removes the station and everything linked to it.
func (s *StationService) DeleteStation(ctx context.Context, stationNumber string) error {
	station, err := s.GetStation(ctx, stationNumber)
	if err != nil {
		return err
	}
	return translateStoreError(s.repo.DeleteStation(ctx, station.ID), "station "+stationNumber)
}

func (s *StationService) ListStationParameters(ctx context.Context, stationNumber string) (*dto.StationParameterListResponse, error) {
	station, err := s.GetStation(ctx, stationNumber)
	if err != nil {
		return nil, err
	}
	params, err := s.repo.ListStationParameters(ctx, station.ID, false)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalogByCode(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StationParameterItem, len(params))
	for i := range params {
		items[i] = converter.StationParameterToItem(&params[i], catalog[params[i].ParameterCode])
	}
	return &dto.StationParameterListResponse{StationNumber: station.StationNumber, Parameters: items}, nil
}

// AddStationParameter activates code on the station; linked users receive a
// visible row for it.
func (s *StationService) AddStationParameter(ctx context.Context, stationNumber, code string) (*dto.StationParameterListResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: parameter code is required", ErrInvalidArgument)
	}
	station, err := s.GetStation(ctx, stationNumber)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.RegisterParameters(ctx, station, []string{code}); err != nil {
		return nil, err
	}
	return s.ListStationParameters(ctx, station.StationNumber)
}

// RemoveStationParameter deactivates code on the station and prunes its visibility rows.
func (s *StationService) RemoveStationParameter(ctx context.Context, stationNumber, code string) error {
	station, err := s.GetStation(ctx, stationNumber)
	if err != nil {
		return err
	}
	err = s.repo.DeactivateStationParameter(ctx, station.ID, strings.TrimSpace(code))
	return translateStoreError(err, "parameter "+code)
}

func (s *StationService) catalogByCode(ctx context.Context) (map[string]*db.Parameter, error) {
	params, err := s.repo.ListParameters(ctx)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*db.Parameter, len(params))
	for i := range params {
		byCode[params[i].Code] = &params[i]
	}
	return byCode, nil
}

// ---- catalog ----

func (s *StationService) ListParameters(ctx context.Context) (*dto.ParameterListResponse, error) {
	params, err := s.repo.ListParameters(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ParameterListResponse{Parameters: converter.ParametersToItems(params)}, nil
}

func (s *StationService) UpdateParameter(ctx context.Context, code string, req dto.ParameterUpdateRequest) (*dto.ParameterItem, error) {
	code = strings.TrimSpace(code)
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	updates := entity.ParameterUpdates{
		Name:        req.Name,
		Unit:        req.Unit,
		Description: req.Description,
		Category:    req.Category,
	}
	if err := s.repo.UpdateParameter(ctx, code, updates); err != nil {
		return nil, translateStoreError(err, "parameter "+code)
	}
	param, err := s.repo.GetParameter(ctx, code)
	if err != nil {
		return nil, translateStoreError(err, "parameter "+code)
	}
	item := converter.ParameterToItem(param)
	return &item, nil
}
