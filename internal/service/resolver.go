package service

import (
	"context"
	"meteoapi/internal/config"
	"meteoapi/internal/entity/converter"
	"meteoapi/internal/entity/db"
	"meteoapi/internal/entity/dto"
	"meteoapi/internal/metrics"
	"meteoapi/internal/model"
	"meteoapi/internal/sensor"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ResolverOptions 聚合查询的可调参数
type ResolverOptions struct {
	InactivePolicy      string
	Fanout              int
	LookupTimeout       time.Duration
	HistoryDefaultLimit int
	HistoryMaxLimit     int
}

// ResolverOptionsFromConfig 从配置读取聚合查询参数
func ResolverOptionsFromConfig(cfg config.Config) ResolverOptions {
	return ResolverOptions{
		InactivePolicy:      strings.ToLower(strings.TrimSpace(cfg.InactiveStationPolicy)),
		Fanout:              cfg.SensorFanout,
		LookupTimeout:       cfg.SensorTimeout(),
		HistoryDefaultLimit: cfg.HistoryDefaultLimit,
		HistoryMaxLimit:     cfg.HistoryMaxLimit,
	}
}

// Resolver answers what a user should see: the latest values of the visible
// parameters of their stations, parameter history, and visibility settings.
type Resolver struct {
	repo   model.Repository
	source sensor.Source
	access *Access
	opts   ResolverOptions
}

func NewResolver(repo model.Repository, source sensor.Source, access *Access, opts ResolverOptions) *Resolver {
	if opts.Fanout <= 0 {
		opts.Fanout = 1
	}
	if opts.InactivePolicy == "" {
		opts.InactivePolicy = config.InactiveStationSkip
	}
	if opts.HistoryMaxLimit <= 0 {
		opts.HistoryMaxLimit = 10000
	}
	if opts.HistoryDefaultLimit <= 0 || opts.HistoryDefaultLimit > opts.HistoryMaxLimit {
		opts.HistoryDefaultLimit = opts.HistoryMaxLimit
	}
	return &Resolver{repo: repo, source: source, access: access, opts: opts}
}

// lookup is one pending latest-reading request; idx locates its slot in the
// owning view.
type lookup struct {
	view *dto.StationView
	idx  int
}

// GetLatestForUser returns one view per linked station, favorites first.
func (r *Resolver) GetLatestForUser(ctx context.Context, userID uint) ([]dto.StationView, error) {
	user, err := r.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err, "user")
	}
	if !user.IsActive {
		return nil, ErrNotFound
	}

	links, err := r.repo.ListUserStations(ctx, userID)
	if err != nil {
		return nil, err
	}

	selected := make([]*db.UserStation, 0, len(links))
	for i := range links {
		link := &links[i]
		if link.Station == nil {
			continue
		}
		if !link.Station.IsActive && r.opts.InactivePolicy != config.InactiveStationInclude {
			continue
		}
		selected = append(selected, link)
	}

	views := make([]dto.StationView, len(selected))
	var pending []lookup
	for i, link := range selected {
		views[i] = converter.UserStationToView(link)
		if !link.Station.IsActive {
			continue
		}
		queued, err := r.prepareView(ctx, link, &views[i])
		if err != nil {
			return nil, err
		}
		pending = append(pending, queued...)
	}

	r.fetchLatest(ctx, pending)
	return views, nil
}

// GetLatestForStation is GetLatestForUser restricted to one linked station.
// An inactive station yields its view without parameters.
func (r *Resolver) GetLatestForStation(ctx context.Context, userID uint, stationNumber string) (*dto.StationView, error) {
	link, err := r.access.RequireStation(ctx, userID, stationNumber)
	if err != nil {
		return nil, err
	}
	view := converter.UserStationToView(link)
	if link.Station == nil || !link.Station.IsActive {
		return &view, nil
	}

	pending, err := r.prepareView(ctx, link, &view)
	if err != nil {
		return nil, err
	}
	r.fetchLatest(ctx, pending)
	return &view, nil
}

// prepareView fills view.Parameters with the link's visible parameters in
// display order and returns one lookup per parameter.
func (r *Resolver) prepareView(ctx context.Context, link *db.UserStation, view *dto.StationView) ([]lookup, error) {
	rows, err := r.repo.ListUserStationParameters(ctx, link.ID, true)
	if err != nil {
		return nil, err
	}
	view.Parameters = make([]dto.ParameterReading, len(rows))
	pending := make([]lookup, len(rows))
	for i, row := range rows {
		view.Parameters[i] = dto.ParameterReading{
			Code:     row.ParameterCode,
			Name:     row.Name,
			Unit:     row.Unit,
			Category: row.Category,
		}
		pending[i] = lookup{view: view, idx: i}
	}
	return pending, nil
}

// fetchLatest resolves every lookup concurrently. Failures leave the reading
// null; each result is written into its own slot so ordering is unaffected.
func (r *Resolver) fetchLatest(ctx context.Context, pending []lookup) {
	if len(pending) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(r.opts.Fanout)
	for _, item := range pending {
		item := item
		g.Go(func() error {
			slot := &item.view.Parameters[item.idx]
			reading := r.latestReading(ctx, item.view.StationNumber, slot.Code)
			if reading != nil {
				value := reading.Value
				observedAt := reading.ObservedAt
				slot.Value = &value
				slot.ObservedAt = &observedAt
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Resolver) latestReading(ctx context.Context, stationNumber, code string) *sensor.Reading {
	if r.opts.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.LookupTimeout)
		defer cancel()
	}

	reading, err := r.source.Latest(ctx, stationNumber, code)
	switch {
	case err != nil:
		metrics.SensorLookupsTotal.WithLabelValues("latest", metrics.OutcomeError).Inc()
		logrus.WithError(err).WithFields(logrus.Fields{
			"station_number": stationNumber,
			"parameter":      code,
		}).Warn("latest reading unavailable")
		return nil
	case reading == nil || reading.Value <= sensor.MinValidValue:
		metrics.SensorLookupsTotal.WithLabelValues("latest", metrics.OutcomeEmpty).Inc()
		return nil
	default:
		metrics.SensorLookupsTotal.WithLabelValues("latest", metrics.OutcomeOK).Inc()
		return reading
	}
}
