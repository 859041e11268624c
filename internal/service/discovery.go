package service

import (
	"context"
	"fmt"
	"meteoapi/internal/entity/dto"
	"meteoapi/internal/metrics"
	"meteoapi/internal/model"
	"meteoapi/internal/sensor"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const discoveryRunTimeout = 5 * time.Minute

// Discovery registers the parameters that active stations report in the
// sensor source, so linked users pick up new sensors without client action.
type Discovery struct {
	repo     model.Repository
	source   sensor.Source
	stations *StationService

	mu   sync.Mutex
	cron *cron.Cron
}

func NewDiscovery(repo model.Repository, source sensor.Source, stations *StationService) *Discovery {
	return &Discovery{repo: repo, source: source, stations: stations}
}

// RunOnce scans every active station. A station whose parameters cannot be
// listed is counted as a failure and skipped.
func (d *Discovery) RunOnce(ctx context.Context) (dto.SyncReport, error) {
	var report dto.SyncReport

	stations, err := d.repo.ListActiveStations(ctx)
	if err != nil {
		metrics.DiscoveryRunsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return report, err
	}

	for i := range stations {
		station := &stations[i]
		report.Stations++

		codes, err := d.source.Parameters(ctx, station.StationNumber)
		if err != nil {
			report.Failures++
			logrus.WithError(err).WithField("station_number", station.StationNumber).Warn("parameter discovery failed")
			continue
		}

		added, rows, err := d.stations.RegisterParameters(ctx, station, codes)
		report.ParametersAdded += len(added)
		report.RowsCreated += int(rows)
		if err != nil {
			report.Failures++
			logrus.WithError(err).WithField("station_number", station.StationNumber).Warn("parameter registration failed")
			continue
		}
		if len(added) > 0 {
			logrus.WithFields(logrus.Fields{
				"station_number": station.StationNumber,
				"parameters":     strings.Join(added, ","),
				"rows":           rows,
			}).Info("station parameters discovered")
		}
	}

	result := metrics.OutcomeOK
	if report.Failures > 0 {
		result = metrics.OutcomeError
	}
	metrics.DiscoveryRunsTotal.WithLabelValues(result).Inc()
	return report, nil
}

// Start schedules RunOnce. An empty schedule disables the job.
func (d *Discovery) Start(schedule string) error {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		logrus.Info("parameter discovery disabled")
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cron != nil {
		return fmt.Errorf("parameter discovery already started")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), discoveryRunTimeout)
		defer cancel()
		report, err := d.RunOnce(ctx)
		if err != nil {
			logrus.WithError(err).Error("parameter discovery run failed")
			return
		}
		logrus.WithFields(logrus.Fields{
			"stations":         report.Stations,
			"parameters_added": report.ParametersAdded,
			"rows_created":     report.RowsCreated,
			"failures":         report.Failures,
		}).Debug("parameter discovery run finished")
	})
	if err != nil {
		return fmt.Errorf("invalid PARAMETER_SYNC_SCHEDULE %q: %w", schedule, err)
	}
	c.Start()
	d.cron = c
	logrus.WithField("schedule", schedule).Info("parameter discovery scheduled")
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (d *Discovery) Stop() {
	d.mu.Lock()
	c := d.cron
	d.cron = nil
	d.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
