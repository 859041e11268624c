package service

import (
	"context"
	"errors"
	"meteoapi/internal/metrics"
	"meteoapi/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	triggerUserStation      = "user_station"
	triggerStationParameter = "station_parameter"
)

// Synchronizer keeps one visibility row per (link, active station parameter).
// Rows are only ever inserted with the defaults; existing rows are left alone.
type Synchronizer struct {
	repo model.Repository
}

func NewSynchronizer(repo model.Repository) *Synchronizer {
	return &Synchronizer{repo: repo}
}

// SyncOnUserStationCreated fills in the rows of a link for every active
// parameter of its station. A link that vanished concurrently is a no-op.
func (s *Synchronizer) SyncOnUserStationCreated(ctx context.Context, userStationID uint) (int64, error) {
	created, err := s.repo.SyncUserStationParameters(ctx, userStationID)
	if err != nil {
		if isConstraintViolation(err) {
			logrus.WithError(err).WithField("user_station_id", userStationID).Debug("visibility sync skipped")
			return 0, nil
		}
		return 0, err
	}
	if created > 0 {
		metrics.VisibilityRowsCreated.WithLabelValues(triggerUserStation).Add(float64(created))
		logrus.WithFields(logrus.Fields{
			"user_station_id": userStationID,
			"rows":            created,
		}).Debug("visibility rows created for link")
	}
	return created, nil
}

// SyncOnStationParameterAdded adds the row for code to every link of the
// station. A station parameter that is gone or inactive is a no-op.
func (s *Synchronizer) SyncOnStationParameterAdded(ctx context.Context, stationID uint, code string) (int64, error) {
	created, err := s.repo.SyncStationParameter(ctx, stationID, code)
	if err != nil {
		if isConstraintViolation(err) {
			logrus.WithError(err).WithFields(logrus.Fields{
				"station_id": stationID,
				"parameter":  code,
			}).Debug("visibility sync skipped")
			return 0, nil
		}
		return 0, err
	}
	if created > 0 {
		metrics.VisibilityRowsCreated.WithLabelValues(triggerStationParameter).Add(float64(created))
		logrus.WithFields(logrus.Fields{
			"station_id": stationID,
			"parameter":  code,
			"rows":       created,
		}).Debug("visibility rows created for station parameter")
	}
	return created, nil
}

// isConstraintViolation reports errors caused by a row the sync depends on
// disappearing mid-flight.
func isConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation) ||
		errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrDuplicatedKey)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
