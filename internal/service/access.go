package service

import (
	"context"
	"meteoapi/internal/entity/db"
	"meteoapi/internal/model"

	"github.com/sirupsen/logrus"
)

// Access decides whether a user may see a station. Every station-scoped
// operation goes through RequireStation.
type Access struct {
	repo model.Repository
}

func NewAccess(repo model.Repository) *Access {
	return &Access{repo: repo}
}

// RequireStation returns the user's link to the station, or ErrNotFound when
// the user has no link to that number.
func (a *Access) RequireStation(ctx context.Context, userID uint, stationNumber string) (*db.UserStation, error) {
	link, err := a.repo.FindUserStation(ctx, userID, stationNumber)
	if err != nil {
		return nil, translateStoreError(err, "station "+stationNumber)
	}
	return link, nil
}

// CanAccessStation reports whether the user is linked to the station.
func (a *Access) CanAccessStation(ctx context.Context, userID uint, stationNumber string) bool {
	_, err := a.RequireStation(ctx, userID, stationNumber)
	if err != nil && !isNotFound(err) {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":        userID,
			"station_number": stationNumber,
		}).Warn("station access check failed")
	}
	return err == nil
}
