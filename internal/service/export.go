package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"meteoapi/internal/archive"
	"meteoapi/internal/entity/dto"
	"strconv"
	"time"
)

const exportCategory = "history"

// Exporter writes a parameter's history as CSV to the archive backend.
type Exporter struct {
	resolver   *Resolver
	archive    archive.Archive
	publicBase string
	now        func() time.Time
}

func NewExporter(resolver *Resolver, store archive.Archive, publicBase string) *Exporter {
	return &Exporter{resolver: resolver, archive: store, publicBase: publicBase, now: time.Now}
}

// Export applies the same access rules as GetHistory. A range that ended in
// the past maps to a fixed key, so repeating it reuses the stored file.
func (e *Exporter) Export(ctx context.Context, userID uint, stationNumber, code string, rng HistoryRange) (*dto.ExportResponse, error) {
	history, err := e.resolver.GetHistory(ctx, userID, stationNumber, code, rng)
	if err != nil {
		return nil, err
	}

	data, err := encodeHistoryCSV(history)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	closed := rng.End != nil && rng.End.Before(now)
	var window string
	switch {
	case closed && rng.Start != nil:
		window = fmt.Sprintf("%d-%d", rng.Start.Unix(), rng.End.Unix())
	case closed:
		window = fmt.Sprintf("until-%d", rng.End.Unix())
	default:
		window = fmt.Sprintf("snapshot-%d", now.UnixNano())
	}
	if rng.Limit > 0 {
		window += fmt.Sprintf("-n%d", rng.Limit)
	}

	key, err := e.archive.Put(ctx, data, archive.PutOptions{
		Category:     exportCategory,
		Name:         fmt.Sprintf("%s/%s/%s", history.StationNumber, history.Parameter.Code, window),
		Extension:    "csv",
		SkipIfExists: closed,
	})
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	return &dto.ExportResponse{
		Key:   key,
		URL:   archive.PublicURL(e.publicBase, key),
		Count: history.Count,
	}, nil
}

func encodeHistoryCSV(history *dto.HistoryResponse) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"station_number", "parameter", "unit", "time", "value"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, point := range history.Data {
		record := []string{
			history.StationNumber,
			history.Parameter.Code,
			history.Parameter.Unit,
			point.Time.UTC().Format(time.RFC3339),
			strconv.FormatFloat(point.Value, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
