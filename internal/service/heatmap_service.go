package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/jengzang/heatmap-backend-go/internal/datatable"
	"github.com/jengzang/heatmap-backend-go/internal/heatmap"
	"github.com/jengzang/heatmap-backend-go/internal/metrics"
	"github.com/jengzang/heatmap-backend-go/internal/models"
	"github.com/jengzang/heatmap-backend-go/internal/stats"
	"github.com/jengzang/heatmap-backend-go/internal/timebucket"
)

var (
	// ErrInvalidCondition wraps every rejected query condition.
	ErrInvalidCondition = errors.New("invalid heat map condition")
	// ErrInvalidRow wraps every rejected ingest row.
	ErrInvalidRow = errors.New("invalid metric row")
	// ErrCorruptRow wraps stored rows that cannot be turned into a column.
	ErrCorruptRow = errors.New("corrupt metric row")
)

// RowStore reads and writes serialized metric rows
type RowStore interface {
	Save(ctx context.Context, row models.MetricRow) error
	MultiGet(ctx context.Context, metric string, ids []string) (map[string]string, error)
}

// Options tunes heat map reads
type Options struct {
	MaxPoints  int  // Upper bound of time buckets per query, 0 for none
	StrictAxis bool // Reject rows whose keys do not match the first row's
}

// HeatMapService handles business logic for heat map queries
type HeatMapService struct {
	store   RowStore
	opts    Options
	metrics *metrics.Metrics
	logger  log.Logger
}

// NewHeatMapService creates a new heat map service
func NewHeatMapService(store RowStore, opts Options, m *metrics.Metrics, logger log.Logger) *HeatMapService {
	return &HeatMapService{
		store:   store,
		opts:    opts,
		metrics: m,
		logger:  log.With(logger, "component", "heatmap_service"),
	}
}

// ExpectedIDs lists the row ids a condition covers, in time order.
func (s *HeatMapService) ExpectedIDs(cond models.HeatMapCondition) ([]string, error) {
	stepName := cond.Step
	if stepName == "" {
		stepName = string(timebucket.Minute)
	}
	step, err := timebucket.ParseStep(stepName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCondition, err)
	}
	d, err := timebucket.ParseDuration(cond.Start, cond.End, step)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCondition, err)
	}
	buckets, err := d.Buckets(s.opts.MaxPoints)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCondition, err)
	}
	return timebucket.RowIDs(buckets, cond.Entity), nil
}

// ReadHeatMap builds the heat map of cond.Metric for cond.Entity over the
// condition's duration. Every time bucket of the duration gets one column;
// buckets storage has no row for are filled with cond.Default.
func (s *HeatMapService) ReadHeatMap(ctx context.Context, cond models.HeatMapCondition) (*heatmap.HeatMap, error) {
	start := time.Now()
	defer func() {
		s.metrics.QueryDuration.WithLabelValues(cond.Metric).Observe(time.Since(start).Seconds())
	}()

	ids, err := s.ExpectedIDs(cond)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.MultiGet(ctx, cond.Metric, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to read metric rows: %w", err)
	}

	var opts []heatmap.Option
	if s.opts.StrictAxis {
		opts = append(opts, heatmap.WithStrictAxis())
	}
	hm := heatmap.New(opts...)

	for _, id := range ids {
		raw, ok := rows[id]
		if !ok {
			continue
		}
		if err := s.buildColumn(hm, cond, id, raw); err != nil {
			return nil, err
		}
	}

	if !hm.HasAxis() {
		level.Warn(s.logger).Log("msg", "no stored rows, filler columns have no buckets", "metric", cond.Metric, "entity", cond.Entity)
	}

	built := len(hm.Columns())
	hm.FixMissingColumns(ids, cond.Default)
	filled := len(hm.Columns()) - built

	s.metrics.ColumnsBuilt.WithLabelValues(cond.Metric).Add(float64(built))
	s.metrics.ColumnsFilled.WithLabelValues(cond.Metric).Add(float64(filled))
	level.Debug(s.logger).Log("msg", "heat map built", "metric", cond.Metric, "entity", cond.Entity,
		"columns", built, "filled", filled, "buckets", len(hm.Buckets()))

	return hm, nil
}

func (s *HeatMapService) buildColumn(hm *heatmap.HeatMap, cond models.HeatMapCondition, id, raw string) error {
	dt, err := datatable.Parse(raw)
	if err != nil {
		s.metrics.BuildFailures.WithLabelValues(cond.Metric, "malformed").Inc()
		level.Error(s.logger).Log("msg", "failed to decode row", "metric", cond.Metric, "id", id, "err", err)
		return fmt.Errorf("%w %s: %w", ErrCorruptRow, id, err)
	}

	if err := hm.BuildColumn(id, dt, cond.Default); err != nil {
		reason := "invalid_key"
		if errors.Is(err, heatmap.ErrAxisMismatch) {
			reason = "axis_mismatch"
		}
		s.metrics.BuildFailures.WithLabelValues(cond.Metric, reason).Inc()
		level.Error(s.logger).Log("msg", "failed to build column", "metric", cond.Metric, "id", id, "err", err)
		return fmt.Errorf("%w %s: %w", ErrCorruptRow, id, err)
	}
	return nil
}

// ReadPercentiles estimates cond.Ranks for every column of the heat map
// ReadHeatMap builds for the same condition.
func (s *HeatMapService) ReadPercentiles(ctx context.Context, cond models.PercentileCondition) ([]stats.ColumnPercentiles, error) {
	ranks := cond.Ranks
	if len(ranks) == 0 {
		ranks = stats.DefaultRanks
	}
	if err := stats.ValidateRanks(ranks); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCondition, err)
	}

	hm, err := s.ReadHeatMap(ctx, cond.HeatMapCondition)
	if err != nil {
		return nil, err
	}
	return stats.HeatMapPercentiles(hm, ranks), nil
}

// SaveRow validates and stores one row. The row id is derived from its
// time bucket and entity.
func (s *HeatMapService) SaveRow(ctx context.Context, row models.MetricRow) (models.MetricRow, error) {
	if row.Metric == "" || row.Entity == "" {
		return row, fmt.Errorf("%w: metric and entity are required", ErrInvalidRow)
	}
	if row.TimeBucket <= 0 {
		return row, fmt.Errorf("%w: time bucket must be positive", ErrInvalidRow)
	}

	dt, err := datatable.Parse(row.Dataset)
	if err != nil {
		return row, fmt.Errorf("%w: %w", ErrInvalidRow, err)
	}
	for _, key := range dt.Keys() {
		if _, err := strconv.ParseInt(key, 10, 64); err != nil {
			return row, fmt.Errorf("%w: %w", ErrInvalidRow, &heatmap.KeyError{Key: key, Err: err})
		}
	}

	row.ID = timebucket.RowID(row.TimeBucket, row.Entity)
	row.Dataset = dt.String()
	if err := s.store.Save(ctx, row); err != nil {
		return row, err
	}

	s.metrics.RowsSaved.WithLabelValues(row.Metric).Inc()
	level.Debug(s.logger).Log("msg", "row saved", "metric", row.Metric, "id", row.ID, "merge", row.Merge)
	return row, nil
}
