package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"landslide-monitor/models"
	"landslide-monitor/utils"
)

const msgMissingLogFields = "Missing required fields"

// recordedAtLayouts are tried in order when parsing recorded_at. Layouts
// without a zone are read in the aggregator's location.
var recordedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// HistoryAggregator appends readings and computes the dashboard aggregates
// over sensor_history.
type HistoryAggregator struct {
	db         *gorm.DB
	loc        *time.Location
	aggregates *cache.Cache
	listeners  Listeners
	now        func() time.Time
}

// NewHistoryAggregator buckets dates in loc. Summaries and trends are
// cached for cacheTTL; a non-positive TTL disables the cache.
func NewHistoryAggregator(db *gorm.DB, loc *time.Location, cacheTTL time.Duration, listeners ...Listener) *HistoryAggregator {
	if loc == nil {
		loc = time.UTC
	}
	h := &HistoryAggregator{
		db:        db,
		loc:       loc,
		listeners: listeners,
		now:       time.Now,
	}
	if cacheTTL > 0 {
		h.aggregates = cache.New(cacheTTL, 2*cacheTTL)
	}
	return h
}

// Summary returns per-date averages of every reading in the range window,
// oldest date first. Unknown tokens fall back to 7d.
func (h *HistoryAggregator) Summary(ctx context.Context, rangeToken string) ([]models.DailySummary, error) {
	days, ok := utils.RangeDays(rangeToken)
	if !ok {
		rangeToken = utils.DefaultRange
		days, _ = utils.RangeDays(rangeToken)
	}
	now := h.now()
	key := h.cacheKey(now, "summary", rangeToken)
	if v, found := h.cached(key); found {
		return v.([]models.DailySummary), nil
	}

	type acc struct {
		temperature, moisture, movement float64
		n                               int
	}
	buckets := map[string]*acc{}
	err := h.eachInWindow(ctx, now, days, func(r models.SensorHistory) {
		date := utils.DateKey(r.RecordedAt, h.loc)
		a, ok := buckets[date]
		if !ok {
			a = &acc{}
			buckets[date] = a
		}
		a.temperature += r.Temperature
		a.moisture += r.Moisture
		a.movement += r.Movement
		a.n++
	})
	if err != nil {
		return nil, persistenceError("sensor history summary", err)
	}

	out := make([]models.DailySummary, 0, len(buckets))
	for date, a := range buckets {
		n := float64(a.n)
		out = append(out, models.DailySummary{
			Date:           date,
			AvgTemperature: a.temperature / n,
			AvgMoisture:    a.moisture / n,
			AvgMovement:    a.movement / n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	h.store(key, out)
	return out, nil
}

type latestReading struct {
	ID          uint
	Name        string
	Location    string
	HistoryID   uint
	Temperature float64
	Moisture    float64
	Movement    float64
	Status      models.Status
}

// Performance scores every sensor that has history by its latest reading.
// When two readings share the latest recorded_at the higher id wins.
func (h *HistoryAggregator) Performance(ctx context.Context) ([]models.SensorPerformance, error) {
	var rows []latestReading
	err := h.db.WithContext(ctx).Raw(`
		SELECT s.id, s.name, s.location, sh.id AS history_id,
			sh.temperature, sh.moisture, sh.movement, sh.status
		FROM sensors s
		JOIN (
			SELECT sensor_id, MAX(recorded_at) AS latest
			FROM sensor_history
			GROUP BY sensor_id
		) latest_sh ON latest_sh.sensor_id = s.id
		JOIN sensor_history sh ON sh.sensor_id = latest_sh.sensor_id AND sh.recorded_at = latest_sh.latest
		ORDER BY s.id ASC, sh.id DESC`).Scan(&rows).Error
	if err != nil {
		return nil, persistenceError("sensor performance", err)
	}

	out := make([]models.SensorPerformance, 0, len(rows))
	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].ID == r.ID {
			continue
		}
		out = append(out, models.SensorPerformance{
			ID:          r.ID,
			Name:        r.Name,
			Location:    r.Location,
			Temperature: r.Temperature,
			Moisture:    r.Moisture,
			Movement:    r.Movement,
			Score:       utils.Round2(utils.PerformanceScore(r.Movement, r.Status)),
		})
	}
	return out, nil
}

// StatusDistribution counts current sensors per status.
func (h *HistoryAggregator) StatusDistribution(ctx context.Context) ([]models.StatusCount, error) {
	out := []models.StatusCount{}
	err := h.db.WithContext(ctx).Model(&models.Sensor{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&out).Error
	if err != nil {
		return nil, persistenceError("status distribution", err)
	}
	return out, nil
}

// AppendLog stores a reading and moves the owning sensor to it. Both writes
// share a transaction.
func (h *HistoryAggregator) AppendLog(ctx context.Context, in models.ReadingLog) (*models.SensorHistory, error) {
	if !in.SensorID.Present || in.RecordedAt == nil ||
		!in.Temperature.Present || !in.Moisture.Present || !in.Movement.Present {
		return nil, validationError(msgMissingLogFields)
	}
	sensorID, err := sensorIDOf(in.SensorID)
	if err != nil {
		return nil, err
	}
	recordedAt, err := h.parseRecordedAt(*in.RecordedAt)
	if err != nil {
		return nil, err
	}

	record := models.SensorHistory{
		SensorID:   sensorID,
		RecordedAt: recordedAt,
	}
	record.Temperature, record.Moisture, record.Movement, record.Status = utils.ClassifyStored(
		in.Temperature.Or(utils.DefaultTemperature),
		in.Moisture.Or(utils.DefaultMoisture),
		in.Movement.Or(utils.DefaultMovement))

	var sensor models.Sensor
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sensor, sensorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError(msgSensorNotFound)
			}
			return err
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		sensor.Temperature = record.Temperature
		sensor.Moisture = record.Moisture
		sensor.Movement = record.Movement
		sensor.Status = record.Status
		sensor.LastUpdate = h.now().UTC()
		return tx.Model(&sensor).Updates(map[string]any{
			"temperature": sensor.Temperature,
			"moisture":    sensor.Moisture,
			"movement":    sensor.Movement,
			"status":      sensor.Status,
			"last_update": sensor.LastUpdate,
		}).Error
	})
	if err != nil {
		if _, ok := AsError(err); ok {
			return nil, err
		}
		return nil, persistenceError("append sensor log", err)
	}

	h.invalidate()
	h.listeners.ReadingRecorded(sensor, record)
	return &record, nil
}

// Trend averages one metric per date over the range window. It validates
// like ExportTrend and fails with not-found on an empty window.
func (h *HistoryAggregator) Trend(ctx context.Context, rangeToken, metric string) ([]models.TrendPoint, error) {
	pick, ok := metricPickers[metric]
	if !ok {
		return nil, validationError("Invalid metric")
	}
	days, ok := utils.RangeDays(rangeToken)
	if !ok {
		return nil, validationError("Invalid time range")
	}

	now := h.now()
	key := h.cacheKey(now, "trend", metric, rangeToken)
	out, found := h.cached(key)
	if !found {
		sums := map[string]float64{}
		counts := map[string]int{}
		err := h.eachInWindow(ctx, now, days, func(r models.SensorHistory) {
			date := utils.DateKey(r.RecordedAt, h.loc)
			sums[date] += pick(r)
			counts[date]++
		})
		if err != nil {
			return nil, persistenceError("sensor trend", err)
		}
		points := make([]models.TrendPoint, 0, len(sums))
		for date, sum := range sums {
			points = append(points, models.TrendPoint{Date: date, AvgValue: sum / float64(counts[date])})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
		if len(points) > 0 {
			h.store(key, points)
		}
		out = points
	}

	points := out.([]models.TrendPoint)
	if len(points) == 0 {
		return nil, notFoundError("No data available for export")
	}
	return points, nil
}

// SensorDeleted drops cached aggregates; the sensor's history went with it.
func (h *HistoryAggregator) SensorDeleted(uint) { h.invalidate() }

func (h *HistoryAggregator) SensorSaved(models.Sensor) {}

func (h *HistoryAggregator) ReadingRecorded(models.Sensor, models.SensorHistory) {}

func (h *HistoryAggregator) invalidate() {
	if h.aggregates != nil {
		h.aggregates.Flush()
	}
}

// cacheKey includes today's date in loc, so entries computed before
// midnight are not served for the new day's window.
func (h *HistoryAggregator) cacheKey(now time.Time, parts ...string) string {
	return strings.Join(parts, "|") + "|" + utils.DateKey(now, h.loc)
}

func (h *HistoryAggregator) cached(key string) (any, bool) {
	if h.aggregates == nil {
		return nil, false
	}
	return h.aggregates.Get(key)
}

func (h *HistoryAggregator) store(key string, v any) {
	if h.aggregates != nil {
		h.aggregates.SetDefault(key, v)
	}
}

// eachInWindow streams the readings recorded from the first day of the
// window up to the end of today. Rows are folded by fn one at a time.
func (h *HistoryAggregator) eachInWindow(ctx context.Context, now time.Time, days int, fn func(models.SensorHistory)) error {
	start := utils.WindowStart(now, days, h.loc)
	end := utils.WindowStart(now, 1, h.loc).AddDate(0, 0, 1)

	db := h.db.WithContext(ctx)
	rows, err := db.Model(&models.SensorHistory{}).
		Select("recorded_at", "temperature", "moisture", "movement").
		Where("recorded_at >= ? AND recorded_at < ?", start.UTC(), end.UTC()).
		Rows()
	if err != nil {
		return fmt.Errorf("query history window: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.SensorHistory
		if err := db.ScanRows(rows, &r); err != nil {
			return fmt.Errorf("scan history row: %w", err)
		}
		fn(r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read history window: %w", err)
	}
	return nil
}

func (h *HistoryAggregator) parseRecordedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range recordedAtLayouts {
		if t, err := time.ParseInLocation(layout, s, h.loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, validationError("Invalid recorded_at")
}

func sensorIDOf(n models.Number) (uint, error) {
	if !n.Valid || n.Value < 1 || n.Value != math.Trunc(n.Value) || n.Value > math.MaxUint32 {
		return 0, validationError("Invalid sensor_id")
	}
	return uint(n.Value), nil
}

var metricPickers = map[string]func(models.SensorHistory) float64{
	"temperature": func(r models.SensorHistory) float64 { return r.Temperature },
	"moisture":    func(r models.SensorHistory) float64 { return r.Moisture },
	"movement":    func(r models.SensorHistory) float64 { return r.Movement },
}
