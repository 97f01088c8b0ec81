package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"festpass/internal/logger"
	"festpass/internal/models"
)

const (
	metricsCacheKey = "dashboard:metrics"
	metricsCacheTTL = 60 * time.Second
	metricsScanCap  = 2000
)

// MetricsData is the lightweight aggregate block attached to a
// dashboard page on request.
type MetricsData struct {
	TodayRegistrations int            `json:"today_registrations"`
	ByCategory         map[string]int `json:"by_category"`
	ComputedAt         time.Time      `json:"computed_at"`
}

type MetricsDBLayer interface {
	PaymentsCreatedSince(ctx context.Context, since time.Time, limit int64) ([]models.Payment, error)
}

// Metrics computes today's successful-registration count in the
// venue's local timezone plus per-category counts, with bounded range
// reads rather than full scans. Results are cached in redis for a
// short TTL so dashboard refreshes do not hammer the store.
type Metrics struct {
	DB       MetricsDBLayer
	Redis    *redis.Client
	Location *time.Location
	Logger   *logger.Logger
}

func NewMetrics(db MetricsDBLayer, redisClient *redis.Client, timezone string, log *logger.Logger) *Metrics {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Warn("METRICS", fmt.Sprintf("unknown venue timezone %q, falling back to UTC", timezone))
		loc = time.UTC
	}
	return &Metrics{DB: db, Redis: redisClient, Location: loc, Logger: log}
}

func (m *Metrics) Collect(ctx context.Context) (*MetricsData, error) {
	if cached := m.fromCache(ctx); cached != nil {
		return cached, nil
	}

	now := time.Now().In(m.Location)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, m.Location)

	// Single-field range read; status filtering happens here, in
	// memory, not in the store.
	payments, err := m.DB.PaymentsCreatedSince(ctx, startOfDay, metricsScanCap)
	if err != nil {
		return nil, fmt.Errorf("metrics range read: %w", err)
	}

	data := &MetricsData{
		ByCategory: make(map[string]int),
		ComputedAt: time.Now(),
	}
	for _, payment := range payments {
		if payment.Status != models.PaymentStatusSuccess {
			continue
		}
		data.TodayRegistrations++
		if payment.Category != "" {
			data.ByCategory[payment.Category]++
		}
	}

	m.toCache(ctx, data)
	return data, nil
}

func (m *Metrics) fromCache(ctx context.Context) *MetricsData {
	if m.Redis == nil {
		return nil
	}
	raw, err := m.Redis.Get(ctx, metricsCacheKey).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		m.Logger.Warn("METRICS", fmt.Sprintf("redis read failed: %v", err))
		return nil
	}
	var data MetricsData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil
	}
	return &data
}

func (m *Metrics) toCache(ctx context.Context, data *MetricsData) {
	if m.Redis == nil {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := m.Redis.Set(ctx, metricsCacheKey, raw, metricsCacheTTL).Err(); err != nil {
		m.Logger.Warn("METRICS", fmt.Sprintf("redis write failed: %v", err))
	}
}
