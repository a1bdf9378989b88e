package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

// statsCacheTTL keeps period tables hot between imports; a run with any
// created or updated records drops the whole stats: prefix.
const statsCacheTTL = 15 * time.Minute

// StatsService computes grouped sums, averages and maxima over filtered
// activity sets. Null metric fields are excluded from both the sum and the
// divisor, never counted as zero.
type StatsService struct {
	activityRepo ports.ActivityRepository
	logger       ports.LoggerPort
	cache        ports.CachePort
	location     *time.Location
}

func NewStatsService(
	activityRepo ports.ActivityRepository,
	logger ports.LoggerPort,
	cache ports.CachePort,
) *StatsService {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		loc = time.UTC
	}
	return &StatsService{
		activityRepo: activityRepo,
		logger:       logger,
		cache:        cache,
		location:     loc,
	}
}

// SumField sums the extracted field over activities with that field set.
// Returns nil when no activity carries the field.
func SumField(activities []*domain.Activity, field func(*domain.Activity) *float64) *float64 {
	var sum float64
	found := false
	for _, a := range activities {
		if v := field(a); v != nil {
			sum += *v
			found = true
		}
	}
	if !found {
		return nil
	}
	return &sum
}

// AvgField averages the extracted field, dividing only by the count of
// activities that carry it.
func AvgField(activities []*domain.Activity, field func(*domain.Activity) *float64, places int) *float64 {
	var sum float64
	count := 0
	for _, a := range activities {
		if v := field(a); v != nil {
			sum += *v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := domain.Round(sum/float64(count), places)
	return &avg
}

// MaxField returns the activity holding the maximum of the extracted field.
// Ties resolve to the earliest activity in iteration order: replacement is
// strictly-greater only, so with repositories returning activities in their
// stable sort order the pick is deterministic.
func MaxField(activities []*domain.Activity, field func(*domain.Activity) *float64) (*domain.Activity, *float64) {
	var best *domain.Activity
	var bestValue float64
	for _, a := range activities {
		v := field(a)
		if v == nil {
			continue
		}
		if best == nil || *v > bestValue {
			best = a
			bestValue = *v
		}
	}
	if best == nil {
		return nil, nil
	}
	return best, &bestValue
}

// IntField adapts an *int accessor to the *float64 extractors above.
func IntField(get func(*domain.Activity) *int) func(*domain.Activity) *float64 {
	return func(a *domain.Activity) *float64 {
		v := get(a)
		if v == nil {
			return nil
		}
		f := float64(*v)
		return &f
	}
}

func sumDistanceKm(activities []*domain.Activity, places int) float64 {
	meters := SumField(activities, func(a *domain.Activity) *float64 { return a.Distance })
	if meters == nil {
		return 0
	}
	return domain.Round(*meters/1000, places)
}

func sumMovingHours(activities []*domain.Activity) float64 {
	var total time.Duration
	for _, a := range activities {
		if a.MovingTime != nil {
			total += *a.MovingTime
		}
	}
	return domain.Round(total.Hours(), 1)
}

func sumMovingTime(activities []*domain.Activity) time.Duration {
	var total time.Duration
	for _, a := range activities {
		if a.MovingTime != nil {
			total += *a.MovingTime
		}
	}
	return total
}

func sumElapsedTime(activities []*domain.Activity) time.Duration {
	var total time.Duration
	for _, a := range activities {
		total += a.ElapsedTime
	}
	return total
}

type StatRow struct {
	Label string  `json:"label"`
	Km    float64 `json:"km"`
	Hours float64 `json:"hours"`
}

type PeriodStats struct {
	Name string    `json:"name"`
	From time.Time `json:"from"`
	Rows []StatRow `json:"rows"`
}

var periodStatTypes = []domain.ActivityType{domain.TypeRide, domain.TypeRun, domain.TypeXCSki}

// WeekStats covers the current week from Monday.
func (s *StatsService) WeekStats(ctx context.Context) (*PeriodStats, error) {
	today := s.today()
	weekday := int(today.Weekday()+6) % 7 // Monday = 0
	return s.PeriodStats(ctx, "LAST WEEK", today.AddDate(0, 0, -weekday), periodStatTypes)
}

// YearStats covers the current year from January 1st.
func (s *StatsService) YearStats(ctx context.Context) (*PeriodStats, error) {
	today := s.today()
	from := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, s.location)
	return s.PeriodStats(ctx, "LAST YEAR", from, periodStatTypes)
}

// SeasonStats covers the skiing season from October 1st.
func (s *StatsService) SeasonStats(ctx context.Context) (*PeriodStats, error) {
	today := s.today()
	from := time.Date(today.Year(), 10, 1, 0, 0, 0, 0, s.location)
	if today.Before(from) {
		from = from.AddDate(-1, 0, 0)
	}
	name := fmt.Sprintf("SKIING SEASON (from %s)", from.Format("2006-01-02"))
	return s.PeriodStats(ctx, name, from, []domain.ActivityType{domain.TypeXCSki})
}

// PeriodStats builds per-type km/hours rows from the given date, splitting
// nordic skiing into skate and classic tag rows, plus a SUM row.
func (s *StatsService) PeriodStats(ctx context.Context, name string, from time.Time, types []domain.ActivityType) (*PeriodStats, error) {
	cacheKey := fmt.Sprintf("%speriod:%s:%s", statsCachePrefix, name, from.Format("2006-01-02"))
	if cached, err := s.cache.Get(cacheKey); err == nil {
		var stats PeriodStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	activities, err := s.activityRepo.ListActivities(ctx, ports.ActivityFilter{
		Types:     types,
		StartFrom: &from,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	stats := &PeriodStats{Name: name, From: from}
	for _, activityType := range types {
		ofType := filterByType(activities, activityType)
		stats.Rows = append(stats.Rows, StatRow{
			Label: string(activityType),
			Km:    sumDistanceKm(ofType, 1),
			Hours: sumMovingHours(ofType),
		})

		if activityType == domain.TypeXCSki {
			for _, tagName := range []string{"skate", "classic"} {
				tagged := filterByTag(ofType, tagName)
				stats.Rows = append(stats.Rows, StatRow{
					Label: tagName,
					Km:    sumDistanceKm(tagged, 1),
					Hours: sumMovingHours(tagged),
				})
			}
		}
	}
	stats.Rows = append(stats.Rows, StatRow{
		Label: "SUM",
		Km:    sumDistanceKm(activities, 1),
		Hours: sumMovingHours(activities),
	})

	if data, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(cacheKey, data, statsCacheTTL); err != nil {
			s.logger.Warn("Failed to cache period stats", map[string]interface{}{
				"key":   cacheKey,
				"error": err.Error(),
			})
		}
	}
	return stats, nil
}

// RenderPeriodStats formats a period table as a plain-text grid.
func RenderPeriodStats(stats *PeriodStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", stats.Name)
	fmt.Fprintf(&b, "%-10s %10s %8s\n", "", "km", "hours")
	for _, row := range stats.Rows {
		fmt.Fprintf(&b, "%-10s %10.1f %8.1f\n", row.Label, row.Km, row.Hours)
	}
	return b.String()
}

func (s *StatsService) today() time.Time {
	now := time.Now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}

func filterByType(activities []*domain.Activity, activityType domain.ActivityType) []*domain.Activity {
	var out []*domain.Activity
	for _, a := range activities {
		if a.Type == activityType {
			out = append(out, a)
		}
	}
	return out
}

func filterByTag(activities []*domain.Activity, tagName string) []*domain.Activity {
	var out []*domain.Activity
	for _, a := range activities {
		for _, tag := range a.Tags {
			if tag.Name == tagName {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
