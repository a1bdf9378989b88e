package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

func activityWith(name string, start time.Time, mutate func(*domain.Activity)) *domain.Activity {
	activity := &domain.Activity{
		Name:        name,
		Start:       start,
		Type:        domain.TypeXCSki,
		ElapsedTime: time.Hour,
	}
	if mutate != nil {
		mutate(activity)
	}
	return activity
}

func TestSumFieldExcludesNils(t *testing.T) {
	activities := []*domain.Activity{
		{Distance: f64(10)},
		{Distance: nil},
		{Distance: f64(20)},
	}
	sum := SumField(activities, func(a *domain.Activity) *float64 { return a.Distance })
	require.NotNil(t, sum)
	assert.Equal(t, 30.0, *sum)
}

func TestSumFieldAllNil(t *testing.T) {
	activities := []*domain.Activity{{}, {}}
	sum := SumField(activities, func(a *domain.Activity) *float64 { return a.Distance })
	assert.Nil(t, sum)
}

func TestAvgFieldExcludesNilsFromDivisor(t *testing.T) {
	activities := []*domain.Activity{
		{AverageHeartrate: f64(10)},
		{AverageHeartrate: nil},
		{AverageHeartrate: f64(20)},
	}
	avg := AvgField(activities, func(a *domain.Activity) *float64 { return a.AverageHeartrate }, 1)
	require.NotNil(t, avg)
	assert.Equal(t, 15.0, *avg)
}

func TestAvgFieldEmpty(t *testing.T) {
	avg := AvgField(nil, func(a *domain.Activity) *float64 { return a.AverageHeartrate }, 1)
	assert.Nil(t, avg)
}

func TestMaxFieldTieBreaksToFirst(t *testing.T) {
	first := &domain.Activity{Name: "first", Distance: f64(30)}
	second := &domain.Activity{Name: "second", Distance: f64(30)}
	third := &domain.Activity{Name: "third", Distance: f64(10)}

	best, value := MaxField([]*domain.Activity{first, second, third},
		func(a *domain.Activity) *float64 { return a.Distance })

	require.NotNil(t, best)
	assert.Equal(t, "first", best.Name)
	assert.Equal(t, 30.0, *value)
}

func TestMaxFieldSkipsNils(t *testing.T) {
	activities := []*domain.Activity{
		{Name: "no value"},
		{Name: "with value", KudosCount: iptr(4)},
	}
	best, value := MaxField(activities, IntField(func(a *domain.Activity) *int { return a.KudosCount }))
	require.NotNil(t, best)
	assert.Equal(t, "with value", best.Name)
	assert.Equal(t, 4.0, *value)
}

func TestPeriodStatsRows(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	stats := NewStatsService(store, nopLogger{}, cache)
	classifier := NewClassifier(store, store, nopLogger{})
	require.NoError(t, classifier.EnsureTags(context.Background()))

	base := time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC)
	moving := 2 * time.Hour

	ride, err := store.CreateActivity(context.Background(), activityWith("ride", base, func(a *domain.Activity) {
		a.Type = domain.TypeRide
		a.Distance = f64(40000)
		a.MovingTime = &moving
	}))
	require.NoError(t, err)
	_ = ride

	skate, err := store.CreateActivity(context.Background(), activityWith("ski #skate", base.Add(time.Hour), func(a *domain.Activity) {
		a.Distance = f64(15000)
		a.MovingTime = &moving
	}))
	require.NoError(t, err)
	require.NoError(t, classifier.ClassifyActivity(context.Background(), skate))

	from := base.Add(-24 * time.Hour)
	result, err := stats.PeriodStats(context.Background(), "TEST", from, periodStatTypes)
	require.NoError(t, err)

	rows := map[string]StatRow{}
	for _, row := range result.Rows {
		rows[row.Label] = row
	}

	assert.Equal(t, 40.0, rows["ride"].Km)
	assert.Equal(t, 2.0, rows["ride"].Hours)
	assert.Equal(t, 15.0, rows["xc_ski"].Km)
	assert.Equal(t, 15.0, rows["skate"].Km)
	assert.Equal(t, 0.0, rows["classic"].Km)
	assert.Equal(t, 55.0, rows["SUM"].Km)
	assert.Equal(t, 4.0, rows["SUM"].Hours)
}

func TestPeriodStatsUsesCache(t *testing.T) {
	store := newMemStore()
	cache := newMemCache()
	stats := NewStatsService(store, nopLogger{}, cache)

	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	first, err := stats.PeriodStats(context.Background(), "CACHED", from, periodStatTypes)
	require.NoError(t, err)

	// a new activity is invisible until the cache is dropped
	_, err = store.CreateActivity(context.Background(), activityWith("ride", from.Add(time.Hour), func(a *domain.Activity) {
		a.Type = domain.TypeRide
		a.Distance = f64(10000)
	}))
	require.NoError(t, err)

	second, err := stats.PeriodStats(context.Background(), "CACHED", from, periodStatTypes)
	require.NoError(t, err)
	assert.Equal(t, first.Rows, second.Rows)

	require.NoError(t, cache.DeleteByPrefix(statsCachePrefix))
	third, err := stats.PeriodStats(context.Background(), "CACHED", from, periodStatTypes)
	require.NoError(t, err)
	assert.NotEqual(t, first.Rows, third.Rows)
}

func TestTagYearReport(t *testing.T) {
	store := newMemStore()
	stats := NewStatsService(store, nopLogger{}, newMemCache())
	classifier := NewClassifier(store, store, nopLogger{})
	require.NoError(t, classifier.EnsureTags(context.Background()))

	base := time.Date(2022, 12, 12, 9, 0, 0, 0, time.UTC)
	moving := 90 * time.Minute
	stravaID := int64(101)

	long, err := store.CreateActivity(context.Background(), activityWith("long #classic", base, func(a *domain.Activity) {
		a.StravaID = &stravaID
		a.Distance = f64(25000)
		a.MovingTime = &moving
		a.ElapsedTime = 2 * time.Hour
		a.KudosCount = iptr(8)
	}))
	require.NoError(t, err)
	require.NoError(t, classifier.ClassifyActivity(context.Background(), long))

	short, err := store.CreateActivity(context.Background(), activityWith("short #skate", base.Add(24*time.Hour), func(a *domain.Activity) {
		id := int64(102)
		a.StravaID = &id
		a.Distance = f64(10000)
		a.MovingTime = &moving
		a.ElapsedTime = 100 * time.Minute
		a.KudosCount = iptr(3)
	}))
	require.NoError(t, err)
	require.NoError(t, classifier.ClassifyActivity(context.Background(), short))

	report, err := stats.TagYearReport(context.Background(), "MFF_misecky", 2022)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Count)
	rows := map[string]ReportRow{}
	for _, row := range report.Rows {
		rows[row.Label] = row
	}

	assert.Equal(t, "35", rows["km"].Value)
	assert.Equal(t, "10", rows["skate"].Value)
	assert.Equal(t, "25", rows["classic"].Value)
	assert.Equal(t, "11", rows["kudos"].Value)

	longest := rows["longest"]
	require.NotNil(t, longest.StravaID)
	assert.Equal(t, int64(101), *longest.StravaID)

	mostKudos := rows["kudos max"]
	require.NotNil(t, mostKudos.StravaID)
	assert.Equal(t, int64(101), *mostKudos.StravaID)
	assert.Equal(t, "8", mostKudos.Value)
}

func TestTagYearReportEmpty(t *testing.T) {
	store := newMemStore()
	stats := NewStatsService(store, nopLogger{}, newMemCache())
	classifier := NewClassifier(store, store, nopLogger{})
	require.NoError(t, classifier.EnsureTags(context.Background()))

	report, err := stats.TagYearReport(context.Background(), "MFF_misecky", 2021)
	require.NoError(t, err)
	assert.Zero(t, report.Count)
	assert.Empty(t, report.Rows)
}

func TestRenderPeriodStats(t *testing.T) {
	out := RenderPeriodStats(&PeriodStats{
		Name: "LAST WEEK",
		Rows: []StatRow{{Label: "ride", Km: 40, Hours: 2}},
	})
	assert.Contains(t, out, "LAST WEEK")
	assert.Contains(t, out, "ride")
	assert.Contains(t, out, "40.0")
}

func TestListActivitiesFilterByGear(t *testing.T) {
	store := newMemStore()
	gear, err := store.CreateGear(context.Background(), &domain.Gear{Name: "bike", Type: domain.GearBike})
	require.NoError(t, err)

	linked, err := store.CreateActivity(context.Background(), activityWith("linked", time.Now(), nil))
	require.NoError(t, err)
	_, err = store.CreateActivity(context.Background(), activityWith("unlinked", time.Now(), nil))
	require.NoError(t, err)
	require.NoError(t, store.AddGearToActivity(context.Background(), linked.ID, gear.ID))

	out, err := store.ListActivities(context.Background(), ports.ActivityFilter{GearID: &gear.ID})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "linked", out[0].Name)
}
