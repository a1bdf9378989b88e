package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polasekp/strats/internal/core/domain"
)

type importFixture struct {
	store   *memStore
	source  *fakeSource
	cache   *memCache
	metrics *fakeMetrics
	service *ImportService
}

func newImportFixture(source *fakeSource) *importFixture {
	store := newMemStore()
	cache := newMemCache()
	metrics := &fakeMetrics{}
	logger := nopLogger{}
	validate := validator.New()

	mapper := NewMapper(logger)
	classifier := NewClassifier(store, store, logger)
	resolver := NewGearResolver(store, store, source, logger)

	return &importFixture{
		store:   store,
		source:  source,
		cache:   cache,
		metrics: metrics,
		service: NewImportService(store, source, mapper, classifier, resolver, logger, validate, metrics, cache),
	}
}

func summaryRecord(id int64, name string, start time.Time) *domain.RemoteActivity {
	return &domain.RemoteActivity{
		ID:          id,
		Name:        name,
		Type:        "NordicSki",
		StartDate:   start,
		ElapsedTime: time.Hour,
		Distance:    f64(12000),
	}
}

func TestImportAssignsIDsToCreatedEntities(t *testing.T) {
	start := time.Date(2023, 1, 10, 9, 0, 0, 0, time.UTC)
	rideOne := summaryRecord(3, "Ride one", start)
	rideOne.Type = "Ride"
	rideOne.GearID = "b111"
	rideTwo := summaryRecord(4, "Ride two", start.Add(24*time.Hour))
	rideTwo.Type = "Ride"
	rideTwo.GearID = "b222"
	source := &fakeSource{
		summaries: []*domain.RemoteActivity{rideOne, rideTwo},
		gear: map[string]*domain.RemoteGear{
			"b111": {ID: "b111", Name: "canyon"},
			"b222": {ID: "b222", Name: "cube"},
		},
	}

	// The strict store rejects nil and duplicate ids the way Postgres does, so
	// every created tag, activity and gear must arrive with its own id.
	store := newStrictStore()
	logger := nopLogger{}
	classifier := NewClassifier(store, store, logger)
	resolver := NewGearResolver(store, store, source, logger)
	service := NewImportService(store, source, NewMapper(logger), classifier, resolver,
		logger, validator.New(), &fakeMetrics{}, newMemCache())

	result, err := service.Import(context.Background(), ImportOptions{Fast: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 2, result.GearCreated)

	tags, err := store.ListTags(context.Background())
	require.NoError(t, err)
	assert.Len(t, tags, 3)
}

func TestImportCreatesActivities(t *testing.T) {
	start := time.Date(2023, 1, 10, 9, 0, 0, 0, time.UTC)
	source := &fakeSource{summaries: []*domain.RemoteActivity{
		summaryRecord(1, "Ski one", start),
		summaryRecord(2, "Ski two", start.Add(24*time.Hour)),
	}}
	fx := newImportFixture(source)

	result, err := fx.service.Import(context.Background(), ImportOptions{Fast: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Skipped)

	count, err := fx.store.CountActivities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, fx.metrics.runs)
}

func TestImportIsIdempotent(t *testing.T) {
	start := time.Date(2023, 1, 10, 9, 0, 0, 0, time.UTC)
	after := start.Add(-time.Hour)
	source := &fakeSource{summaries: []*domain.RemoteActivity{
		summaryRecord(1, "Ski one", start),
		summaryRecord(2, "Ski two", start.Add(24*time.Hour)),
	}}
	fx := newImportFixture(source)

	opts := ImportOptions{After: &after, Fast: true}
	first, err := fx.service.Import(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)

	second, err := fx.service.Import(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Skipped)

	count, err := fx.store.CountActivities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestImportPerformUpdateReimports(t *testing.T) {
	start := time.Date(2023, 1, 10, 9, 0, 0, 0, time.UTC)
	after := start.Add(-time.Hour)
	source := &fakeSource{summaries: []*domain.RemoteActivity{
		summaryRecord(1, "Ski one", start),
	}}
	fx := newImportFixture(source)

	opts := ImportOptions{After: &after, Fast: true}
	_, err := fx.service.Import(context.Background(), opts)
	require.NoError(t, err)

	source.summaries[0].Name = "Ski one (renamed)"
	opts.PerformUpdate = true
	result, err := fx.service.Import(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Created)

	updated, err := fx.store.GetActivityByStravaID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ski one (renamed)", updated.Name)

	count, err := fx.store.CountActivities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImportSlowModeFetchesDetails(t *testing.T) {
	start := time.Date(2023, 3, 2, 8, 0, 0, 0, time.UTC)
	summary := summaryRecord(5, "Ride", start)
	summary.Type = "Ride"

	detail := *summary
	detail.Description = "with power data"
	detail.AverageWatts = f64(210.4)

	source := &fakeSource{
		summaries: []*domain.RemoteActivity{summary},
		details:   map[int64]*domain.RemoteActivity{5: &detail},
	}
	fx := newImportFixture(source)

	_, err := fx.service.Import(context.Background(), ImportOptions{Fast: false})
	require.NoError(t, err)
	assert.Equal(t, 1, source.detailCalls)

	imported, err := fx.store.GetActivityByStravaID(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, imported.AveragePower)
	assert.Equal(t, 210, *imported.AveragePower)
	assert.Equal(t, "with power data", imported.Description)
}

func TestImportFastModeSkipsDetails(t *testing.T) {
	start := time.Date(2023, 3, 2, 8, 0, 0, 0, time.UTC)
	source := &fakeSource{summaries: []*domain.RemoteActivity{
		summaryRecord(5, "Ride", start),
	}}
	fx := newImportFixture(source)

	_, err := fx.service.Import(context.Background(), ImportOptions{Fast: true})
	require.NoError(t, err)
	assert.Zero(t, source.detailCalls)
}

func TestImportBadRecordDoesNotAbortRun(t *testing.T) {
	start := time.Date(2023, 1, 10, 9, 0, 0, 0, time.UTC)
	bad := summaryRecord(2, "", start.Add(time.Hour)) // empty name fails validation
	source := &fakeSource{summaries: []*domain.RemoteActivity{
		summaryRecord(1, "Ski one", start),
		bad,
		summaryRecord(3, "Ski three", start.Add(2*time.Hour)),
	}}
	fx := newImportFixture(source)

	result, err := fx.service.Import(context.Background(), ImportOptions{Fast: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)
}

func TestImportSourceFailureIsFatal(t *testing.T) {
	source := &fakeSource{activitiesErr: errors.New("401 unauthorized")}
	fx := newImportFixture(source)

	_, err := fx.service.Import(context.Background(), ImportOptions{Fast: true})
	assert.Error(t, err)
}

func TestImportDefaultWindowContinuesFromLatest(t *testing.T) {
	start := time.Date(2023, 1, 10, 9, 0, 0, 0, time.UTC)
	source := &fakeSource{summaries: []*domain.RemoteActivity{
		summaryRecord(1, "Ski one", start),
	}}
	fx := newImportFixture(source)

	existingStart := time.Date(2023, 1, 5, 10, 0, 0, 0, time.UTC)
	_, err := fx.store.CreateActivity(context.Background(), &domain.Activity{
		Name: "older", Start: existingStart, Type: domain.TypeXCSki, ElapsedTime: time.Hour,
	})
	require.NoError(t, err)

	_, err = fx.service.Import(context.Background(), ImportOptions{Fast: true})
	require.NoError(t, err)
	// the run went through; windowing is the source's concern, the orchestrator
	// only picks the bound
	count, err := fx.store.CountActivities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestImportClassifiesAndResolvesGear(t *testing.T) {
	start := time.Date(2023, 3, 2, 8, 0, 0, 0, time.UTC)
	record := summaryRecord(9, "Skate intervals #skate", start)
	source := &fakeSource{summaries: []*domain.RemoteActivity{record}}
	fx := newImportFixture(source)

	result, err := fx.service.Import(context.Background(), ImportOptions{Fast: true})
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)

	imported, err := fx.store.GetActivityByStravaID(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, imported.Tags, 1)
	assert.Equal(t, "skate", imported.Tags[0].Name)
}

func TestImportCreatesGearAndCountsIt(t *testing.T) {
	start := time.Date(2023, 3, 2, 8, 0, 0, 0, time.UTC)
	record := summaryRecord(11, "Commute", start)
	record.Type = "Ride"
	record.GearID = "b55"
	source := &fakeSource{
		summaries: []*domain.RemoteActivity{record},
		gear:      map[string]*domain.RemoteGear{"b55": {ID: "b55", Name: "Gravel bike"}},
	}
	fx := newImportFixture(source)

	result, err := fx.service.Import(context.Background(), ImportOptions{Fast: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.GearCreated)

	imported, err := fx.store.GetActivityByStravaID(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, imported.Gear, 1)
	assert.Equal(t, "Gravel bike", imported.Gear[0].Name)
}

func TestImportInvalidatesStatsCache(t *testing.T) {
	start := time.Date(2023, 1, 10, 9, 0, 0, 0, time.UTC)
	source := &fakeSource{summaries: []*domain.RemoteActivity{
		summaryRecord(1, "Ski one", start),
	}}
	fx := newImportFixture(source)
	require.NoError(t, fx.cache.Set("stats:period:LAST WEEK:2023-01-09", []byte("{}"), time.Minute))

	_, err := fx.service.Import(context.Background(), ImportOptions{Fast: true})
	require.NoError(t, err)

	_, err = fx.cache.Get("stats:period:LAST WEEK:2023-01-09")
	assert.Error(t, err)
}
