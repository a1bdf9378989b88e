package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

// memStore is an in-memory implementation of every repository port, used to
// exercise the services without a database.
type memStore struct {
	activities  []*domain.Activity
	gears       []*domain.Gear
	accessories []*domain.Accessory
	tags        []*domain.Tag
	athletes    []*domain.Athlete
	token       *domain.StravaToken

	activityTags     map[uuid.UUID]map[uuid.UUID]bool
	activityGears    map[uuid.UUID]map[uuid.UUID]bool
	activityAthletes map[uuid.UUID]map[uuid.UUID]bool
}

func newMemStore() *memStore {
	return &memStore{
		activityTags:     map[uuid.UUID]map[uuid.UUID]bool{},
		activityGears:    map[uuid.UUID]map[uuid.UUID]bool{},
		activityAthletes: map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (m *memStore) CreateActivity(_ context.Context, activity *domain.Activity) (*domain.Activity, error) {
	if activity.StravaID != nil {
		for _, existing := range m.activities {
			if existing.StravaID != nil && *existing.StravaID == *activity.StravaID {
				return nil, domain.ErrDuplicateRemoteID
			}
		}
	}
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	activity.CreatedAt = time.Now()
	activity.UpdatedAt = activity.CreatedAt
	m.activities = append(m.activities, activity)
	return activity, nil
}

func (m *memStore) UpdateActivity(_ context.Context, activity *domain.Activity) (*domain.Activity, error) {
	for i, existing := range m.activities {
		if existing.ID == activity.ID {
			activity.CreatedAt = existing.CreatedAt
			activity.UpdatedAt = time.Now()
			m.activities[i] = activity
			return activity, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) GetActivityByID(_ context.Context, id uuid.UUID) (*domain.Activity, error) {
	for _, a := range m.activities {
		if a.ID == id {
			return m.withLinks(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) GetActivityByStravaID(_ context.Context, stravaID int64) (*domain.Activity, error) {
	for _, a := range m.activities {
		if a.StravaID != nil && *a.StravaID == stravaID {
			return m.withLinks(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) ListActivities(_ context.Context, filter ports.ActivityFilter) ([]*domain.Activity, error) {
	var out []*domain.Activity
	for _, a := range m.activities {
		a = m.withLinks(a)
		if len(filter.Types) > 0 && !containsType(filter.Types, a.Type) {
			continue
		}
		if filter.TagName != "" && !hasTag(a, filter.TagName) {
			continue
		}
		if filter.GearID != nil && !m.activityGears[a.ID][*filter.GearID] {
			continue
		}
		if filter.Year != nil && a.Start.Year() != *filter.Year {
			continue
		}
		if filter.StartFrom != nil && a.Start.Before(*filter.StartFrom) {
			continue
		}
		if filter.StartTo != nil && a.Start.After(*filter.StartTo) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.After(out[j].Start) })
	return out, nil
}

func (m *memStore) CountActivities(_ context.Context) (int, error) {
	return len(m.activities), nil
}

func (m *memStore) LatestStart(_ context.Context) (*time.Time, error) {
	var latest *time.Time
	for _, a := range m.activities {
		if latest == nil || a.Start.After(*latest) {
			start := a.Start
			latest = &start
		}
	}
	return latest, nil
}

func (m *memStore) AddGearToActivity(_ context.Context, activityID, gearID uuid.UUID) error {
	if m.activityGears[activityID] == nil {
		m.activityGears[activityID] = map[uuid.UUID]bool{}
	}
	m.activityGears[activityID][gearID] = true
	return nil
}

func (m *memStore) AddTagToActivity(_ context.Context, activityID, tagID uuid.UUID) error {
	if m.activityTags[activityID] == nil {
		m.activityTags[activityID] = map[uuid.UUID]bool{}
	}
	m.activityTags[activityID][tagID] = true
	return nil
}

func (m *memStore) AddAthleteToActivity(_ context.Context, activityID, athleteID uuid.UUID) error {
	if m.activityAthletes[activityID] == nil {
		m.activityAthletes[activityID] = map[uuid.UUID]bool{}
	}
	m.activityAthletes[activityID][athleteID] = true
	return nil
}

// withLinks attaches the linked tags and gear the way the SQL repository does.
func (m *memStore) withLinks(a *domain.Activity) *domain.Activity {
	copied := *a
	copied.Tags = nil
	copied.Gear = nil
	for _, tag := range m.tags {
		if m.activityTags[a.ID][tag.ID] {
			copied.Tags = append(copied.Tags, tag)
		}
	}
	for _, gear := range m.gears {
		if m.activityGears[a.ID][gear.ID] {
			copied.Gear = append(copied.Gear, gear)
		}
	}
	return &copied
}

func (m *memStore) CreateGear(_ context.Context, gear *domain.Gear) (*domain.Gear, error) {
	if gear.ID == uuid.Nil {
		gear.ID = uuid.New()
	}
	gear.CreatedAt = time.Now()
	m.gears = append(m.gears, gear)
	return gear, nil
}

func (m *memStore) GetGearByID(_ context.Context, id uuid.UUID) (*domain.Gear, error) {
	for _, g := range m.gears {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) GetGearByStravaID(_ context.Context, stravaID string) (*domain.Gear, error) {
	for _, g := range m.gears {
		if g.StravaID != nil && *g.StravaID == stravaID {
			return g, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) ListGear(_ context.Context) ([]*domain.Gear, error) {
	return m.gears, nil
}

func (m *memStore) UpdateGear(_ context.Context, gear *domain.Gear) (*domain.Gear, error) {
	for i, g := range m.gears {
		if g.ID == gear.ID {
			m.gears[i] = gear
			return gear, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) CreateAccessory(_ context.Context, accessory *domain.Accessory) (*domain.Accessory, error) {
	if accessory.ID == uuid.Nil {
		accessory.ID = uuid.New()
	}
	accessory.CreatedAt = time.Now()
	m.accessories = append(m.accessories, accessory)
	return accessory, nil
}

func (m *memStore) GetAccessoryByID(_ context.Context, id uuid.UUID) (*domain.Accessory, error) {
	for _, a := range m.accessories {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) ListAccessoriesByGear(_ context.Context, gearID uuid.UUID) ([]*domain.Accessory, error) {
	var out []*domain.Accessory
	for _, a := range m.accessories {
		if a.GearID == gearID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) GetActiveAccessory(_ context.Context, gearID uuid.UUID, accessoryType domain.AccessoryType) (*domain.Accessory, error) {
	for _, a := range m.accessories {
		if a.GearID == gearID && a.Type == accessoryType && a.IsActive {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) UpdateAccessory(_ context.Context, accessory *domain.Accessory) (*domain.Accessory, error) {
	for i, a := range m.accessories {
		if a.ID == accessory.ID {
			m.accessories[i] = accessory
			return accessory, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) CreateTag(_ context.Context, tag *domain.Tag) (*domain.Tag, error) {
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	m.tags = append(m.tags, tag)
	return tag, nil
}

func (m *memStore) GetTagByName(_ context.Context, name string) (*domain.Tag, error) {
	for _, t := range m.tags {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) ListTags(_ context.Context) ([]*domain.Tag, error) {
	return m.tags, nil
}

func (m *memStore) CreateAthlete(_ context.Context, athlete *domain.Athlete) (*domain.Athlete, error) {
	if athlete.ID == uuid.Nil {
		athlete.ID = uuid.New()
	}
	m.athletes = append(m.athletes, athlete)
	return athlete, nil
}

func (m *memStore) ListAthletes(_ context.Context) ([]*domain.Athlete, error) {
	return m.athletes, nil
}

func (m *memStore) GetToken(_ context.Context) (*domain.StravaToken, error) {
	if m.token == nil {
		return nil, domain.ErrNotFound
	}
	return m.token, nil
}

func (m *memStore) SaveToken(_ context.Context, token *domain.StravaToken) error {
	m.token = token
	return nil
}

func containsType(types []domain.ActivityType, t domain.ActivityType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func hasTag(a *domain.Activity, name string) bool {
	for _, tag := range a.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// strictStore enforces the primary-key contract of the SQL repositories: ids
// must arrive from the caller, non-nil and unique. It never mints ids.
type strictStore struct {
	*memStore
}

func newStrictStore() *strictStore { return &strictStore{memStore: newMemStore()} }

func (s *strictStore) checkPK(id uuid.UUID, seen func(uuid.UUID) bool) error {
	if id == uuid.Nil {
		return errors.New("null value in column \"id\"")
	}
	if seen(id) {
		return errors.New("duplicate key value violates unique constraint")
	}
	return nil
}

func (s *strictStore) CreateActivity(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	err := s.checkPK(activity.ID, func(id uuid.UUID) bool {
		for _, a := range s.activities {
			if a.ID == id {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return s.memStore.CreateActivity(ctx, activity)
}

func (s *strictStore) CreateGear(ctx context.Context, gear *domain.Gear) (*domain.Gear, error) {
	err := s.checkPK(gear.ID, func(id uuid.UUID) bool {
		for _, g := range s.gears {
			if g.ID == id {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return s.memStore.CreateGear(ctx, gear)
}

func (s *strictStore) CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	err := s.checkPK(tag.ID, func(id uuid.UUID) bool {
		for _, t := range s.tags {
			if t.ID == id {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return s.memStore.CreateTag(ctx, tag)
}

// fakeSource replays canned remote records and counts calls.
type fakeSource struct {
	summaries []*domain.RemoteActivity
	details   map[int64]*domain.RemoteActivity
	gear      map[string]*domain.RemoteGear

	activitiesErr error
	detailErr     error
	gearErr       error

	detailCalls int
	gearCalls   int
}

func (f *fakeSource) GetActivities(_ context.Context, _, _ *time.Time, limit int) ([]*domain.RemoteActivity, error) {
	if f.activitiesErr != nil {
		return nil, f.activitiesErr
	}
	if limit < len(f.summaries) {
		return f.summaries[:limit], nil
	}
	return f.summaries, nil
}

func (f *fakeSource) GetActivity(_ context.Context, id int64) (*domain.RemoteActivity, error) {
	f.detailCalls++
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	detail, ok := f.details[id]
	if !ok {
		return nil, errors.New("no such activity")
	}
	return detail, nil
}

func (f *fakeSource) GetGear(_ context.Context, id string) (*domain.RemoteGear, error) {
	f.gearCalls++
	if f.gearErr != nil {
		return nil, f.gearErr
	}
	gear, ok := f.gear[id]
	if !ok {
		return nil, errors.New("no such gear")
	}
	return gear, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(key string) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (c *memCache) Set(key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(key string) error {
	delete(c.data, key)
	return nil
}

func (c *memCache) DeleteByPrefix(prefix string) error {
	for key := range c.data {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.data, key)
		}
	}
	return nil
}

type fakeMetrics struct {
	runs    int
	created int
	updated int
	skipped int
	gear    int
}

func (m *fakeMetrics) RecordHTTPRequest(string, string, int, time.Time) {}

func (m *fakeMetrics) RecordImportRun(created, updated, skipped, gearCreated int) {
	m.runs++
	m.created += created
	m.updated += updated
	m.skipped += skipped
	m.gear += gearCreated
}

// fakeDownloader records download requests and can pretend files exist.
type fakeDownloader struct {
	existing map[int64]bool
	calls    []int64
}

func (f *fakeDownloader) DownloadTrack(_ context.Context, activity *domain.Activity) (string, bool, error) {
	f.calls = append(f.calls, *activity.StravaID)
	if f.existing[*activity.StravaID] {
		return "", true, nil
	}
	return "/tmp/tracks/test.gpx", false, nil
}
