package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polasekp/strats/internal/core/domain"
)

func TestResolveGearNoReference(t *testing.T) {
	store := newMemStore()
	source := &fakeSource{}
	resolver := NewGearResolver(store, store, source, nopLogger{})

	activity, err := store.CreateActivity(context.Background(), &domain.Activity{
		Name: "walk", Start: time.Now(), Type: domain.TypeWalk, ElapsedTime: time.Hour,
	})
	require.NoError(t, err)

	gear, created, err := resolver.ResolveGear(context.Background(), &domain.RemoteActivity{Type: "Walk"}, activity.ID)
	require.NoError(t, err)
	assert.Nil(t, gear)
	assert.False(t, created)
	assert.Zero(t, source.gearCalls)
}

func TestResolveGearCreatesOnFirstSight(t *testing.T) {
	store := newMemStore()
	source := &fakeSource{gear: map[string]*domain.RemoteGear{
		"b123": {ID: "b123", Name: "Canyon Endurace"},
	}}
	resolver := NewGearResolver(store, store, source, nopLogger{})

	activity, err := store.CreateActivity(context.Background(), &domain.Activity{
		Name: "ride", Start: time.Now(), Type: domain.TypeRide, ElapsedTime: time.Hour,
	})
	require.NoError(t, err)

	remote := &domain.RemoteActivity{Type: "Ride", GearID: "b123"}
	gear, created, err := resolver.ResolveGear(context.Background(), remote, activity.ID)
	require.NoError(t, err)
	require.NotNil(t, gear)
	assert.True(t, created)
	assert.Equal(t, "Canyon Endurace", gear.Name)
	assert.Equal(t, domain.GearBike, gear.Type)
	require.NotNil(t, gear.StravaID)
	assert.Equal(t, "b123", *gear.StravaID)

	// the gear must be linked to the persisted activity
	loaded, err := store.GetActivityByID(context.Background(), activity.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Gear, 1)
	assert.Equal(t, gear.ID, loaded.Gear[0].ID)
}

func TestResolveGearReusesExisting(t *testing.T) {
	store := newMemStore()
	source := &fakeSource{gear: map[string]*domain.RemoteGear{
		"g9": {ID: "g9", Name: "Pegasus"},
	}}
	resolver := NewGearResolver(store, store, source, nopLogger{})

	first, err := store.CreateActivity(context.Background(), &domain.Activity{
		Name: "run 1", Start: time.Now(), Type: domain.TypeRun, ElapsedTime: time.Hour,
	})
	require.NoError(t, err)
	second, err := store.CreateActivity(context.Background(), &domain.Activity{
		Name: "run 2", Start: time.Now(), Type: domain.TypeRun, ElapsedTime: time.Hour,
	})
	require.NoError(t, err)

	remote := &domain.RemoteActivity{Type: "Run", GearID: "g9"}
	_, created, err := resolver.ResolveGear(context.Background(), remote, first.ID)
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = resolver.ResolveGear(context.Background(), remote, second.ID)
	require.NoError(t, err)
	assert.False(t, created)

	gears, err := store.ListGear(context.Background())
	require.NoError(t, err)
	assert.Len(t, gears, 1)
	assert.Equal(t, 1, source.gearCalls)
}

func TestResolveGearUnmappedCategoryCreatesNothing(t *testing.T) {
	store := newMemStore()
	source := &fakeSource{gear: map[string]*domain.RemoteGear{
		"s1": {ID: "s1", Name: "Fischer Speedmax"},
	}}
	resolver := NewGearResolver(store, store, source, nopLogger{})

	activity, err := store.CreateActivity(context.Background(), &domain.Activity{
		Name: "ski", Start: time.Now(), Type: domain.TypeXCSki, ElapsedTime: time.Hour,
	})
	require.NoError(t, err)

	// NordicSki has no gear-type mapping on purpose
	remote := &domain.RemoteActivity{Type: "NordicSki", GearID: "s1"}
	gear, created, err := resolver.ResolveGear(context.Background(), remote, activity.ID)
	require.NoError(t, err)
	assert.Nil(t, gear)
	assert.False(t, created)
	assert.Zero(t, source.gearCalls)

	gears, err := store.ListGear(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gears)
}

func TestResolveGearSourceFailure(t *testing.T) {
	store := newMemStore()
	source := &fakeSource{gearErr: errors.New("rate limited")}
	resolver := NewGearResolver(store, store, source, nopLogger{})

	activity, err := store.CreateActivity(context.Background(), &domain.Activity{
		Name: "ride", Start: time.Now(), Type: domain.TypeRide, ElapsedTime: time.Hour,
	})
	require.NoError(t, err)

	remote := &domain.RemoteActivity{Type: "Ride", GearID: "b77"}
	_, _, err = resolver.ResolveGear(context.Background(), remote, activity.ID)
	assert.Error(t, err)
}
