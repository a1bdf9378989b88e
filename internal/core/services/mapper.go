package services

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

// overrideMarker introduces the correction block in an activity description.
// Strava's computed fields (elevation gain above all) are sometimes wrong and
// get corrected by hand in the description; values from the block win over the
// remote-reported ones.
const overrideMarker = "strats_json"

var stravaTypeToActivityType = map[string]domain.ActivityType{
	"Run":            domain.TypeRun,
	"Ride":           domain.TypeRide,
	"VirtualRide":    domain.TypeVirtualRide,
	"VirtualRun":     domain.TypeVirtualRun,
	"Hike":           domain.TypeHike,
	"NordicSki":      domain.TypeXCSki,
	"RollerSki":      domain.TypeRollerSki,
	"AlpineSki":      domain.TypeAlpineSki,
	"BackcountrySki": domain.TypeBackcountrySki,
	"Swim":           domain.TypeSwim,
	"Walk":           domain.TypeWalk,
	"Workout":        domain.TypeWorkout,
	"Canoeing":       domain.TypeCanoeing,
	"RockClimbing":   domain.TypeClimbing,
	"IceSkate":       domain.TypeIceSkate,
}

// overrideBlock carries the corrective values parsed from a description.
type overrideBlock struct {
	Distance      *float64 `json:"distance"`
	AverageSpeed  *float64 `json:"average_speed"`
	MaxSpeed      *float64 `json:"max_speed"`
	ElevationGain *float64 `json:"elevation_gain"`
}

// Mapper transforms one remote activity record into canonical Activity fields.
// It never writes to the store; the orchestrator persists its output.
type Mapper struct {
	logger ports.LoggerPort
}

func NewMapper(logger ports.LoggerPort) *Mapper {
	return &Mapper{logger: logger}
}

// MapActivity builds a canonical Activity from a remote record. Absent remote
// fields stay nil so aggregates exclude them; they are never zero-filled.
func (m *Mapper) MapActivity(remote *domain.RemoteActivity) *domain.Activity {
	override := m.parseOverrideBlock(remote.Description)

	stravaID := remote.ID
	activity := &domain.Activity{
		StravaID:    &stravaID,
		Name:        remote.Name,
		Description: remote.Description,
		AthleteID:   remote.AthleteID,
		ExternalID:  remote.ExternalID,
		DeviceName:  remote.DeviceName,

		Distance:     domain.RoundPtr(pick(override.Distance, remote.Distance), 2),
		AverageSpeed: domain.RoundPtr(pick(override.AverageSpeed, remote.AverageSpeed), 2),
		MaxSpeed:     domain.RoundPtr(pick(override.MaxSpeed, remote.MaxSpeed), 2),

		AverageHeartrate: domain.RoundPtr(remote.AverageHeartrate, 1),
		MaxHeartrate:     remote.MaxHeartrate,
		AverageCadence:   domain.RoundPtr(remote.AverageCadence, 1),
		AverageTemp:      remote.AverageTemp,
		Calories:         remote.Calories,
		Kcal:             floatToIntPtr(remote.Kilojoules),
		SufferScore:      remote.SufferScore,
		ElevationGain:    floatToIntPtr(pick(override.ElevationGain, remote.TotalElevationGain)),

		AveragePower:         floatToIntPtr(remote.AverageWatts),
		MaxPower:             floatToIntPtr(remote.MaxWatts),
		WeightedAveragePower: floatToIntPtr(remote.WeightedAverageWatts),
		HasPowerMeter:        remote.DeviceWatts,

		Start:       remote.StartDate,
		MovingTime:  remote.MovingTime,
		ElapsedTime: remote.ElapsedTime,

		StartLat: domain.RoundPtr(remote.StartLat, 6),
		StartLon: domain.RoundPtr(remote.StartLon, 6),
		EndLat:   domain.RoundPtr(remote.EndLat, 6),
		EndLon:   domain.RoundPtr(remote.EndLon, 6),

		Type:       mapActivityType(remote.Type),
		TypeStrava: remote.Type,

		KudosCount:       remote.KudosCount,
		PhotoCount:       remote.TotalPhotoCount,
		AchievementCount: remote.AchievementCount,
		CommentCount:     remote.CommentCount,
		PRCount:          remote.PRCount,
		PuncturesCount:   countPunctures(remote.Description),

		Race:         remote.Race,
		Flagged:      remote.Flagged,
		Commute:      remote.Commute,
		Manual:       remote.Manual,
		Private:      remote.Private,
		HasHeartrate: remote.HasHeartrate,
		Visibility:   remote.Visibility,
		AthleteCount: remote.AthleteCount,
	}

	return activity
}

// mapActivityType resolves the remote category string; anything outside the
// table is Other, never an error.
func mapActivityType(stravaType string) domain.ActivityType {
	if t, ok := stravaTypeToActivityType[stravaType]; ok {
		return t
	}
	return domain.TypeOther
}

// parseOverrideBlock extracts the JSON object that follows the strats_json
// marker. A missing or malformed block yields an empty override.
func (m *Mapper) parseOverrideBlock(description string) overrideBlock {
	var block overrideBlock
	markerAt := strings.Index(description, overrideMarker)
	if markerAt == -1 {
		return block
	}
	rest := description[markerAt+len(overrideMarker):]
	start := strings.Index(rest, "{")
	if start == -1 {
		return block
	}
	end := strings.Index(rest[start:], "}")
	if end == -1 {
		return block
	}
	raw := rest[start : start+end+1]
	if err := json.Unmarshal([]byte(raw), &block); err != nil {
		m.logger.Warn("Malformed override block in activity description", map[string]interface{}{
			"error": err.Error(),
			"raw":   raw,
		})
		return overrideBlock{}
	}
	return block
}

// countPunctures parses the #puncture token: absent -> 0, bare -> 1,
// #puncture_N -> N. Feeds tyre wear analytics.
func countPunctures(description string) int {
	for _, word := range strings.Fields(strings.ToLower(description)) {
		if !strings.Contains(word, "#puncture") {
			continue
		}
		parts := strings.SplitN(word, "_", 2)
		if len(parts) < 2 {
			return 1
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return 1
		}
		return n
	}
	return 0
}

// pick prefers the override value when it is populated.
func pick(override, remote *float64) *float64 {
	if override != nil {
		return override
	}
	return remote
}

// floatToIntPtr truncates toward zero, not rounds.
func floatToIntPtr(v *float64) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}
