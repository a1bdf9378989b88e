package strava

import (
	"time"

	"github.com/polasekp/strats/internal/core/domain"
)

// wireActivity is the Strava API activity record. Summary and detail records
// share this shape; detail-only fields stay nil on summaries. Optional
// numerics are pointers so an absent field is distinguishable from zero.
type wireActivity struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SportType   string `json:"sport_type"`
	Type        string `json:"type"`
	ExternalID  *string `json:"external_id"`
	DeviceName  string  `json:"device_name"`

	Athlete struct {
		ID int64 `json:"id"`
	} `json:"athlete"`

	StartDate   time.Time `json:"start_date"`
	MovingTime  *int64    `json:"moving_time"`
	ElapsedTime int64     `json:"elapsed_time"`

	Distance           *float64 `json:"distance"`
	AverageSpeed       *float64 `json:"average_speed"`
	MaxSpeed           *float64 `json:"max_speed"`
	TotalElevationGain *float64 `json:"total_elevation_gain"`
	AverageHeartrate   *float64 `json:"average_heartrate"`
	MaxHeartrate       *float64 `json:"max_heartrate"`
	AverageCadence     *float64 `json:"average_cadence"`
	AverageTemp        *int     `json:"average_temp"`
	Calories           *float64 `json:"calories"`
	Kilojoules         *float64 `json:"kilojoules"`
	SufferScore        *float64 `json:"suffer_score"`

	AverageWatts         *float64 `json:"average_watts"`
	MaxWatts             *float64 `json:"max_watts"`
	WeightedAverageWatts *float64 `json:"weighted_average_watts"`
	DeviceWatts          bool     `json:"device_watts"`

	StartLatLng []float64 `json:"start_latlng"`
	EndLatLng   []float64 `json:"end_latlng"`

	GearID string `json:"gear_id"`

	KudosCount       *int `json:"kudos_count"`
	TotalPhotoCount  *int `json:"total_photo_count"`
	AchievementCount *int `json:"achievement_count"`
	CommentCount     *int `json:"comment_count"`
	PRCount          *int `json:"pr_count"`
	AthleteCount     *int `json:"athlete_count"`

	WorkoutType  *int   `json:"workout_type"`
	Flagged      bool   `json:"flagged"`
	Commute      bool   `json:"commute"`
	Manual       bool   `json:"manual"`
	Private      bool   `json:"private"`
	HasHeartrate bool   `json:"has_heartrate"`
	Visibility   string `json:"visibility"`
}

// workout_type 1 and 11 are the race values Strava uses for runs and rides.
func (w *wireActivity) isRace() bool {
	return w.WorkoutType != nil && (*w.WorkoutType == 1 || *w.WorkoutType == 11)
}

func (w *wireActivity) toRemote() *domain.RemoteActivity {
	remote := &domain.RemoteActivity{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Type:        w.category(),
		ExternalID:  w.ExternalID,
		DeviceName:  w.DeviceName,
		AthleteID:   w.Athlete.ID,

		StartDate:   w.StartDate,
		ElapsedTime: time.Duration(w.ElapsedTime) * time.Second,

		Distance:           w.Distance,
		AverageSpeed:       w.AverageSpeed,
		MaxSpeed:           w.MaxSpeed,
		TotalElevationGain: w.TotalElevationGain,
		AverageHeartrate:   w.AverageHeartrate,
		MaxHeartrate:       floatToInt(w.MaxHeartrate),
		AverageCadence:     w.AverageCadence,
		AverageTemp:        w.AverageTemp,
		Calories:           floatToInt(w.Calories),
		Kilojoules:         w.Kilojoules,
		SufferScore:        floatToInt(w.SufferScore),

		AverageWatts:         w.AverageWatts,
		MaxWatts:             w.MaxWatts,
		WeightedAverageWatts: w.WeightedAverageWatts,
		DeviceWatts:          w.DeviceWatts,

		GearID: w.GearID,

		KudosCount:       w.KudosCount,
		TotalPhotoCount:  w.TotalPhotoCount,
		AchievementCount: w.AchievementCount,
		CommentCount:     w.CommentCount,
		PRCount:          w.PRCount,
		AthleteCount:     w.AthleteCount,

		Race:         w.isRace(),
		Flagged:      w.Flagged,
		Commute:      w.Commute,
		Manual:       w.Manual,
		Private:      w.Private,
		HasHeartrate: w.HasHeartrate,
		Visibility:   w.Visibility,
	}

	if w.MovingTime != nil {
		moving := time.Duration(*w.MovingTime) * time.Second
		remote.MovingTime = &moving
	}
	if len(w.StartLatLng) == 2 {
		remote.StartLat = &w.StartLatLng[0]
		remote.StartLon = &w.StartLatLng[1]
	}
	if len(w.EndLatLng) == 2 {
		remote.EndLat = &w.EndLatLng[0]
		remote.EndLon = &w.EndLatLng[1]
	}
	return remote
}

// category prefers the newer sport_type field over the legacy type.
func (w *wireActivity) category() string {
	if w.SportType != "" {
		return w.SportType
	}
	return w.Type
}

type wireGear struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (w *wireGear) toRemote() *domain.RemoteGear {
	return &domain.RemoteGear{ID: w.ID, Name: w.Name}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

func floatToInt(v *float64) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}
