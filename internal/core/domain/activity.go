package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	TypeRun            ActivityType = "run"
	TypeRide           ActivityType = "ride"
	TypeVirtualRide    ActivityType = "virtual_ride"
	TypeVirtualRun     ActivityType = "virtual_run"
	TypeHike           ActivityType = "hike"
	TypeXCSki          ActivityType = "xc_ski"
	TypeRollerSki      ActivityType = "roller_ski"
	TypeAlpineSki      ActivityType = "alpine_ski"
	TypeBackcountrySki ActivityType = "backcountry_ski"
	TypeSwim           ActivityType = "swim"
	TypeWalk           ActivityType = "walk"
	TypeCanoeing       ActivityType = "canoeing"
	TypeClimbing       ActivityType = "climbing"
	TypeIceSkate       ActivityType = "ice_skate"
	TypeWorkout        ActivityType = "workout"
	TypeOther          ActivityType = "other"
)

// Activity is one exercise session, either imported from Strava (StravaID set)
// or entered manually (StravaID nil). Metric fields are pointers: a field the
// source did not report stays nil so it never skews an average.
type Activity struct {
	ID          uuid.UUID `json:"id"`
	StravaID    *int64    `json:"strava_id,omitempty"`
	Name        string    `json:"name" validate:"required,max=255"`
	Description string    `json:"description"`
	AthleteID   int64     `json:"athlete_id"`
	ExternalID  *string   `json:"external_id,omitempty"`
	DeviceName  string    `json:"device_name,omitempty"`

	Distance             *float64 `json:"distance,omitempty" validate:"omitempty,min=0"` // meters
	AverageSpeed         *float64 `json:"average_speed,omitempty" validate:"omitempty,min=0"`
	MaxSpeed             *float64 `json:"max_speed,omitempty" validate:"omitempty,min=0"`
	AverageHeartrate     *float64 `json:"average_heartrate,omitempty"`
	MaxHeartrate         *int     `json:"max_heartrate,omitempty"`
	AverageCadence       *float64 `json:"average_cadence,omitempty"`
	AveragePower         *int     `json:"average_power,omitempty"`
	MaxPower             *int     `json:"max_power,omitempty"`
	WeightedAveragePower *int     `json:"weighted_average_power,omitempty"`
	HasPowerMeter        bool     `json:"has_power_meter"`
	Calories             *int     `json:"calories,omitempty"`
	Kcal                 *int     `json:"kcal,omitempty"`
	AverageTemp          *int     `json:"average_temp,omitempty"`
	SufferScore          *int     `json:"suffer_score,omitempty"`
	ElevationGain        *int     `json:"elevation_gain,omitempty"` // meters

	Start       time.Time      `json:"start" validate:"required"`
	MovingTime  *time.Duration `json:"moving_time,omitempty" validate:"omitempty,min=0"`
	ElapsedTime time.Duration  `json:"elapsed_time" validate:"min=0"`

	StartLat *float64 `json:"start_lat,omitempty"`
	StartLon *float64 `json:"start_lon,omitempty"`
	EndLat   *float64 `json:"end_lat,omitempty"`
	EndLon   *float64 `json:"end_lon,omitempty"`

	Type       ActivityType `json:"type" validate:"required"`
	TypeStrava string       `json:"type_strava,omitempty"` // raw remote category string

	KudosCount       *int `json:"kudos_count,omitempty"`
	PhotoCount       *int `json:"photo_count,omitempty"`
	AchievementCount *int `json:"achievement_count,omitempty"`
	CommentCount     *int `json:"comment_count,omitempty"`
	PRCount          *int `json:"pr_count,omitempty"`
	PuncturesCount   int  `json:"punctures_count"`

	Race         bool   `json:"race"`
	Flagged      bool   `json:"flagged"`
	Commute      bool   `json:"commute"`
	Manual       bool   `json:"manual"`
	Private      bool   `json:"private"`
	HasHeartrate bool   `json:"has_heartrate"`
	Visibility   string `json:"visibility,omitempty"`

	// Strava only reports the athlete count; the linked Athletes are maintained
	// manually, so len(Athletes) and AthleteCount may differ.
	AthleteCount *int `json:"athlete_count,omitempty"`

	Gear     []*Gear    `json:"gear,omitempty"`
	Tags     []*Tag     `json:"tags,omitempty"`
	Athletes []*Athlete `json:"athletes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DistanceKm returns the distance in kilometers rounded to one decimal place,
// or 0 when the activity has no distance.
func (a *Activity) DistanceKm() float64 {
	if a.Distance == nil {
		return 0
	}
	return Round(*a.Distance/1000, 1)
}

func (a *Activity) StravaLink() string {
	if a.StravaID == nil {
		return ""
	}
	return "https://www.strava.com/activities/" + strconv.FormatInt(*a.StravaID, 10)
}
