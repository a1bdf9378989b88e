package domain

import "time"

// RemoteActivity is the typed shape of one Strava activity record as the core
// consumes it. The strava adapter populates it from the wire format, isolating
// the services from the API's JSON. Pointer fields are nil when the remote
// record did not report them; detail-only fields (power, calories, description)
// stay nil on summary records.
type RemoteActivity struct {
	ID          int64
	Name        string
	Description string
	Type        string
	ExternalID  *string
	DeviceName  string
	AthleteID   int64

	StartDate   time.Time
	MovingTime  *time.Duration
	ElapsedTime time.Duration

	Distance           *float64
	AverageSpeed       *float64
	MaxSpeed           *float64
	TotalElevationGain *float64
	AverageHeartrate   *float64
	MaxHeartrate       *int
	AverageCadence     *float64
	AverageTemp        *int
	Calories           *int
	Kilojoules         *float64
	SufferScore        *int

	AverageWatts         *float64
	MaxWatts             *float64
	WeightedAverageWatts *float64
	DeviceWatts          bool

	StartLat *float64
	StartLon *float64
	EndLat   *float64
	EndLon   *float64

	GearID string

	KudosCount       *int
	TotalPhotoCount  *int
	AchievementCount *int
	CommentCount     *int
	PRCount          *int
	AthleteCount     *int

	Race         bool
	Flagged      bool
	Commute      bool
	Manual       bool
	Private      bool
	HasHeartrate bool
	Visibility   string
}

// RemoteGear is the Strava gear detail record.
type RemoteGear struct {
	ID   string
	Name string
}
