package services

import (
	"context"
	"fmt"
	"time"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

type ReportRow struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	StravaID *int64 `json:"strava_id,omitempty"`
}

// TagYearReport is the per-year campaign summary (total and per-technique
// kilometers, times, extremes and social counters).
type TagYearReport struct {
	Tag   string      `json:"tag"`
	Year  int         `json:"year"`
	Count int         `json:"count"`
	Rows  []ReportRow `json:"rows"`
}

// TagYearReport summarizes one year of nordic-ski activities carrying the tag.
// Extreme rows (longest, most kudos) tie-break to the earliest activity in the
// repository's stable order.
func (s *StatsService) TagYearReport(ctx context.Context, tagName string, year int) (*TagYearReport, error) {
	activities, err := s.activityRepo.ListActivities(ctx, ports.ActivityFilter{
		TagName: tagName,
		Types:   []domain.ActivityType{domain.TypeXCSki},
		Year:    &year,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	report := &TagYearReport{Tag: tagName, Year: year, Count: len(activities)}
	if len(activities) == 0 {
		return report, nil
	}

	totalKm := sumDistanceKm(activities, 0)
	movingTime := sumMovingTime(activities)
	elapsedTime := sumElapsedTime(activities)
	waitingTime := elapsedTime - movingTime

	report.add("km", fmt.Sprintf("%.0f", totalKm))
	report.add("skate", fmt.Sprintf("%.0f", sumDistanceKm(filterByTag(activities, "skate"), 0)))
	report.add("classic", fmt.Sprintf("%.0f", sumDistanceKm(filterByTag(activities, "classic"), 0)))
	report.add("time", formatDuration(movingTime))

	if elevation := SumField(activities, IntField(func(a *domain.Activity) *int { return a.ElevationGain })); elevation != nil {
		report.add("elevation gain", fmt.Sprintf("%.0f m", *elevation))
	}
	if hours := movingTime.Hours(); hours > 0 {
		report.add("avg speed", fmt.Sprintf("%.1f km/h", domain.Round(totalKm/hours, 1)))
	}
	report.add("km/activity", fmt.Sprintf("%.1f", domain.Round(totalKm/float64(len(activities)), 1)))
	report.add("activities", fmt.Sprintf("%d", len(activities)))

	if cadence := AvgField(activities, func(a *domain.Activity) *float64 { return a.AverageCadence }, 1); cadence != nil {
		report.add("avg cadence", fmt.Sprintf("%.1f", *cadence))
	}
	if heartrate := AvgField(activities, func(a *domain.Activity) *float64 { return a.AverageHeartrate }, 1); heartrate != nil {
		report.add("avg heartrate", fmt.Sprintf("%.1f", *heartrate))
	}
	if temp := AvgField(activities, IntField(func(a *domain.Activity) *int { return a.AverageTemp }), 1); temp != nil {
		report.add("avg temp", fmt.Sprintf("%.1f", *temp))
	}

	if longest, _ := MaxField(activities, func(a *domain.Activity) *float64 { return a.Distance }); longest != nil {
		report.Rows = append(report.Rows, ReportRow{
			Label:    "longest",
			Value:    fmt.Sprintf("%.1f km", longest.DistanceKm()),
			StravaID: longest.StravaID,
		})
	}

	if kudos := SumField(activities, IntField(func(a *domain.Activity) *int { return a.KudosCount })); kudos != nil {
		report.add("kudos", fmt.Sprintf("%.0f", *kudos))
	}
	if mostKudos, value := MaxField(activities, IntField(func(a *domain.Activity) *int { return a.KudosCount })); mostKudos != nil {
		report.Rows = append(report.Rows, ReportRow{
			Label:    "kudos max",
			Value:    fmt.Sprintf("%.0f", *value),
			StravaID: mostKudos.StravaID,
		})
	}
	if photos := SumField(activities, IntField(func(a *domain.Activity) *int { return a.PhotoCount })); photos != nil {
		report.add("photos", fmt.Sprintf("%.0f", *photos))
	}

	report.add("waiting time", formatDuration(waitingTime))
	if elapsedTime > 0 {
		report.add("waiting (%)", fmt.Sprintf("%.0f", float64(waitingTime)/float64(elapsedTime)*100))
	}

	return report, nil
}

func (r *TagYearReport) add(label, value string) {
	r.Rows = append(r.Rows, ReportRow{Label: label, Value: value})
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%d:%02d", hours, minutes)
}
