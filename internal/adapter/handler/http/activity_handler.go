package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
	"github.com/polasekp/strats/internal/core/services"
)

type ActivityHandler struct {
	activityService *services.ActivityService
	logger          ports.LoggerPort
}

func NewActivityHandler(
	activityService *services.ActivityService,
	logger ports.LoggerPort,
) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

type ActivityInfo struct {
	ID          uuid.UUID `json:"id"`
	StravaID    *int64    `json:"strava_id,omitempty"`
	StravaLink  string    `json:"strava_link,omitempty"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Start       time.Time `json:"start"`
	DistanceKm  float64   `json:"distance_km"`
	MovingTime  *int64    `json:"moving_time_s,omitempty"`
	ElapsedTime int64     `json:"elapsed_time_s"`
	Tags        []string  `json:"tags,omitempty"`
	Gear        []string  `json:"gear,omitempty"`
}

type ListActivitiesResponse struct {
	Activities []ActivityInfo `json:"activities"`
	Count      int            `json:"count"`
}

type CreateAthleteRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Nickname  string `json:"nickname"`
}

type AttachAthleteRequest struct {
	AthleteID string `json:"athlete_id" binding:"required"`
}

func (h *ActivityHandler) ListActivities(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	activities, err := h.activityService.ListActivities(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list activities", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	infos := make([]ActivityInfo, len(activities))
	for i, activity := range activities {
		infos[i] = toActivityInfo(activity)
	}
	c.JSON(http.StatusOK, ListActivitiesResponse{Activities: infos, Count: len(infos)})
}

func (h *ActivityHandler) GetActivity(c *gin.Context) {
	activityID := c.Param("id")

	activity, err := h.activityService.GetActivityByID(c.Request.Context(), activityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Activity not found")
			return
		}
		h.logger.Error("Failed to get activity", map[string]interface{}{
			"error":       err.Error(),
			"activity_id": activityID,
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid activity ID")
		return
	}
	c.JSON(http.StatusOK, activity)
}

func (h *ActivityHandler) CreateAthlete(c *gin.Context) {
	var req CreateAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create athlete", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	athlete, err := h.activityService.CreateAthlete(c.Request.Context(), &domain.Athlete{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Nickname:  req.Nickname,
	})
	if err != nil {
		h.logger.Error("Failed to create athlete", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to create athlete")
		return
	}
	newSuccessResponse(c, http.StatusCreated, "Athlete created successfully", athlete)
}

func (h *ActivityHandler) AttachAthlete(c *gin.Context) {
	activityID := c.Param("id")

	var req AttachAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.activityService.AttachAthlete(c.Request.Context(), activityID, req.AthleteID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Activity or athlete not found")
			return
		}
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	newSuccessResponse(c, http.StatusOK, "Athlete attached successfully", nil)
}

func filterFromQuery(c *gin.Context) (ports.ActivityFilter, error) {
	var filter ports.ActivityFilter

	if activityType := c.Query("type"); activityType != "" {
		filter.Types = []domain.ActivityType{domain.ActivityType(activityType)}
	}
	filter.TagName = c.Query("tag")

	if yearParam := c.Query("year"); yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			return filter, errors.New("invalid year")
		}
		filter.Year = &year
	}
	if gearParam := c.Query("gear_id"); gearParam != "" {
		gearID, err := uuid.Parse(gearParam)
		if err != nil {
			return filter, errors.New("invalid gear_id")
		}
		filter.GearID = &gearID
	}
	return filter, nil
}

func toActivityInfo(activity *domain.Activity) ActivityInfo {
	info := ActivityInfo{
		ID:          activity.ID,
		StravaID:    activity.StravaID,
		StravaLink:  activity.StravaLink(),
		Name:        activity.Name,
		Type:        string(activity.Type),
		Start:       activity.Start,
		DistanceKm:  activity.DistanceKm(),
		ElapsedTime: int64(activity.ElapsedTime.Seconds()),
	}
	if activity.MovingTime != nil {
		moving := int64(activity.MovingTime.Seconds())
		info.MovingTime = &moving
	}
	for _, tag := range activity.Tags {
		info.Tags = append(info.Tags, tag.Name)
	}
	for _, gear := range activity.Gear {
		info.Gear = append(info.Gear, gear.Name)
	}
	return info
}
