package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

// Technique tags and the #-tokens that indicate them in an activity's name or
// description. Several tokens can map to one tag; all matches are attached.
var tagTokenToTagName = map[string]string{
	"skate":   "skate",
	"ft":      "skate",
	"classic": "classic",
	"cl":      "classic",
}

// baseTagNames are created idempotently before every import run.
var baseTagNames = []string{"skate", "classic", campaignTagName}

// The MFF Misecky training camp window; activities started inside it get the
// campaign tag.
const campaignTagName = "MFF_misecky"

var (
	campaignFrom = time.Date(2022, 12, 11, 0, 0, 0, 0, time.UTC)
	campaignTo   = time.Date(2022, 12, 15, 0, 0, 0, 0, time.UTC)
)

// Classifier derives tags from an activity's free text and start date. The
// rule table is fixed on purpose; there is no configuration for it.
type Classifier struct {
	activityRepo ports.ActivityRepository
	tagRepo      ports.TagRepository
	logger       ports.LoggerPort
	location     *time.Location
}

func NewClassifier(
	activityRepo ports.ActivityRepository,
	tagRepo ports.TagRepository,
	logger ports.LoggerPort,
) *Classifier {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		loc = time.UTC
	}
	return &Classifier{
		activityRepo: activityRepo,
		tagRepo:      tagRepo,
		logger:       logger,
		location:     loc,
	}
}

// EnsureTags creates the fixed tag set if any of it is missing. Safe to call
// before every run.
func (c *Classifier) EnsureTags(ctx context.Context) error {
	for _, name := range baseTagNames {
		_, err := c.tagRepo.GetTagByName(ctx, name)
		if err == nil {
			continue
		}
		if !isNotFound(err) {
			return fmt.Errorf("failed to look up tag %q: %w", name, err)
		}
		if _, err := c.tagRepo.CreateTag(ctx, &domain.Tag{ID: uuid.New(), Name: name}); err != nil {
			return fmt.Errorf("failed to create tag %q: %w", name, err)
		}
		c.logger.Info("Created tag", map[string]interface{}{"name": name})
	}
	return nil
}

// ClassifyActivity attaches every tag whose token appears (case-insensitively,
// #-prefixed) in name+description, plus the campaign tag when the start date
// falls inside the campaign window.
func (c *Classifier) ClassifyActivity(ctx context.Context, activity *domain.Activity) error {
	text := strings.ToLower(activity.Name + activity.Description)

	attached := map[string]bool{}
	for token, tagName := range tagTokenToTagName {
		if !strings.Contains(text, "#"+token) || attached[tagName] {
			continue
		}
		if err := c.attachTag(ctx, activity, tagName); err != nil {
			return err
		}
		attached[tagName] = true
	}

	if c.inCampaignWindow(activity.Start) && !attached[campaignTagName] {
		if err := c.attachTag(ctx, activity, campaignTagName); err != nil {
			return err
		}
	}
	return nil
}

func (c *Classifier) attachTag(ctx context.Context, activity *domain.Activity, tagName string) error {
	tag, err := c.tagRepo.GetTagByName(ctx, tagName)
	if err != nil {
		return fmt.Errorf("failed to look up tag %q: %w", tagName, err)
	}
	if err := c.activityRepo.AddTagToActivity(ctx, activity.ID, tag.ID); err != nil {
		return fmt.Errorf("failed to attach tag %q: %w", tagName, err)
	}
	c.logger.Info("Tag attached to activity", map[string]interface{}{
		"activity_id": activity.ID,
		"tag":         tagName,
	})
	return nil
}

// inCampaignWindow compares calendar dates in the home timezone, both bounds
// inclusive.
func (c *Classifier) inCampaignWindow(start time.Time) bool {
	local := start.In(c.location)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(campaignFrom) && !day.After(campaignTo)
}
