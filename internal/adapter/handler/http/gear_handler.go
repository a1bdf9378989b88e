package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
	"github.com/polasekp/strats/internal/core/services"
)

type GearHandler struct {
	gearService      *services.GearService
	accessoryService *services.AccessoryService
	logger           ports.LoggerPort
}

func NewGearHandler(
	gearService *services.GearService,
	accessoryService *services.AccessoryService,
	logger ports.LoggerPort,
) *GearHandler {
	return &GearHandler{
		gearService:      gearService,
		accessoryService: accessoryService,
		logger:           logger,
	}
}

type GearRequest struct {
	Name     string  `json:"name" binding:"required"`
	Type     string  `json:"type" binding:"required"`
	StravaID *string `json:"strava_id,omitempty"`
}

type GearDistanceResponse struct {
	GearID     uuid.UUID `json:"gear_id"`
	DistanceKm float64   `json:"distance_km"`
}

type AccessoryRequest struct {
	Name         string     `json:"name" binding:"required"`
	Type         string     `json:"type" binding:"required"`
	Description  string     `json:"description"`
	GearID       string     `json:"gear_id" binding:"required"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
}

type DeregisterAccessoryRequest struct {
	At *time.Time `json:"at,omitempty"`
}

type AccessoryDistanceResponse struct {
	AccessoryID uuid.UUID `json:"accessory_id"`
	DistanceKm  float64   `json:"distance_km"`
}

func (h *GearHandler) CreateGear(c *gin.Context) {
	var req GearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create gear", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	gear := &domain.Gear{
		Name:     req.Name,
		Type:     domain.GearType(req.Type),
		StravaID: req.StravaID,
		IsActive: true,
	}

	createdGear, err := h.gearService.CreateGear(c.Request.Context(), gear)
	if err != nil {
		h.logger.Error("Failed to create gear", map[string]interface{}{
			"error": err.Error(),
			"name":  req.Name,
		})
		newErrorResponse(c, http.StatusBadRequest, "Failed to create gear")
		return
	}
	newSuccessResponse(c, http.StatusCreated, "Gear created successfully", createdGear)
}

func (h *GearHandler) GetGear(c *gin.Context) {
	gearID := c.Param("id")

	gear, err := h.gearService.GetGearByID(c.Request.Context(), gearID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Gear not found")
			return
		}
		newErrorResponse(c, http.StatusBadRequest, "Invalid gear ID")
		return
	}
	c.JSON(http.StatusOK, gear)
}

func (h *GearHandler) ListGear(c *gin.Context) {
	gear, err := h.gearService.ListGear(c.Request.Context())
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to list gear")
		return
	}
	c.JSON(http.StatusOK, gin.H{"gear": gear, "count": len(gear)})
}

type UpdateGearRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *GearHandler) UpdateGear(c *gin.Context) {
	gearID := c.Param("id")

	var req UpdateGearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	gear, err := h.gearService.UpdateGear(c.Request.Context(), gearID, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Gear not found")
			return
		}
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	newSuccessResponse(c, http.StatusOK, "Gear updated", gear)
}

func (h *GearHandler) RetireGear(c *gin.Context) {
	gearID := c.Param("id")

	gear, err := h.gearService.RetireGear(c.Request.Context(), gearID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Gear not found")
			return
		}
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	newSuccessResponse(c, http.StatusOK, "Gear retired", gear)
}

func (h *GearHandler) GetGearDistance(c *gin.Context) {
	gearID := c.Param("id")

	gear, err := h.gearService.GetGearByID(c.Request.Context(), gearID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Gear not found")
			return
		}
		newErrorResponse(c, http.StatusBadRequest, "Invalid gear ID")
		return
	}

	km, err := h.gearService.GearDistanceKm(c.Request.Context(), gearID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to compute gear distance")
		return
	}
	c.JSON(http.StatusOK, GearDistanceResponse{GearID: gear.ID, DistanceKm: km})
}

func (h *GearHandler) ListAccessories(c *gin.Context) {
	gearID := c.Param("id")

	accessories, err := h.accessoryService.ListAccessoriesByGear(c.Request.Context(), gearID)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid gear ID")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessories": accessories, "count": len(accessories)})
}

func (h *GearHandler) CreateAccessory(c *gin.Context) {
	var req AccessoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create accessory", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	gearID, err := uuid.Parse(req.GearID)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid gear ID")
		return
	}

	accessory := &domain.Accessory{
		Name:        req.Name,
		Type:        domain.AccessoryType(req.Type),
		Description: req.Description,
		GearID:      gearID,
		IsActive:    true,
	}
	if req.RegisteredAt != nil {
		accessory.RegisteredAt = *req.RegisteredAt
	}

	createdAccessory, err := h.accessoryService.CreateAccessory(c.Request.Context(), accessory)
	if err != nil {
		if errors.Is(err, domain.ErrActiveAccessoryExists) {
			newErrorResponse(c, http.StatusConflict, "Gear already has an active accessory of this type")
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Gear not found")
			return
		}
		newErrorResponse(c, http.StatusBadRequest, "Failed to create accessory")
		return
	}
	newSuccessResponse(c, http.StatusCreated, "Accessory created successfully", createdAccessory)
}

func (h *GearHandler) DeregisterAccessory(c *gin.Context) {
	accessoryID := c.Param("id")

	var req DeregisterAccessoryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
			return
		}
	}

	at := time.Time{}
	if req.At != nil {
		at = *req.At
	}

	accessory, err := h.accessoryService.DeregisterAccessory(c.Request.Context(), accessoryID, at)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Accessory not found")
			return
		}
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	newSuccessResponse(c, http.StatusOK, "Accessory deregistered", accessory)
}

func (h *GearHandler) GetAccessoryDistance(c *gin.Context) {
	accessoryID := c.Param("id")

	km, err := h.accessoryService.AccessoryDistanceKm(c.Request.Context(), accessoryID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Accessory not found")
			return
		}
		newErrorResponse(c, http.StatusBadRequest, "Invalid accessory ID")
		return
	}

	accessoryUUID, _ := uuid.Parse(accessoryID)
	c.JSON(http.StatusOK, AccessoryDistanceResponse{AccessoryID: accessoryUUID, DistanceKm: km})
}
