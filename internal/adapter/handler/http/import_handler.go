package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polasekp/strats/internal/adapter/strava"
	"github.com/polasekp/strats/internal/core/ports"
	"github.com/polasekp/strats/internal/core/services"
)

type ImportHandler struct {
	importService   *services.ImportService
	downloadService *services.DownloadService
	tokenService    *strava.TokenService
	logger          ports.LoggerPort
}

func NewImportHandler(
	importService *services.ImportService,
	downloadService *services.DownloadService,
	tokenService *strava.TokenService,
	logger ports.LoggerPort,
) *ImportHandler {
	return &ImportHandler{
		importService:   importService,
		downloadService: downloadService,
		tokenService:    tokenService,
		logger:          logger,
	}
}

type ImportRequest struct {
	After  *time.Time `json:"after,omitempty"`
	Before *time.Time `json:"before,omitempty"`
	Limit  int        `json:"limit,omitempty"`
	// Fast defaults to true when omitted; set it to false explicitly to fetch
	// per-activity detail.
	Fast          *bool `json:"fast,omitempty"`
	PerformUpdate bool  `json:"perform_update,omitempty"`
}

func (r ImportRequest) toOptions() services.ImportOptions {
	fast := true
	if r.Fast != nil {
		fast = *r.Fast
	}
	return services.ImportOptions{
		After:         r.After,
		Before:        r.Before,
		Limit:         r.Limit,
		Fast:          fast,
		PerformUpdate: r.PerformUpdate,
	}
}

type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type DownloadTracksResponse struct {
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
}

func (h *ImportHandler) RunImport(c *gin.Context) {
	var req ImportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
			return
		}
	}

	result, err := h.importService.Import(c.Request.Context(), req.toOptions())
	if err != nil {
		h.logger.Error("Import run failed", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadGateway, "Import failed: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExchangeCode bootstraps the token store from a one-time authorization code.
func (h *ImportHandler) ExchangeCode(c *gin.Context) {
	var req ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if err := h.tokenService.ExchangeCode(c.Request.Context(), req.Code); err != nil {
		h.logger.Error("Code exchange failed", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadGateway, "Code exchange failed")
		return
	}
	newSuccessResponse(c, http.StatusOK, "Authorization complete", nil)
}

func (h *ImportHandler) DownloadTracks(c *gin.Context) {
	tagName := c.Param("tag")

	downloaded, skipped, err := h.downloadService.DownloadTracksByTag(c.Request.Context(), tagName)
	if err != nil {
		h.logger.Error("Track download failed", map[string]interface{}{
			"error": err.Error(),
			"tag":   tagName,
		})
		newErrorResponse(c, http.StatusInternalServerError, "Track download failed")
		return
	}
	c.JSON(http.StatusOK, DownloadTracksResponse{Downloaded: downloaded, Skipped: skipped})
}
