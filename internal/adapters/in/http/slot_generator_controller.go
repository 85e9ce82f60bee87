package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/clinic-availability-engine/internal/config"
	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
	"github.com/suchimauz/clinic-availability-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/in"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/out"
)

type SlotGeneratorController struct {
	useCase in.SlotGeneratorUseCase
	cfg     *config.Config
	logger  out.LoggerPort
	limiter *rateLimiterStore
}

func NewSlotGeneratorController(useCase in.SlotGeneratorUseCase, cfg *config.Config, logger out.LoggerPort) *SlotGeneratorController {
	return &SlotGeneratorController{
		useCase: useCase,
		cfg:     cfg,
		logger:  logger.WithModule("SlotGeneratorController"),
		limiter: newRateLimiterStore(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
	}
}

func (c *SlotGeneratorController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", c.health)

	api := router.Group("/api/v1")
	api.Use(
		requestLogger(c.logger),
		rateLimit(c.limiter, c.logger),
		basicAuth(c.cfg.Auth.BasicClients),
		requestTimeout(c.cfg.HTTP.RequestTimeout),
	)
	{
		api.GET("/clinicians/:clinicianId/slots", c.generateSlots)
		api.GET("/clinicians/:clinicianId/availability", c.checkAvailability)
		api.POST("/slots/generate-batch", c.generateBatchSlots)
		api.POST("/series/expand", c.expandSeries)
		api.POST("/schedules/validate", c.validateSchedule)
		api.GET("/schedules/default", c.defaultSchedule)
	}
}

type GenerateBatchSlotsRequest struct {
	ClinicianIDs []string `json:"clinicianIds" binding:"required,min=1"`
	Date         string   `json:"date" binding:"required"`
	Duration     int      `json:"duration" binding:"required"`
}

type ExpandSeriesRequest struct {
	Base    domain.Occurrence        `json:"base"`
	Pattern domain.RecurrencePattern `json:"pattern"`
}

func (c *SlotGeneratorController) generateSlots(ctx *gin.Context) {
	clinicianID := ctx.Param("clinicianId")

	date, err := json_types.ParseDate(ctx.Query("date"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	duration, err := strconv.Atoi(ctx.Query("duration"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration"})
		return
	}

	slots, debugInfo, err := c.useCase.GenerateSlots(ctx.Request.Context(), clinicianID, date, duration)
	if err != nil {
		respondError(ctx, err)
		return
	}

	response := gin.H{
		"clinicianId": clinicianID,
		"date":        json_types.Date{Date: date},
		"duration":    duration,
		"slots":       slots,
	}
	if ctx.Query("debug") == "true" {
		response["debug"] = debugInfo
	}

	ctx.JSON(http.StatusOK, response)
}

func (c *SlotGeneratorController) generateBatchSlots(ctx *gin.Context) {
	var req GenerateBatchSlotsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := json_types.ParseDate(req.Date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	result, err := c.useCase.GenerateBatchSlots(ctx.Request.Context(), req.ClinicianIDs, date, req.Duration)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"results": result})
}

func (c *SlotGeneratorController) checkAvailability(ctx *gin.Context) {
	clinicianID := ctx.Param("clinicianId")

	date, err := json_types.ParseDate(ctx.Query("date"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	t, err := domain.ParseTime(ctx.Query("time"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.useCase.CheckAvailability(ctx.Request.Context(), clinicianID, date, t)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"clinicianId": clinicianID,
		"date":        json_types.Date{Date: date},
		"time":        t,
		"available":   result.Available,
		"reason":      result.Reason,
	})
}

func (c *SlotGeneratorController) expandSeries(ctx *gin.Context) {
	var req ExpandSeriesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series, err := c.useCase.ExpandSeries(ctx.Request.Context(), req.Base, req.Pattern)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, series)
}

func (c *SlotGeneratorController) validateSchedule(ctx *gin.Context) {
	var schedule domain.WeeklySchedule
	if err := ctx.ShouldBindJSON(&schedule); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Предупреждения не блокируют ответ: решение о сохранении принимает клиент
	ctx.JSON(http.StatusOK, c.useCase.ValidateSchedule(ctx.Request.Context(), schedule))
}

func (c *SlotGeneratorController) defaultSchedule(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, domain.DefaultSchedule())
}

func (c *SlotGeneratorController) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": c.cfg.App.Version,
	})
}
