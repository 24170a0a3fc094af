package handler

import (
	"context"
	"log/slog"
	"net/http"

	"signalmail/internal/model"

	"github.com/gin-gonic/gin"
)

type EventPublisher interface {
	Publish(ctx context.Context, ev model.Event) error
}

type TriggerHandler struct {
	queue EventPublisher
}

func NewTriggerHandler(queue EventPublisher) *TriggerHandler {
	return &TriggerHandler{queue: queue}
}

type UserCreatedRequest struct {
	Email             string `json:"email" binding:"required,email"`
	Name              string `json:"name" binding:"required"`
	Country           string `json:"country"`
	InvestmentGoals   string `json:"investment_goals"`
	RiskTolerance     string `json:"risk_tolerance"`
	PreferredIndustry string `json:"preferred_industry"`
}

func (h *TriggerHandler) PostUserCreated(c *gin.Context) {
	var req UserCreatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, err := model.NewUserCreatedEvent(model.UserCreatedData{
		Email:             req.Email,
		Name:              req.Name,
		Country:           req.Country,
		InvestmentGoals:   req.InvestmentGoals,
		RiskTolerance:     req.RiskTolerance,
		PreferredIndustry: req.PreferredIndustry,
	})
	if err != nil {
		slog.Error("error building user created event", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Event error"})
		return
	}

	if err := h.queue.Publish(c.Request.Context(), ev); err != nil {
		slog.Error("error enqueueing user created event", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Queue error"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"event_id": ev.ID})
}

func (h *TriggerHandler) PostSendDailyNews(c *gin.Context) {
	ev := model.NewDailyNewsEvent()

	if err := h.queue.Publish(c.Request.Context(), ev); err != nil {
		slog.Error("error enqueueing daily news event", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Queue error"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"event_id": ev.ID})
}

func (h *TriggerHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
