package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventUserCreated   = "user.created"
	EventSendDailyNews = "send.daily.news"
)

// Event is the trigger envelope moved through the Redis queue. ID doubles
// as the durable run ID, so a re-delivered event resumes its checkpoints.
type Event struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	Attempts  int             `json:"attempts"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// UserCreatedData is the payload carried by a user.created event.
type UserCreatedData struct {
	Email             string `json:"email"`
	Name              string `json:"name"`
	Country           string `json:"country"`
	InvestmentGoals   string `json:"investment_goals"`
	RiskTolerance     string `json:"risk_tolerance"`
	PreferredIndustry string `json:"preferred_industry"`
}

func NewUserCreatedEvent(data UserCreatedData) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:        uuid.NewString(),
		Name:      EventUserCreated,
		CreatedAt: time.Now().UTC(),
		Data:      raw,
	}, nil
}

func NewDailyNewsEvent() Event {
	return Event{
		ID:        uuid.NewString(),
		Name:      EventSendDailyNews,
		CreatedAt: time.Now().UTC(),
	}
}
