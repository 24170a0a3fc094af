package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"signalmail/internal/model"
	"signalmail/internal/step"
)

// RunWelcome sends the personalized sign-up email for a freshly created
// user. A failed intro generation falls back to a fixed sentence; a failed
// send fails the whole flow and is left to the trigger's retry.
func (p *Pipeline) RunWelcome(ctx context.Context, runID string, payload model.UserCreatedData) (Report, error) {
	profile := profileLines(payload)

	intro, err := step.Do(ctx, p.steps, runID, "generate-welcome-intro", func(ctx context.Context) (string, error) {
		text, err := p.summarizer.WelcomeIntro(ctx, profile)
		if err != nil {
			slog.Error("failed to generate welcome intro", "email", payload.Email, "error", err)
			return "", nil
		}
		return text, nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("generate welcome intro: %w", err)
	}

	delivered, err := step.Do(ctx, p.steps, runID, "send-welcome-email", func(ctx context.Context) (bool, error) {
		text := intro
		if text == "" {
			text = welcomeFallbackIntro
		}
		return p.mailer.SendWelcome(ctx, payload.Email, payload.Name, text)
	})
	if err != nil {
		return Report{}, fmt.Errorf("send welcome email: %w", err)
	}
	if !delivered {
		slog.Warn("welcome email not delivered", "email", payload.Email)
	}

	return Report{Success: true, Message: "Welcome email sent successfully"}, nil
}

func profileLines(d model.UserCreatedData) string {
	return strings.Join([]string{
		"- Country: " + d.Country,
		"- Investment goals: " + d.InvestmentGoals,
		"- Risk tolerance: " + d.RiskTolerance,
		"- Preferred industry: " + d.PreferredIndustry,
	}, "\n")
}
