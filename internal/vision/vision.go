// Package vision asks a multimodal model to guess a card's identity and
// condition from its photos.
package vision

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/signal"
	"github.com/sells-group/card-cli/pkg/anthropic"
)

// Guesser produces a vision guess for a set of card images. A zero outcome
// means no guess was available.
type Guesser interface {
	Guess(ctx context.Context, images []model.CardImage) model.VisionOutcome
}

// Assessment is a vision guess plus the condition evidence behind its grade.
type Assessment struct {
	Outcome  model.VisionOutcome `json:"outcome"`
	Evidence model.GradeEvidence `json:"evidence"`
	Raw      string              `json:"-"`
}

const systemPrompt = `You identify sports trading cards from photos.
Reply with one JSON object and nothing else, using these keys:
player, players, brand, set_name, subset, insert, sport, league, year,
card_number, rookie, parallel, grade, confidence, field_confidence, warnings,
grade_evidence.
- Use null for anything you cannot read. Never guess a year from design alone.
- year is the release year printed in the copyright line when visible.
- confidence and field_confidence values are "high", "medium" or "low".
- grade is a range label such as "PSA 8-9" based on visible condition.
- grade_evidence has centering (e.g. "55/45"), corners, surface, edges as
  short descriptions of what you see.`

// AnthropicGuesser implements Guesser on the Anthropic messages API.
type AnthropicGuesser struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicGuesser creates a guesser. maxTokens defaults to 1024.
func NewAnthropicGuesser(client anthropic.Client, model string, maxTokens int64) *AnthropicGuesser {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicGuesser{client: client, model: model, maxTokens: maxTokens}
}

// Guess returns the identity part of Assess.
func (g *AnthropicGuesser) Guess(ctx context.Context, images []model.CardImage) model.VisionOutcome {
	return g.Assess(ctx, images).Outcome
}

// Assess sends the images in one message. Transport failures yield a zero
// outcome so identity falls back to OCR alone; a malformed reply yields a
// parse failure.
func (g *AnthropicGuesser) Assess(ctx context.Context, images []model.CardImage) Assessment {
	if len(images) == 0 {
		return Assessment{}
	}

	imgs := make([]anthropic.Image, len(images))
	sides := make([]string, len(images))
	for i, img := range images {
		imgs[i] = anthropic.Image{MediaType: img.MediaType, Data: img.Data}
		sides[i] = img.Side
		if sides[i] == "" {
			sides[i] = "unknown"
		}
	}
	temp := 0.0
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		System:      systemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: "Images in order, by side: " + strings.Join(sides, ", ") + ".",
			Images:  imgs,
		}},
	})
	if err != nil {
		zap.L().Warn("vision: guess failed", zap.Error(err))
		return Assessment{}
	}
	resp.Usage.LogCost(g.model, "vision_guess")

	raw := resp.Text()
	out := Assessment{Outcome: signal.DecodeVision([]byte(raw)), Raw: raw}
	if out.Outcome.Failed() {
		zap.L().Warn("vision: unparseable reply", zap.String("reason", out.Outcome.Failure.Reason))
		return out
	}
	out.Evidence = decodeEvidence(raw)
	return out
}

// decodeEvidence pulls grade_evidence out of an already validated reply.
// Fields that are not strings are ignored.
func decodeEvidence(raw string) model.GradeEvidence {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")

	var payload struct {
		Evidence map[string]any `json:"grade_evidence"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil || payload.Evidence == nil {
		return model.GradeEvidence{}
	}
	str := func(k string) string {
		if s, ok := payload.Evidence[k].(string); ok {
			return strings.TrimSpace(s)
		}
		return ""
	}
	return model.GradeEvidence{
		Centering: str("centering"),
		Corners:   str("corners"),
		Surface:   str("surface"),
		Edges:     str("edges"),
	}
}
