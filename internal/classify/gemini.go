// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"shapecount/internal/models"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

const geminiInstruction = `You read photos of school counting problems ("how many triangles / rectangles are in the figure").
The figure is either:
- a triangle whose interior is cut by horizontal lines and by slanted lines from the apex, or
- a rectangle cut by horizontal and vertical lines.
Answer strictly with JSON: {"image_type": "triangle" | "rectangle" | "", "arr_info": [int, ...]}.
arr_info lists the horizontal lines from the bottom one to the top one, including the base and top edges.
For a triangle, each entry is the number of slanted lines (including both sides) that meet that horizontal line.
For a rectangle, each entry is the number of vertical lines (including both sides) that cross that horizontal line.
If the figure is neither, return {"image_type": "", "arr_info": []}.`

// Gemini classifies images with a Google Gemini vision model. The model only
// reports the shape and per-line counts; the answer is computed locally.
type Gemini struct {
	apiKey string
	model  string
}

// NewGemini creates a Gemini classifier.
func NewGemini(apiKey, model string) *Gemini {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{apiKey: strings.TrimSpace(apiKey), model: model}
}

// Name implements Classifier.
func (g *Gemini) Name() string { return "gemini" }

// Classify implements Classifier.
func (g *Gemini) Classify(ctx context.Context, in Input) (*Result, error) {
	if g.apiKey == "" {
		return nil, errors.New("classify: gemini api key is empty")
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("classify: gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(geminiInstruction)},
	}

	mime := in.ContentType
	if mime == "" {
		mime = "image/png"
	}
	parts := []genai.Part{
		genai.Text("Classify this figure."),
		&genai.Blob{MIMEType: mime, Data: in.Data},
	}

	resp, err := withRetry(ctx, sleepCtx, func() (*genai.GenerateContentResponse, error) {
		return m.GenerateContent(ctx, parts...)
	})
	if err != nil {
		return nil, fmt.Errorf("classify: gemini: %w", err)
	}
	return parseGeminiAnswer(firstText(resp))
}

const geminiAttempts = 3

// withRetry runs call up to geminiAttempts times. It pauses between failed
// attempts only, never after the last one.
func withRetry[T any](ctx context.Context, sleep func(context.Context, time.Duration) error, call func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= geminiAttempts; attempt++ {
		out, err := call()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt == geminiAttempts {
			break
		}
		if err := sleep(ctx, retryDelay(attempt)); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// retryDelay is the pause after the given failed attempt.
func retryDelay(attempt int) time.Duration {
	return time.Duration(attempt) * 300 * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// geminiAnswer is the JSON shape the model is instructed to produce.
type geminiAnswer struct {
	ImageType models.ImageType  `json:"image_type"`
	ArrInfo   models.LineCounts `json:"arr_info"`
}

// parseGeminiAnswer decodes the model output and derives the answer.
func parseGeminiAnswer(text string) (*Result, error) {
	text = stripCodeFences(strings.TrimSpace(text))
	if text == "" {
		return nil, errors.New("classify: gemini returned an empty response")
	}

	var ans geminiAnswer
	if err := json.Unmarshal([]byte(text), &ans); err != nil {
		return nil, fmt.Errorf("classify: gemini bad JSON: %w", err)
	}
	if !ans.ImageType.Valid() || len(ans.ArrInfo) == 0 {
		return nil, ErrUnrecognized
	}

	counts := []int(ans.ArrInfo)
	for i, c := range counts {
		if c < 2 {
			return nil, fmt.Errorf("%w: line %d has %d crossings", ErrUnrecognized, i+1, c)
		}
	}

	return &Result{
		Kind:       ans.ImageType,
		Answer:     answerFor(ans.ImageType, counts),
		LineCounts: counts,
	}, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

// stripCodeFences removes a surrounding ```json ... ``` block if present.
func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func ptrFloat32(v float32) *float32 { return &v }
