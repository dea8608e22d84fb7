package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"task-reviewer-api/config"
	"task-reviewer-api/models"
)

// ReviewGenerator is the boundary to the external model that evaluates
// submissions and proposes follow-up tasks. Both calls are synchronous and
// bounded by the underlying client timeout; any failure is surfaced as a
// KindUpstream AppError and nothing is persisted on the caller's side.
type ReviewGenerator interface {
	Evaluate(ctx context.Context, task *models.TaskDefinition, submission models.Submission) (*models.AIReview, error)
	NextTask(ctx context.Context, record *models.ReviewRecord) (*models.NextTask, error)
}

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiGenerator calls the Gemini generateContent REST endpoint.
type GeminiGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiGenerator builds a generator from the loaded configuration. A nil
// client gets a default with the configured timeout.
func NewGeminiGenerator(cfg *config.Config, client *http.Client) *GeminiGenerator {
	if client == nil {
		timeout := cfg.GeminiTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &GeminiGenerator{
		apiKey:  cfg.GeminiAPIKey,
		model:   cfg.GeminiModel,
		baseURL: geminiBaseURL,
		client:  client,
	}
}

func (g *GeminiGenerator) Evaluate(ctx context.Context, task *models.TaskDefinition, submission models.Submission) (*models.AIReview, error) {
	prompt := fmt.Sprintf(`ROLE: You are an expert code and task reviewer.
TASK: Compare the user's SUBMISSION against the original TASK DESCRIPTION and produce a structured review.
Respond with a single JSON object with these fields:
  "score": integer 0-100,
  "summary": short summary of the submission,
  "done_well": array of strings,
  "missing": array of strings
---
ORIGINAL TASK DESCRIPTION:
%s
---
USER'S SUBMISSION (%s):
%s
---
Now provide your structured review.`, task.Description, submission.Kind, submission.Payload)

	var review models.AIReview
	if err := g.generateJSON(ctx, prompt, &review); err != nil {
		return nil, err
	}

	note, err := g.generateText(ctx, fmt.Sprintf(`ROLE: You are a supportive mentor providing feedback.
TASK: Write a short, 2-3 sentence feedback note for the learner.
---
REVIEW DATA:
- Score: %d/100
- What was done well: %s
- What to improve: %s
---
Please generate the feedback note now:`,
		review.Score,
		strings.Join(review.DoneWell, "; "),
		strings.Join(review.Missing, "; ")))
	if err != nil {
		return nil, err
	}
	review.FeedbackNote = strings.TrimSpace(note)

	return &review, nil
}

func (g *GeminiGenerator) NextTask(ctx context.Context, record *models.ReviewRecord) (*models.NextTask, error) {
	prompt := fmt.Sprintf(`ROLE: You are an intelligent project manager.
TASK: Based on the following review, generate a new, logical follow-up task.
Respond with a single JSON object with these fields:
  "title": string,
  "objectives": array of strings,
  "deliverables": string
---
PREVIOUS TASK REVIEW DATA:
- Score: %d
- What went well: %s
- What to improve: %s
---
Now, generate the next task:`,
		record.AIReview.Score,
		strings.Join(record.AIReview.DoneWell, "; "),
		strings.Join(record.AIReview.Missing, "; "))

	var next models.NextTask
	if err := g.generateJSON(ctx, prompt, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

func (g *GeminiGenerator) generateJSON(ctx context.Context, prompt string, out interface{}) error {
	text, err := g.generate(ctx, prompt, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), out); err != nil {
		return NewUpstreamError("review generator returned malformed JSON", err)
	}
	return nil
}

func (g *GeminiGenerator) generateText(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt, "")
}

func (g *GeminiGenerator) generate(ctx context.Context, prompt, mimeType string) (string, error) {
	if g.apiKey == "" {
		return "", NewUpstreamError("review generator is not configured (GOOGLE_API_KEY)", nil)
	}

	reqURL := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))

	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:      0.2,
			ResponseMimeType: mimeType,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", NewUpstreamError("encode generator request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", NewUpstreamError("build generator request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", NewUpstreamError("review generator request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", NewUpstreamError(
			fmt.Sprintf("review generator error: status %d body %s", resp.StatusCode, string(respBody)), nil)
	}

	var decoded struct {
		Candidates []struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", NewUpstreamError("decode generator response", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", NewUpstreamError("review generator returned no candidates", nil)
	}

	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

// stripCodeFence unwraps ```json fences some model responses still carry.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
