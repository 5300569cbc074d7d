package coach

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Analyzer is the AI surface the app depends on. The production
// implementation is GeminiClient; tests substitute doubles.
type Analyzer interface {
	AnalyzeScript(ctx context.Context, req ScriptRequest) (ScriptAnalysis, error)
	AnalyzeVideo(ctx context.Context, payload []byte, mimeType string) (VideoAnalysis, error)
}

type GeminiClient struct {
	baseURL string
	model   string
	apiKey  string
	httpc   *http.Client
}

func NewGeminiClient(baseURL, model, apiKey string, timeout time.Duration) *GeminiClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

const scriptResponseSchema = `{
  "type": "OBJECT",
  "properties": {
    "overallScore": {"type": "INTEGER", "description": "Overall viral potential score from 0-100"},
    "metrics": {
      "type": "ARRAY",
      "items": {
        "type": "OBJECT",
        "properties": {
          "name": {"type": "STRING"},
          "score": {"type": "INTEGER"},
          "color": {"type": "STRING"}
        }
      }
    },
    "weakestArea": {"type": "STRING", "description": "The specific area that needs the most work"},
    "suggestion": {"type": "STRING", "description": "Actionable advice in Hinglish"},
    "improvedHook": {"type": "STRING", "description": "A rewritten, stronger hook for the script"}
  },
  "required": ["overallScore", "metrics", "weakestArea", "suggestion", "improvedHook"]
}`

const videoResponseSchema = `{
  "type": "OBJECT",
  "properties": {
    "overallScore": {"type": "INTEGER"},
    "feedback": {"type": "STRING", "description": "Feedback in Hinglish"},
    "pacingScore": {"type": "INTEGER"},
    "visualScore": {"type": "INTEGER"},
    "hookScore": {"type": "INTEGER"},
    "prediction": {"type": "STRING", "description": "Viral prediction (e.g. 10k views, 1M views)"}
  }
}`

const videoInstruction = "Analyze this video clip for viral potential on Instagram/TikTok. Focus on visual pacing, lighting, and initial hook energy. Give feedback in friendly Hinglish."

func (c *GeminiClient) AnalyzeScript(ctx context.Context, req ScriptRequest) (ScriptAnalysis, error) {
	if emptyScript(req.Script) {
		return ScriptAnalysis{}, ErrEmptyScript
	}

	prompt := fmt.Sprintf(`Act as a viral content coach for Instagram Reels and TikTok.
Target Audience: India-first, Gen Z/Millennials.
Tone: Friendly, Hinglish (mix of Hindi/English), Motivational.

User Niche: %s
User Goal: %s

Analyze this script:
%q

Provide scores (0-100) for: Hook, Curiosity, Relatability, Emotion, Value, Trend, Pacing, Structure.
Identify the weakest area.
Give one specific improvement tip in Hinglish.
Rewrite the hook to be viral.`, req.Niche, req.Goal, req.Script)

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   json.RawMessage(scriptResponseSchema),
		},
	}

	text, err := c.generate(ctx, body)
	if err != nil {
		return ScriptAnalysis{}, err
	}

	var out ScriptAnalysis
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return ScriptAnalysis{}, fmt.Errorf("parse script analysis: %w", err)
	}
	if err := validateScriptAnalysis(out); err != nil {
		return ScriptAnalysis{}, err
	}
	bandMetricColors(out.Metrics)
	return out, nil
}

func (c *GeminiClient) AnalyzeVideo(ctx context.Context, payload []byte, mimeType string) (VideoAnalysis, error) {
	if len(payload) > MaxVideoBytes {
		return VideoAnalysis{}, ErrPayloadTooLarge
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(payload),
			}},
			{Text: videoInstruction},
		}}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   json.RawMessage(videoResponseSchema),
		},
	}

	text, err := c.generate(ctx, body)
	if err != nil {
		return VideoAnalysis{}, err
	}

	var out VideoAnalysis
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return VideoAnalysis{}, fmt.Errorf("parse video analysis: %w", err)
	}
	if err := validateVideoAnalysis(out); err != nil {
		return VideoAnalysis{}, err
	}
	return out, nil
}

func (c *GeminiClient) generate(ctx context.Context, body generateRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate request: unexpected status %d", resp.StatusCode)
	}

	var envelope generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("decode response: no candidates")
	}
	text := envelope.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("decode response: empty candidate text")
	}
	return text, nil
}

// Incomplete payloads are treated the same as transport failures, so
// the caller always substitutes the fallback.
func validateScriptAnalysis(a ScriptAnalysis) error {
	if a.OverallScore < 0 || a.OverallScore > 100 {
		return fmt.Errorf("script analysis: overall score %d out of range", a.OverallScore)
	}
	if len(a.Metrics) == 0 {
		return fmt.Errorf("script analysis: no metrics")
	}
	for _, m := range a.Metrics {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("script analysis: unnamed metric")
		}
		if m.Score < 0 || m.Score > 100 {
			return fmt.Errorf("script analysis: metric %q score %d out of range", m.Name, m.Score)
		}
	}
	if strings.TrimSpace(a.WeakestArea) == "" || strings.TrimSpace(a.Suggestion) == "" || strings.TrimSpace(a.ImprovedHook) == "" {
		return fmt.Errorf("script analysis: incomplete payload")
	}
	return nil
}

func validateVideoAnalysis(a VideoAnalysis) error {
	scores := []struct {
		name  string
		value int
	}{
		{"overall", a.OverallScore},
		{"pacing", a.PacingScore},
		{"visual", a.VisualScore},
		{"hook", a.HookScore},
	}
	for _, s := range scores {
		if s.value < 0 || s.value > 100 {
			return fmt.Errorf("video analysis: %s score %d out of range", s.name, s.value)
		}
	}
	if strings.TrimSpace(a.Feedback) == "" || strings.TrimSpace(a.Prediction) == "" {
		return fmt.Errorf("video analysis: incomplete payload")
	}
	return nil
}

var _ Analyzer = (*GeminiClient)(nil)
