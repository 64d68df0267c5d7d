// Package genai is the client for the external speech-to-text and language
// model service. The service is opaque and untrusted: transcription returns
// free text and completions return raw JSON that may be malformed, so
// callers run everything it produces through the structured pipeline.
package genai

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	chatModel    = "gpt-4o-mini"
	whisperModel = "whisper-1"
)

const prescriptionSystemPrompt = `You are a clinical documentation AI assistant.
Extract only what is explicitly stated in the transcript.
Do NOT infer, guess, or speculate about diagnoses, causes, or treatments beyond what is said.
If a field is missing or uncertain, leave it empty or use "uncertain"; never invent data.
Return only valid JSON in the defined structure.`

const prescriptionJSONSchema = `Return JSON with this exact structure (no extra fields):
{
  "presenting_complaint": {"summary": "", "duration": "", "associated_symptoms": []},
  "diagnosis": {"primary": "", "differential": []},
  "medications": [],
  "investigations": [],
  "advice_and_followup": {"advice": [], "follow_up": ""}
}

Each medications item: { "name": "", "dosage": "", "frequency": "", "duration": "", "instructions": "" }
Each investigations item: { "test_name": "", "reason": "" }`

const summarySystemPrompt = `You are a medical scribe. Summarize the patient complaints in plain English, 1-2 sentences, <= 220 characters, no doctor instructions.`

// Client talks to an OpenAI-compatible API.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, apiKey string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(120 * time.Second)
	return &Client{http: http}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Transcribe sends recorded audio to the transcription endpoint and returns
// the plain-text transcript.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "audio.webm"
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(audio)).
		SetFormData(map[string]string{
			"model":           whisperModel,
			"response_format": "text",
		}).
		Post("/audio/transcriptions")
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("transcription failed: %s: %s", resp.Status(), resp.String())
	}
	return resp.String(), nil
}

// StructuredPrescription asks the model to extract a structured prescription
// from a consultation transcript. It returns the raw completion body; the
// caller is responsible for parsing and validating it.
func (c *Client) StructuredPrescription(ctx context.Context, transcript string) (string, error) {
	userContent := fmt.Sprintf("Transcript of doctor-patient conversation:\n\n%s\n\n%s",
		transcript, prescriptionJSONSchema)
	return c.complete(ctx, chatRequest{
		Model: chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: prescriptionSystemPrompt},
			{Role: "user", Content: userContent},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
		Temperature:    0.2,
	})
}

// Summarize produces a short plain-English summary of the complaints.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	return c.complete(ctx, chatRequest{
		Model: chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: summarySystemPrompt},
			{Role: "user", Content: transcript},
		},
		Temperature: 0.2,
	})
}

func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("completion failed: %s: %s", resp.Status(), resp.String())
	}
	if out.Error != nil {
		return "", fmt.Errorf("completion failed: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty completion response")
	}
	return out.Choices[0].Message.Content, nil
}
