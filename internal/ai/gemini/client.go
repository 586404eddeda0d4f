package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-1.5-pro"

const detectPrompt = `이 문서가 스캔된 이미지나 사진으로 구성되어 있는지 판단해주세요.
텍스트 레이어 없이 이미지로만 이루어져 있으면 "YES", 추출 가능한 텍스트 레이어가 있으면 "NO"라고만 답해주세요.`

const ocrPrompt = `이 문서의 모든 텍스트를 추출해주세요.
주택 청약 공고문입니다. 숫자, 날짜, 금액을 정확하게 읽어주세요.
원문 그대로, 설명 없이 텍스트만 출력해주세요.`

// Client wraps the Google GenAI client for text generation and vision OCR.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a Client configured for the Gemini API backend.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{client: client, model: model}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// GenerateContent sends a text prompt and returns the concatenated textual
// response.
func (c *Client) GenerateContent(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: maxTokens,
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return collectText(resp)
}

// DetectImageContent asks the vision model whether the document is
// image-based and needs OCR.
func (c *Client) DetectImageContent(ctx context.Context, data []byte, mimeType string) (bool, error) {
	answer, err := c.generateWithDocument(ctx, detectPrompt, data, mimeType, nil)
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToUpper(answer), "YES"), nil
}

// RecognizeText runs vision OCR over the document bytes.
func (c *Client) RecognizeText(ctx context.Context, data []byte, mimeType string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0)),
		MaxOutputTokens: 8192,
	}
	return c.generateWithDocument(ctx, ocrPrompt, data, mimeType, config)
}

func (c *Client) generateWithDocument(ctx context.Context, prompt string, data []byte, mimeType string, config *genai.GenerateContentConfig) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}
	if len(data) == 0 {
		return "", errors.New("document data must not be empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return collectText(resp)
}

func collectText(resp *genai.GenerateContentResponse) (string, error) {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}
