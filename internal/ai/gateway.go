// Package ai wraps the generative model used for text simplification,
// social stories, task breakdowns and illustrations.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"calmcompanion/internal/models"
)

// ErrGatewayDisabled is returned by every call when no API key is configured
var ErrGatewayDisabled = errors.New("ai gateway disabled")

// Gateway is the external model. Implementations must honour ctx cancellation.
type Gateway interface {
	Text(ctx context.Context, prompt string, lang models.Language) (string, error)
	JSON(ctx context.Context, prompt string, lang models.Language, schema *genai.Schema, out any) error
	Image(ctx context.Context, prompt string) (Image, error)
}

// Image is a generated picture
type Image struct {
	MIMEType string
	Data     []byte
}

// GenAIGateway calls Gemini models through the genai SDK
type GenAIGateway struct {
	client     *genai.Client
	textModel  string
	imageModel string
	debug      bool
}

// NewGenAIGateway creates a gateway. An empty apiKey yields a disabled
// gateway whose calls fail with ErrGatewayDisabled.
func NewGenAIGateway(ctx context.Context, apiKey, textModel, imageModel string, debug bool) (*GenAIGateway, error) {
	if apiKey == "" {
		log.Println("AI gateway disabled: GENAI_API_KEY not configured")
		return &GenAIGateway{debug: debug}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	log.Printf("AI gateway enabled: text=%s, image=%s", textModel, imageModel)
	return &GenAIGateway{
		client:     client,
		textModel:  textModel,
		imageModel: imageModel,
		debug:      debug,
	}, nil
}

// Enabled reports whether calls reach the model
func (g *GenAIGateway) Enabled() bool {
	return g.client != nil
}

func (g *GenAIGateway) Text(ctx context.Context, prompt string, lang models.Language) (string, error) {
	if !g.Enabled() {
		return "", ErrGatewayDisabled
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: languageInstruction(lang),
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("GenAI returned no text")
	}
	if g.debug {
		log.Printf("[DEBUG] GenAI text response: %d bytes", len(text))
	}
	return text, nil
}

func (g *GenAIGateway) JSON(ctx context.Context, prompt string, lang models.Language, schema *genai.Schema, out any) error {
	if !g.Enabled() {
		return ErrGatewayDisabled
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: languageInstruction(lang),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	})
	if err != nil {
		return fmt.Errorf("GenAI generate failed: %w", err)
	}

	if err := json.Unmarshal([]byte(resp.Text()), out); err != nil {
		return fmt.Errorf("failed to decode GenAI response: %w", err)
	}
	return nil
}

func (g *GenAIGateway) Image(ctx context.Context, prompt string) (Image, error) {
	if !g.Enabled() {
		return Image{}, ErrGatewayDisabled
	}

	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return Image{}, fmt.Errorf("GenAI image generation failed: %w", err)
	}

	for _, generated := range resp.GeneratedImages {
		if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		mime := generated.Image.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		return Image{MIMEType: mime, Data: generated.Image.ImageBytes}, nil
	}
	return Image{}, errors.New("GenAI returned no image")
}

var languageNames = map[models.Language]string{
	models.LanguagePortuguese: "Brazilian Portuguese",
	models.LanguageEnglish:    "English",
	models.LanguageSpanish:    "Spanish",
	models.LanguageFrench:     "French",
}

func languageInstruction(lang models.Language) *genai.Content {
	name := languageNames[models.ParseLanguage(string(lang))]
	return genai.NewContentFromText(
		"You support autistic and neurodivergent users. Use short, literal, calm sentences. Always answer in "+name+".",
		genai.RoleUser,
	)
}
