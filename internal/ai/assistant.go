package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"

	"calmcompanion/internal/models"
)

// TaskStep is one small action in a broken-down task
type TaskStep struct {
	Text  string `json:"text"`
	Emoji string `json:"emoji"`
}

// TaskBreakdown is the structured answer of BreakDownTask
type TaskBreakdown struct {
	TaskTitle string     `json:"taskTitle"`
	Steps     []TaskStep `json:"steps"`
}

var taskBreakdownSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"taskTitle": {Type: genai.TypeString},
		"steps": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"text":  {Type: genai.TypeString},
					"emoji": {Type: genai.TypeString},
				},
				Required: []string{"text", "emoji"},
			},
		},
	},
	Required: []string{"taskTitle", "steps"},
}

// Assistant turns user requests into model prompts. It never returns an
// error: when the gateway fails or times out, a localized fallback is used.
type Assistant struct {
	gateway Gateway
	timeout time.Duration
}

func NewAssistant(gateway Gateway, timeout time.Duration) *Assistant {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Assistant{gateway: gateway, timeout: timeout}
}

// SimplifyText rewrites text in plain language
func (a *Assistant) SimplifyText(ctx context.Context, text string, lang models.Language) string {
	lang = models.ParseLanguage(string(lang))
	prompt := fmt.Sprintf("Rewrite the following text in simple, literal language with short sentences. Keep the meaning.\n\n%s", text)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out, err := a.gateway.Text(ctx, prompt, lang)
	if err != nil {
		log.Printf("Warning: simplify text failed: %v", err)
		return fallbackFor(lang).simplify
	}
	return out
}

// SocialStory writes a short first-person story preparing the reader for situation
func (a *Assistant) SocialStory(ctx context.Context, situation string, lang models.Language) string {
	lang = models.ParseLanguage(string(lang))
	prompt := fmt.Sprintf("Write a short social story (5 to 8 sentences, first person, present tense) that helps the reader prepare for this situation: %s", situation)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out, err := a.gateway.Text(ctx, prompt, lang)
	if err != nil {
		log.Printf("Warning: social story failed: %v", err)
		return fallbackFor(lang).story
	}
	return out
}

// BreakDownTask splits task into small concrete steps
func (a *Assistant) BreakDownTask(ctx context.Context, task string, lang models.Language) TaskBreakdown {
	lang = models.ParseLanguage(string(lang))
	prompt := fmt.Sprintf("Break this task into 3 to 7 small, concrete steps. Give each step one emoji. Task: %s", task)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var out TaskBreakdown
	err := a.gateway.JSON(ctx, prompt, lang, taskBreakdownSchema, &out)
	if err == nil && len(out.Steps) == 0 {
		err = errors.New("no steps returned")
	}
	if err != nil {
		log.Printf("Warning: task breakdown failed: %v", err)
		return fallbackBreakdown(task, lang)
	}
	if out.TaskTitle == "" {
		out.TaskTitle = task
	}
	return out
}

// Illustrate returns a data URL for a calm illustration of subject, or "" when
// no image could be produced.
func (a *Assistant) Illustrate(ctx context.Context, subject string) string {
	prompt := fmt.Sprintf("A simple, calm, friendly flat illustration with soft colours and no text: %s", subject)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	img, err := a.gateway.Image(ctx, prompt)
	if err != nil {
		log.Printf("Warning: illustration failed: %v", err)
		return ""
	}
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

type fallback struct {
	simplify string
	story    string
	steps    []TaskStep
}

var fallbacks = map[models.Language]fallback{
	models.LanguagePortuguese: {
		simplify: "Não consegui simplificar o texto agora. Tente de novo mais tarde.",
		story:    "Não consegui criar a história agora. Respire fundo e tente de novo mais tarde.",
		steps: []TaskStep{
			{Text: "Prepare o que você precisa", Emoji: "🧺"},
			{Text: "Faça a primeira parte", Emoji: "👉"},
			{Text: "Faça uma pausa", Emoji: "🌿"},
			{Text: "Termine a tarefa", Emoji: "✅"},
		},
	},
	models.LanguageEnglish: {
		simplify: "I could not simplify the text right now. Please try again later.",
		story:    "I could not write the story right now. Take a deep breath and try again later.",
		steps: []TaskStep{
			{Text: "Get what you need ready", Emoji: "🧺"},
			{Text: "Do the first part", Emoji: "👉"},
			{Text: "Take a short break", Emoji: "🌿"},
			{Text: "Finish the task", Emoji: "✅"},
		},
	},
	models.LanguageSpanish: {
		simplify: "No pude simplificar el texto ahora. Inténtalo de nuevo más tarde.",
		story:    "No pude crear la historia ahora. Respira hondo e inténtalo de nuevo más tarde.",
		steps: []TaskStep{
			{Text: "Prepara lo que necesitas", Emoji: "🧺"},
			{Text: "Haz la primera parte", Emoji: "👉"},
			{Text: "Toma un descanso", Emoji: "🌿"},
			{Text: "Termina la tarea", Emoji: "✅"},
		},
	},
	models.LanguageFrench: {
		simplify: "Je n'ai pas pu simplifier le texte pour le moment. Réessaie plus tard.",
		story:    "Je n'ai pas pu écrire l'histoire pour le moment. Respire profondément et réessaie plus tard.",
		steps: []TaskStep{
			{Text: "Prépare ce dont tu as besoin", Emoji: "🧺"},
			{Text: "Fais la première partie", Emoji: "👉"},
			{Text: "Fais une pause", Emoji: "🌿"},
			{Text: "Termine la tâche", Emoji: "✅"},
		},
	},
}

func fallbackFor(lang models.Language) fallback {
	return fallbacks[models.ParseLanguage(string(lang))]
}

func fallbackBreakdown(task string, lang models.Language) TaskBreakdown {
	steps := fallbackFor(lang).steps
	out := TaskBreakdown{
		TaskTitle: strings.TrimSpace(task),
		Steps:     make([]TaskStep, len(steps)),
	}
	copy(out.Steps, steps)
	return out
}
