package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"calmcompanion/internal/models"
)

type fakeGateway struct {
	text     string
	textErr  error
	json     string
	jsonErr  error
	image    Image
	imageErr error
	block    bool

	lastLang   models.Language
	lastSchema *genai.Schema
}

func (f *fakeGateway) Text(ctx context.Context, prompt string, lang models.Language) (string, error) {
	f.lastLang = lang
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.textErr
}

func (f *fakeGateway) JSON(ctx context.Context, prompt string, lang models.Language, schema *genai.Schema, out any) error {
	f.lastLang = lang
	f.lastSchema = schema
	if f.jsonErr != nil {
		return f.jsonErr
	}
	bd, ok := out.(*TaskBreakdown)
	if !ok {
		return errors.New("unexpected target")
	}
	if f.json != "" {
		bd.TaskTitle = f.json
		bd.Steps = []TaskStep{{Text: "one", Emoji: "1️⃣"}, {Text: "two", Emoji: "2️⃣"}}
	}
	return nil
}

func (f *fakeGateway) Image(ctx context.Context, prompt string) (Image, error) {
	return f.image, f.imageErr
}

func TestSimplifyText(t *testing.T) {
	tests := []struct {
		name string
		gw   *fakeGateway
		lang models.Language
		want string
	}{
		{
			name: "success",
			gw:   &fakeGateway{text: "Short text."},
			lang: models.LanguageEnglish,
			want: "Short text.",
		},
		{
			name: "failure uses fallback",
			gw:   &fakeGateway{textErr: errors.New("quota")},
			lang: models.LanguageSpanish,
			want: fallbacks[models.LanguageSpanish].simplify,
		},
		{
			name: "unknown language resolves to english",
			gw:   &fakeGateway{textErr: ErrGatewayDisabled},
			lang: "de",
			want: fallbacks[models.LanguageEnglish].simplify,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssistant(tt.gw, time.Second)
			if got := a.SimplifyText(context.Background(), "long text", tt.lang); got != tt.want {
				t.Errorf("SimplifyText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSocialStoryTimesOut(t *testing.T) {
	gw := &fakeGateway{block: true}
	a := NewAssistant(gw, 10*time.Millisecond)

	got := a.SocialStory(context.Background(), "going to the dentist", models.LanguageFrench)
	if got != fallbacks[models.LanguageFrench].story {
		t.Errorf("SocialStory() = %q, want french fallback", got)
	}
	if gw.lastLang != models.LanguageFrench {
		t.Errorf("gateway language = %q, want fr", gw.lastLang)
	}
}

func TestBreakDownTask(t *testing.T) {
	t.Run("structured response", func(t *testing.T) {
		gw := &fakeGateway{json: "Brush teeth"}
		got := NewAssistant(gw, time.Second).BreakDownTask(context.Background(), "brush teeth", models.LanguageEnglish)

		if got.TaskTitle != "Brush teeth" || len(got.Steps) != 2 {
			t.Errorf("BreakDownTask() = %+v", got)
		}
		if gw.lastSchema != taskBreakdownSchema {
			t.Error("expected task breakdown schema to be sent")
		}
	})

	t.Run("empty response falls back", func(t *testing.T) {
		got := NewAssistant(&fakeGateway{}, time.Second).BreakDownTask(context.Background(), " tidy room ", models.LanguagePortuguese)

		if got.TaskTitle != "tidy room" {
			t.Errorf("TaskTitle = %q, want %q", got.TaskTitle, "tidy room")
		}
		if len(got.Steps) != len(fallbacks[models.LanguagePortuguese].steps) {
			t.Errorf("got %d steps", len(got.Steps))
		}
	})

	t.Run("fallback steps are copies", func(t *testing.T) {
		a := NewAssistant(&fakeGateway{jsonErr: errors.New("down")}, time.Second)
		got := a.BreakDownTask(context.Background(), "x", models.LanguageEnglish)
		got.Steps[0].Text = "changed"

		if fallbacks[models.LanguageEnglish].steps[0].Text == "changed" {
			t.Error("fallback table was mutated")
		}
	})
}

func TestIllustrate(t *testing.T) {
	a := NewAssistant(&fakeGateway{image: Image{MIMEType: "image/png", Data: []byte("png")}}, time.Second)
	if got := a.Illustrate(context.Background(), "a cat"); !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("Illustrate() = %q", got)
	}

	a = NewAssistant(&fakeGateway{imageErr: ErrGatewayDisabled}, time.Second)
	if got := a.Illustrate(context.Background(), "a cat"); got != "" {
		t.Errorf("Illustrate() on failure = %q, want empty", got)
	}
}

func TestDisabledGateway(t *testing.T) {
	gw, err := NewGenAIGateway(context.Background(), "", "text", "image", false)
	if err != nil {
		t.Fatalf("NewGenAIGateway() error = %v", err)
	}
	if gw.Enabled() {
		t.Fatal("gateway without key should be disabled")
	}

	if _, err := gw.Text(context.Background(), "hi", models.LanguageEnglish); !errors.Is(err, ErrGatewayDisabled) {
		t.Errorf("Text() error = %v, want ErrGatewayDisabled", err)
	}
	var out TaskBreakdown
	if err := gw.JSON(context.Background(), "hi", models.LanguageEnglish, taskBreakdownSchema, &out); !errors.Is(err, ErrGatewayDisabled) {
		t.Errorf("JSON() error = %v, want ErrGatewayDisabled", err)
	}
	if _, err := gw.Image(context.Background(), "hi"); !errors.Is(err, ErrGatewayDisabled) {
		t.Errorf("Image() error = %v, want ErrGatewayDisabled", err)
	}
}
