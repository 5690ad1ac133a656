package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/eps-topik/config"
	"github.com/lshigami/eps-topik/internal/model"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

// StudyCoachService writes a short study-advice paragraph for a reviewed
// attempt. Without a Gemini key it returns an empty string.
type StudyCoachService interface {
	StudyAdvice(ctx context.Context, attempt *model.Attempt, examTitle string) (string, error)
}

type studyCoachService struct {
	client *genai.GenerativeModel
}

func NewStudyCoachService(lc fx.Lifecycle, cfg *config.Config) (StudyCoachService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Reviews will not include study advice.")
		return &studyCoachService{}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	gm := client.GenerativeModel(cfg.GeminiModel)
	gm.SetTemperature(0.4)
	return &studyCoachService{client: gm}, nil
}

func buildStudyPrompt(attempt *model.Attempt, examTitle string) string {
	var b strings.Builder
	b.WriteString("You are an experienced EPS-TOPIK (Korean language test for foreign workers) tutor.\n")
	b.WriteString("A student has just finished a practice exam. Based on the results below, write one short paragraph ")
	b.WriteString("(at most 120 words, in English) with concrete advice on what to study next. ")
	b.WriteString("Focus on the weakest topics and on the weaker of reading and listening. Do not repeat the numbers back.\n\n")

	fmt.Fprintf(&b, "Exam: %s\n", examTitle)
	s := attempt.Score
	fmt.Fprintf(&b, "Reading: %d/%d (%d%%)\n", s.Reading.Correct, s.Reading.Total, s.Reading.Percentage)
	fmt.Fprintf(&b, "Listening: %d/%d (%d%%)\n", s.Listening.Correct, s.Listening.Total, s.Listening.Percentage)
	fmt.Fprintf(&b, "Total: %d/%d (%d%%), passed: %t\n", s.Total.Correct, s.Total.Total, s.Total.Percentage, attempt.Passed)
	if len(attempt.TopicPerformance) > 0 {
		b.WriteString("Per topic:\n")
		for _, t := range attempt.TopicPerformance {
			fmt.Fprintf(&b, "- %s: %d/%d (%d%%)\n", t.Topic, t.Correct, t.Total, t.Percentage)
		}
	}
	return b.String()
}

func (s *studyCoachService) StudyAdvice(ctx context.Context, attempt *model.Attempt, examTitle string) (string, error) {
	if s.client == nil {
		return "", nil
	}

	resp, err := s.client.GenerateContent(ctx, genai.Text(buildStudyPrompt(attempt, examTitle)))
	if err != nil {
		log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("Gemini API error while generating study advice")
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		log.Warn().Uint("attemptID", attempt.ID).Msg("Gemini returned no candidates for study advice")
		return "", nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(text.String()), nil
}
