package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/lshigami/eps-topik/internal/cache"
	"github.com/lshigami/eps-topik/internal/dto"
	"github.com/lshigami/eps-topik/internal/model"
	"github.com/lshigami/eps-topik/internal/repository"
	"github.com/rs/zerolog/log"
)

type QuestionService interface {
	CreateQuestion(ctx context.Context, req dto.QuestionUpsertRequest) (*dto.QuestionResponse, error)
	GetQuestion(ctx context.Context, id uint) (*dto.QuestionResponse, error)
	ListQuestions(ctx context.Context, query dto.ListQuestionsQuery) (*dto.QuestionListResponse, error)
	UpdateQuestion(ctx context.Context, id uint, req dto.QuestionUpsertRequest) (*dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, id uint) error
}

type questionService struct {
	repo     repository.QuestionRepository
	keyCache cache.AnswerKeyCache
}

func NewQuestionService(repo repository.QuestionRepository, keyCache cache.AnswerKeyCache) QuestionService {
	return &questionService{repo: repo, keyCache: keyCache}
}

// validateQuestion checks the option list and that the key names one of
// the options.
func validateQuestion(req *dto.QuestionUpsertRequest) error {
	if !model.QuestionType(req.Type).Valid() {
		return invalidInput("unknown question type %q", req.Type)
	}
	if len(req.Options) < 2 {
		return invalidInput("a question needs at least 2 options, got %d", len(req.Options))
	}
	seen := make(map[string]bool, len(req.Options))
	for i, o := range req.Options {
		label := strings.TrimSpace(o.Label)
		if label == "" {
			return invalidInput("option %d has an empty label", i+1)
		}
		if seen[label] {
			return invalidInput("duplicate option label %q", label)
		}
		seen[label] = true
		req.Options[i].Label = label
	}
	if !seen[strings.TrimSpace(req.CorrectAnswer)] {
		return invalidInput("correct answer %q is not one of the option labels", req.CorrectAnswer)
	}
	req.CorrectAnswer = strings.TrimSpace(req.CorrectAnswer)
	return nil
}

func applyQuestionRequest(q *model.Question, req *dto.QuestionUpsertRequest) {
	q.Type = model.QuestionType(req.Type)
	q.Text = req.Text
	q.KoreanText = req.KoreanText
	q.ImageURL = req.ImageURL
	q.AudioURL = req.AudioURL
	q.Options = make([]model.Option, len(req.Options))
	for i, o := range req.Options {
		q.Options[i] = model.Option{Label: o.Label, Text: o.Text, ImageURL: o.ImageURL, AudioURL: o.AudioURL}
	}
	q.CorrectAnswer = req.CorrectAnswer
	q.Topic = strings.TrimSpace(req.Topic)
	q.Difficulty = req.Difficulty
	if q.Difficulty == "" {
		q.Difficulty = "medium"
	}
}

func toQuestionResponse(q *model.Question) (*dto.QuestionResponse, error) {
	var resp dto.QuestionResponse
	if err := copier.Copy(&resp, q); err != nil {
		return nil, fmt.Errorf("error preparing question response: %w", err)
	}
	resp.Options = toOptionDTOs(q.Options)
	return &resp, nil
}

func toOptionDTOs(options []model.Option) []dto.OptionDTO {
	out := make([]dto.OptionDTO, len(options))
	for i, o := range options {
		out[i] = dto.OptionDTO{Label: o.Label, Text: o.Text, ImageURL: o.ImageURL, AudioURL: o.AudioURL}
	}
	return out
}

func (s *questionService) CreateQuestion(ctx context.Context, req dto.QuestionUpsertRequest) (*dto.QuestionResponse, error) {
	if err := validateQuestion(&req); err != nil {
		return nil, err
	}
	var question model.Question
	applyQuestionRequest(&question, &req)
	if err := s.repo.Create(ctx, &question); err != nil {
		log.Error().Err(err).Msg("Failed to create question")
		return nil, fmt.Errorf("error creating question: %w", err)
	}
	log.Info().Uint("questionID", question.ID).Str("type", string(question.Type)).Msg("Question created")
	return toQuestionResponse(&question)
}

func (s *questionService) GetQuestion(ctx context.Context, id uint) (*dto.QuestionResponse, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return toQuestionResponse(question)
}

func (s *questionService) ListQuestions(ctx context.Context, query dto.ListQuestionsQuery) (*dto.QuestionListResponse, error) {
	page := repository.Page{Page: query.Page, Limit: query.Limit}
	questions, total, err := s.repo.List(ctx, repository.QuestionFilter{
		Type:       model.QuestionType(query.Type),
		Topic:      query.Topic,
		Difficulty: query.Difficulty,
		Page:       page,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to list questions")
		return nil, fmt.Errorf("error fetching questions: %w", err)
	}

	resp := &dto.QuestionListResponse{
		Questions: make([]dto.QuestionResponse, 0, len(questions)),
		Meta:      pageMeta(page, total),
	}
	for i := range questions {
		q, err := toQuestionResponse(&questions[i])
		if err != nil {
			return nil, err
		}
		resp.Questions = append(resp.Questions, *q)
	}
	return resp, nil
}

// UpdateQuestion replaces the authored fields. Usage counters are kept.
func (s *questionService) UpdateQuestion(ctx context.Context, id uint, req dto.QuestionUpsertRequest) (*dto.QuestionResponse, error) {
	if err := validateQuestion(&req); err != nil {
		return nil, err
	}
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	applyQuestionRequest(question, &req)
	if err := s.repo.Update(ctx, question); err != nil {
		log.Error().Err(err).Uint("questionID", id).Msg("Failed to update question")
		return nil, fmt.Errorf("error updating question: %w", err)
	}
	if err := s.keyCache.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Uint("questionID", id).Msg("Failed to invalidate cached answer key")
	}
	return toQuestionResponse(question)
}

func (s *questionService) DeleteQuestion(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("question %d: %w", id, ErrNotFound)
		}
		log.Error().Err(err).Uint("questionID", id).Msg("Failed to delete question")
		return err
	}
	if err := s.keyCache.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Uint("questionID", id).Msg("Failed to invalidate cached answer key")
	}
	return nil
}

func pageMeta(p repository.Page, total int64) dto.PageMeta {
	n := p.Normalized()
	return dto.PageMeta{Page: n.Page, Limit: n.Limit, Total: total}
}
