package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/eps-topik/config"
	"github.com/lshigami/eps-topik/internal/dto"
	"github.com/lshigami/eps-topik/internal/model"
	"github.com/lshigami/eps-topik/internal/repository"
	"github.com/rs/zerolog/log"
)

type ExamService interface {
	CreateExam(ctx context.Context, req dto.ExamUpsertRequest) (*dto.ExamSummaryDTO, error)
	UpdateExam(ctx context.Context, id uint, req dto.ExamUpsertRequest) (*dto.ExamSummaryDTO, error)
	// DeleteExam also removes every attempt of the exam.
	DeleteExam(ctx context.Context, id uint) error
	ListExams(ctx context.Context, query dto.ListExamsQuery, activeOnly bool) (*dto.ExamListResponse, error)
	// GetExamForUser returns an active exam with its questions in slot
	// order and without answer keys.
	GetExamForUser(ctx context.Context, id uint) (*dto.ExamDetailResponse, error)
}

type examService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	cfg          *config.Config
}

func NewExamService(examRepo repository.ExamRepository, questionRepo repository.QuestionRepository, cfg *config.Config) ExamService {
	return &examService{examRepo: examRepo, questionRepo: questionRepo, cfg: cfg}
}

// validateExam checks the question lists against the question store and
// the exam type, and fills in defaults.
func (s *examService) validateExam(ctx context.Context, req *dto.ExamUpsertRequest) error {
	switch model.ExamType(req.ExamType) {
	case model.ExamTypeReadingOnly:
		if len(req.ListeningQuestionIDs) > 0 {
			return invalidInput("a reading-only exam cannot have listening questions")
		}
	case model.ExamTypeListeningOnly:
		if len(req.ReadingQuestionIDs) > 0 {
			return invalidInput("a listening-only exam cannot have reading questions")
		}
	case model.ExamTypeFull, model.ExamTypePractice:
	default:
		return invalidInput("unknown exam type %q", req.ExamType)
	}
	if len(req.ReadingQuestionIDs)+len(req.ListeningQuestionIDs) == 0 {
		return invalidInput("an exam needs at least one question")
	}

	want := make(map[uint]model.QuestionType)
	for _, id := range req.ReadingQuestionIDs {
		if _, dup := want[id]; dup {
			return invalidInput("question %d is listed more than once", id)
		}
		want[id] = model.QuestionTypeReading
	}
	for _, id := range req.ListeningQuestionIDs {
		if _, dup := want[id]; dup {
			return invalidInput("question %d is listed more than once", id)
		}
		want[id] = model.QuestionTypeListening
	}

	ids := make([]uint, 0, len(want))
	for id := range want {
		ids = append(ids, id)
	}
	questions, err := s.questionRepo.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("error loading exam questions: %w", err)
	}
	found := make(map[uint]model.QuestionType, len(questions))
	for _, q := range questions {
		found[q.ID] = q.Type
	}
	for id, typ := range want {
		got, ok := found[id]
		if !ok {
			return invalidInput("question %d does not exist", id)
		}
		if got != typ {
			return invalidInput("question %d is a %s question but is listed as %s", id, got, typ)
		}
	}

	if req.Duration.Total == 0 {
		req.Duration.Total = req.Duration.Reading + req.Duration.Listening
	}
	if req.Duration.Total <= 0 {
		return invalidInput("exam duration must be positive")
	}
	return nil
}

func (s *examService) applyExamRequest(e *model.Exam, req *dto.ExamUpsertRequest) {
	e.Title = req.Title
	e.Description = req.Description
	e.ExamType = model.ExamType(req.ExamType)
	e.ReadingQuestionIDs = append([]uint{}, req.ReadingQuestionIDs...)
	e.ListeningQuestionIDs = append([]uint{}, req.ListeningQuestionIDs...)
	e.Duration = model.ExamDuration{
		Reading:   req.Duration.Reading,
		Listening: req.Duration.Listening,
		Total:     req.Duration.Total,
	}
	// 0 is a valid threshold; an omitted pass_score keeps the stored value
	// and new exams start from the configured default.
	switch {
	case req.PassScore != nil:
		e.PassScore = *req.PassScore
	case e.ID == 0:
		e.PassScore = s.cfg.Exam.DefaultPassScore
	}
	if req.IsActive != nil {
		e.IsActive = *req.IsActive
	} else if e.ID == 0 {
		e.IsActive = true
	}
}

func toExamSummary(e *model.Exam) (*dto.ExamSummaryDTO, error) {
	var resp dto.ExamSummaryDTO
	if err := copier.Copy(&resp, e); err != nil {
		return nil, fmt.Errorf("error preparing exam response: %w", err)
	}
	resp.ExamType = string(e.ExamType)
	resp.PassScore = e.PassScore
	resp.ReadingCount = len(e.ReadingQuestionIDs)
	resp.ListeningCount = len(e.ListeningQuestionIDs)
	resp.Duration = dto.DurationDTO{Reading: e.Duration.Reading, Listening: e.Duration.Listening, Total: e.Duration.Total}
	resp.Stats = dto.ExamStatsDTO{
		TotalAttempts:     e.Stats.TotalAttempts,
		CompletedAttempts: e.Stats.CompletedAttempts,
		AverageScore:      e.Stats.AverageScore,
		PassRate:          e.Stats.PassRate,
	}
	return &resp, nil
}

func (s *examService) CreateExam(ctx context.Context, req dto.ExamUpsertRequest) (*dto.ExamSummaryDTO, error) {
	if err := s.validateExam(ctx, &req); err != nil {
		return nil, err
	}
	var exam model.Exam
	s.applyExamRequest(&exam, &req)
	if err := s.examRepo.Create(ctx, &exam); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalidInput("an exam titled %q already exists", exam.Title)
		}
		log.Error().Err(err).Str("title", exam.Title).Msg("Failed to create exam")
		return nil, fmt.Errorf("error creating exam: %w", err)
	}
	log.Info().Uint("examID", exam.ID).Int("questions", len(exam.QuestionIDs())).Msg("Exam created")
	return toExamSummary(&exam)
}

// UpdateExam only affects attempts started afterwards; existing attempts
// keep the slots they were created with.
func (s *examService) UpdateExam(ctx context.Context, id uint, req dto.ExamUpsertRequest) (*dto.ExamSummaryDTO, error) {
	if err := s.validateExam(ctx, &req); err != nil {
		return nil, err
	}
	exam, err := s.examRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("exam %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	s.applyExamRequest(exam, &req)
	if err := s.examRepo.Update(ctx, exam); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("exam %d: %w", id, ErrNotFound)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalidInput("an exam titled %q already exists", exam.Title)
		}
		log.Error().Err(err).Uint("examID", id).Msg("Failed to update exam")
		return nil, fmt.Errorf("error updating exam: %w", err)
	}
	return toExamSummary(exam)
}

func (s *examService) DeleteExam(ctx context.Context, id uint) error {
	if err := s.examRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("exam %d: %w", id, ErrNotFound)
		}
		log.Error().Err(err).Uint("examID", id).Msg("Failed to delete exam")
		return err
	}
	log.Info().Uint("examID", id).Msg("Exam deleted with its attempts")
	return nil
}

func (s *examService) ListExams(ctx context.Context, query dto.ListExamsQuery, activeOnly bool) (*dto.ExamListResponse, error) {
	page := repository.Page{Page: query.Page, Limit: query.Limit}
	exams, total, err := s.examRepo.List(ctx, repository.ExamFilter{
		ActiveOnly: activeOnly,
		ExamType:   model.ExamType(query.ExamType),
		Page:       page,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to list exams")
		return nil, fmt.Errorf("error fetching exams: %w", err)
	}

	resp := &dto.ExamListResponse{
		Exams: make([]dto.ExamSummaryDTO, 0, len(exams)),
		Meta:  pageMeta(page, total),
	}
	for i := range exams {
		summary, err := toExamSummary(&exams[i])
		if err != nil {
			return nil, err
		}
		resp.Exams = append(resp.Exams, *summary)
	}
	return resp, nil
}

func (s *examService) GetExamForUser(ctx context.Context, id uint) (*dto.ExamDetailResponse, error) {
	exam, err := s.examRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("exam %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if !exam.IsActive {
		return nil, fmt.Errorf("exam %d: %w", id, ErrNotFound)
	}

	questions, err := s.questionRepo.FindByIDs(ctx, exam.QuestionIDs())
	if err != nil {
		log.Error().Err(err).Uint("examID", id).Msg("Failed to load exam questions")
		return nil, fmt.Errorf("error fetching exam questions: %w", err)
	}
	byID := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	summary, err := toExamSummary(exam)
	if err != nil {
		return nil, err
	}
	resp := &dto.ExamDetailResponse{
		ExamSummaryDTO:     *summary,
		ReadingQuestions:   []dto.ExamQuestionDTO{},
		ListeningQuestions: []dto.ExamQuestionDTO{},
	}
	number := 0
	collect := func(ids []uint) []dto.ExamQuestionDTO {
		out := make([]dto.ExamQuestionDTO, 0, len(ids))
		for _, qid := range ids {
			number++
			q, ok := byID[qid]
			if !ok {
				log.Warn().Uint("examID", id).Uint("questionID", qid).Msg("Exam references a missing question")
				continue
			}
			out = append(out, dto.ExamQuestionDTO{
				ID:         q.ID,
				Number:     number,
				Type:       string(q.Type),
				Text:       q.Text,
				KoreanText: q.KoreanText,
				ImageURL:   q.ImageURL,
				AudioURL:   q.AudioURL,
				Options:    toOptionDTOs(q.Options),
				Topic:      q.Topic,
			})
		}
		return out
	}
	resp.ReadingQuestions = collect(exam.ReadingQuestionIDs)
	resp.ListeningQuestions = collect(exam.ListeningQuestionIDs)
	return resp, nil
}
