package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lshigami/eps-topik/config"
	"github.com/lshigami/eps-topik/internal/cache"
	"github.com/lshigami/eps-topik/internal/dto"
	"github.com/lshigami/eps-topik/internal/event"
	"github.com/lshigami/eps-topik/internal/model"
	"github.com/lshigami/eps-topik/internal/repository"
	"github.com/rs/zerolog/log"
)

// AttemptService drives an attempt from start to a terminal state. Every
// lookup is scoped by (attemptID, userID), and every mutation additionally
// requires status in-progress.
type AttemptService interface {
	Start(ctx context.Context, userID, examID uint) (*dto.AttemptResponse, error)
	SaveAnswer(ctx context.Context, userID, attemptID uint, req dto.SaveAnswerRequest) (*dto.AnswerAckResponse, error)
	// SaveAnswers ignores question ids the attempt has no slot for, unless
	// strict is set, in which case nothing is saved and an
	// *UnknownQuestionsError lists them.
	SaveAnswers(ctx context.Context, userID, attemptID uint, req dto.SaveAnswersRequest, strict bool) (*dto.AnswerAckResponse, error)
	Mark(ctx context.Context, userID, attemptID uint, req dto.MarkQuestionRequest) (*dto.MarkedQuestionsResponse, error)
	StartListeningPhase(ctx context.Context, userID, attemptID uint, req dto.StartListeningRequest) (*dto.AttemptResponse, error)
	Submit(ctx context.Context, userID, attemptID uint, req dto.SubmitAttemptRequest) (*dto.AttemptResponse, error)
	Abandon(ctx context.Context, userID, attemptID uint) (*dto.AttemptResponse, error)
	Get(ctx context.Context, userID, attemptID uint) (*dto.AttemptResponse, error)
	List(ctx context.Context, userID uint, query dto.ListAttemptsQuery) (*dto.AttemptListResponse, error)
	Review(ctx context.Context, userID, attemptID uint) (*dto.ReviewResponse, error)
}

type attemptService struct {
	tx           repository.Transactor
	examRepo     repository.ExamRepository
	attemptRepo  repository.AttemptRepository
	slotRepo     repository.AnswerSlotRepository
	questionRepo repository.QuestionRepository
	statsRepo    repository.UserStatsRepository
	entitlement  EntitlementService
	keyCache     cache.AnswerKeyCache
	publisher    event.Publisher
	coach        StudyCoachService
	streakLoc    *time.Location
	now          func() time.Time
}

func NewAttemptService(
	tx repository.Transactor,
	examRepo repository.ExamRepository,
	attemptRepo repository.AttemptRepository,
	slotRepo repository.AnswerSlotRepository,
	questionRepo repository.QuestionRepository,
	statsRepo repository.UserStatsRepository,
	entitlement EntitlementService,
	keyCache cache.AnswerKeyCache,
	publisher event.Publisher,
	coach StudyCoachService,
	cfg *config.Config,
) AttemptService {
	return &attemptService{
		tx:           tx,
		examRepo:     examRepo,
		attemptRepo:  attemptRepo,
		slotRepo:     slotRepo,
		questionRepo: questionRepo,
		statsRepo:    statsRepo,
		entitlement:  entitlement,
		keyCache:     keyCache,
		publisher:    publisher,
		coach:        coach,
		streakLoc:    cfg.Exam.Location(),
		now:          time.Now,
	}
}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}

func (s *attemptService) Start(ctx context.Context, userID, examID uint) (*dto.AttemptResponse, error) {
	exam, err := s.examRepo.FindByID(ctx, examID)
	if err != nil {
		return nil, notFound(err, "exam", examID)
	}

	// An in-progress attempt is resumed even if the exam was deactivated
	// after it started.
	existing, err := s.attemptRepo.FindInProgress(ctx, userID, examID)
	if err == nil {
		log.Info().Uint("attemptID", existing.ID).Uint("userID", userID).Msg("Resuming in-progress attempt")
		return toAttemptResponse(existing), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.Error().Err(err).Uint("userID", userID).Uint("examID", examID).Msg("Start: lookup of in-progress attempt failed")
		return nil, err
	}
	if !exam.IsActive {
		return nil, fmt.Errorf("exam %d: %w", examID, ErrNotFound)
	}

	attempt := model.NewAttempt(userID, exam, s.now())
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.entitlement.CheckExamQuota(ctx, userID); err != nil {
			return err
		}
		if err := s.attemptRepo.Create(ctx, attempt); err != nil {
			return err
		}
		if err := s.examRepo.IncrementTotalAttempts(ctx, examID); err != nil {
			return fmt.Errorf("error incrementing exam attempts: %w", err)
		}
		return s.entitlement.RecordExamUsage(ctx, userID)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// A concurrent start for the same (user, exam) won the insert.
		existing, findErr := s.attemptRepo.FindInProgress(ctx, userID, examID)
		if findErr != nil {
			log.Warn().Err(findErr).Uint("userID", userID).Uint("examID", examID).Msg("Start: concurrent attempt vanished before it could be resumed")
			return nil, notFound(findErr, "in-progress attempt for exam", examID)
		}
		log.Info().Uint("attemptID", existing.ID).Uint("userID", userID).Msg("Resuming attempt created by a concurrent start")
		return toAttemptResponse(existing), nil
	}
	if err != nil {
		var quota *QuotaExceededError
		if errors.As(err, &quota) {
			log.Info().Uint("userID", userID).Int("used", quota.ExamsUsed).Int("limit", quota.ExamsLimit).Msg("Start rejected by exam quota")
		} else {
			log.Error().Err(err).Uint("userID", userID).Uint("examID", examID).Msg("Start: transaction failed")
		}
		return nil, err
	}

	log.Info().Uint("attemptID", attempt.ID).Uint("userID", userID).Uint("examID", examID).Int("slots", len(attempt.Answers)).Msg("Attempt started")
	s.publish(ctx, event.AttemptStarted, attempt)
	return toAttemptResponse(attempt), nil
}

func (s *attemptService) SaveAnswer(ctx context.Context, userID, attemptID uint, req dto.SaveAnswerRequest) (*dto.AnswerAckResponse, error) {
	return s.saveAnswers(ctx, userID, attemptID, []dto.AnswerInput{req.AnswerInput}, progressUpdate{
		questionIndex: req.CurrentQuestionIndex,
		timeRemaining: req.TimeRemaining,
	}, false)
}

func (s *attemptService) SaveAnswers(ctx context.Context, userID, attemptID uint, req dto.SaveAnswersRequest, strict bool) (*dto.AnswerAckResponse, error) {
	progress := progressUpdate{
		questionIndex: req.CurrentQuestionIndex,
		timeRemaining: req.TimeRemaining,
	}
	if req.CurrentSection != nil {
		section := model.Section(*req.CurrentSection)
		if !section.Valid() {
			return nil, invalidInput("unknown section %q", *req.CurrentSection)
		}
		progress.section = &section
	}
	return s.saveAnswers(ctx, userID, attemptID, req.Answers, progress, strict)
}

type progressUpdate struct {
	questionIndex *int
	timeRemaining *int
	section       *model.Section
}

func (p progressUpdate) apply(a *model.Attempt) {
	if p.section != nil {
		a.CurrentSection = *p.section
	}
	if p.questionIndex != nil {
		a.CurrentQuestionIndex = *p.questionIndex
	}
	if p.timeRemaining != nil {
		a.TimeRemaining = *p.timeRemaining
	}
}

func (s *attemptService) saveAnswers(ctx context.Context, userID, attemptID uint, answers []dto.AnswerInput, progress progressUpdate, strict bool) (*dto.AnswerAckResponse, error) {
	ack := &dto.AnswerAckResponse{}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		attempt, err := s.attemptRepo.FindInProgressForUser(ctx, attemptID, userID, true)
		if err != nil {
			return notFound(err, "attempt", attemptID)
		}

		if strict {
			var unknown []uint
			for _, a := range answers {
				if attempt.Slot(a.QuestionID) == nil {
					unknown = append(unknown, a.QuestionID)
				}
			}
			if len(unknown) > 0 {
				return &UnknownQuestionsError{QuestionIDs: unknown}
			}
		}

		changed := make([]model.AnswerSlot, 0, len(answers))
		for _, a := range answers {
			slot := attempt.ApplyAnswer(model.AnswerUpdate{
				QuestionID:     a.QuestionID,
				SelectedAnswer: a.SelectedAnswer,
				TimeTaken:      a.TimeTaken,
				AudioReplays:   a.AudioReplays,
			})
			if slot == nil {
				ack.IgnoredQuestionIDs = append(ack.IgnoredQuestionIDs, a.QuestionID)
				continue
			}
			changed = append(changed, *slot)
		}
		if err := s.slotRepo.UpdateAnswers(ctx, changed); err != nil {
			return fmt.Errorf("error saving answers: %w", err)
		}
		progress.apply(attempt)
		if err := s.attemptRepo.SaveProgress(ctx, attempt); err != nil {
			return notFound(err, "attempt", attemptID)
		}
		ack.Saved = len(changed)
		return nil
	})
	if err != nil {
		var unknown *UnknownQuestionsError
		if !errors.Is(err, ErrNotFound) && !errors.As(err, &unknown) {
			log.Error().Err(err).Uint("attemptID", attemptID).Uint("userID", userID).Msg("SaveAnswers failed")
		}
		return nil, err
	}
	if len(ack.IgnoredQuestionIDs) > 0 {
		log.Debug().Uint("attemptID", attemptID).Interface("ignored", ack.IgnoredQuestionIDs).Msg("Ignored answers for unknown questions")
	}
	ack.SavedAt = s.now()
	return ack, nil
}

func (s *attemptService) Mark(ctx context.Context, userID, attemptID uint, req dto.MarkQuestionRequest) (*dto.MarkedQuestionsResponse, error) {
	var marked []uint
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		attempt, err := s.attemptRepo.FindInProgressForUser(ctx, attemptID, userID, true)
		if err != nil {
			return notFound(err, "attempt", attemptID)
		}
		if attempt.Slot(req.QuestionID) == nil {
			return invalidInput("question %d is not part of attempt %d", req.QuestionID, attemptID)
		}
		attempt.Mark(req.QuestionID, *req.Marked)
		if err := s.attemptRepo.UpdateMarked(ctx, attempt); err != nil {
			return notFound(err, "attempt", attemptID)
		}
		marked = attempt.MarkedQuestions
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidInput) {
			log.Error().Err(err).Uint("attemptID", attemptID).Msg("Mark failed")
		}
		return nil, err
	}
	return &dto.MarkedQuestionsResponse{MarkedQuestions: marked}, nil
}

// StartListeningPhase moves the attempt to the listening section. The
// question index is section-relative and restarts at 0.
func (s *attemptService) StartListeningPhase(ctx context.Context, userID, attemptID uint, req dto.StartListeningRequest) (*dto.AttemptResponse, error) {
	var out *model.Attempt
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		attempt, err := s.attemptRepo.FindInProgressForUser(ctx, attemptID, userID, true)
		if err != nil {
			return notFound(err, "attempt", attemptID)
		}
		listening := model.SectionListening
		zero := 0
		progressUpdate{section: &listening, questionIndex: &zero, timeRemaining: req.TimeRemaining}.apply(attempt)
		if err := s.attemptRepo.SaveProgress(ctx, attempt); err != nil {
			return notFound(err, "attempt", attemptID)
		}
		out = attempt
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Uint("attemptID", attemptID).Msg("StartListeningPhase failed")
		}
		return nil, err
	}
	return toAttemptResponse(out), nil
}

// Submit scores the attempt and folds the result into the exam, user and
// question aggregates, all in one transaction. A second submit finds no
// in-progress attempt and fails with ErrNotFound.
func (s *attemptService) Submit(ctx context.Context, userID, attemptID uint, req dto.SubmitAttemptRequest) (*dto.AttemptResponse, error) {
	var out *model.Attempt
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		attempt, err := s.attemptRepo.FindInProgressForUser(ctx, attemptID, userID, true)
		if err != nil {
			return notFound(err, "attempt", attemptID)
		}
		exam, err := s.examRepo.FindByIDForUpdate(ctx, attempt.ExamID)
		if err != nil {
			return fmt.Errorf("error loading exam %d: %w", attempt.ExamID, err)
		}

		ids := make([]uint, len(attempt.Answers))
		for i := range attempt.Answers {
			ids[i] = attempt.Answers[i].QuestionID
		}
		keys, err := s.answerKeys(ctx, ids)
		if err != nil {
			return err
		}
		result := ScoreAttempt(attempt.Answers, keys, exam.PassScore)

		now := s.now()
		attempt.EndTime = &now
		attempt.Status = model.AttemptStatusCompleted
		if req.TimedOut {
			attempt.Status = model.AttemptStatusTimedOut
			attempt.TimeRemaining = 0
		}
		if req.TimeSpent != nil {
			attempt.TimeSpent = *req.TimeSpent
		} else {
			attempt.TimeSpent = int(now.Sub(attempt.StartTime).Seconds())
			if attempt.TimeSpent < 0 {
				attempt.TimeSpent = 0
			}
		}
		attempt.Score = result.Score
		attempt.Passed = result.Passed
		attempt.TopicPerformance = result.TopicPerformance

		if err := s.attemptRepo.Complete(ctx, attempt); err != nil {
			return notFound(err, "attempt", attemptID)
		}
		if err := s.slotRepo.UpdateCorrectness(ctx, attempt.Answers); err != nil {
			return fmt.Errorf("error saving slot correctness: %w", err)
		}

		exam.RecordCompletion(result.Score.Total.Percentage, result.Passed)
		if err := s.examRepo.UpdateStats(ctx, exam.ID, exam.Stats); err != nil {
			return fmt.Errorf("error updating exam stats: %w", err)
		}

		if err := s.statsRepo.Ensure(ctx, userID); err != nil {
			return fmt.Errorf("error creating user stats: %w", err)
		}
		stats, err := s.statsRepo.FindByUserIDForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("error loading user stats: %w", err)
		}
		stats.RecordCompletion(result.Score.Total.Percentage, result.Passed, attempt.TimeSpent, now, s.streakLoc)
		if err := s.statsRepo.Save(ctx, stats); err != nil {
			return fmt.Errorf("error updating user stats: %w", err)
		}

		if err := s.questionRepo.IncrementUsage(ctx, result.AnsweredIDs, result.CorrectIDs); err != nil {
			return fmt.Errorf("error updating question counters: %w", err)
		}
		out = attempt
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Uint("attemptID", attemptID).Uint("userID", userID).Msg("Submit: transaction failed")
		}
		return nil, err
	}

	log.Info().
		Uint("attemptID", attemptID).
		Uint("userID", userID).
		Str("status", string(out.Status)).
		Int("total", out.Score.Total.Percentage).
		Bool("passed", out.Passed).
		Msg("Attempt submitted")
	s.publish(ctx, event.AttemptSubmitted, out)
	return toAttemptResponse(out), nil
}

// answerKeys reads keys through the cache. Questions that no longer exist
// are absent from the result and get skipped by the scorer.
func (s *attemptService) answerKeys(ctx context.Context, ids []uint) (map[uint]model.AnswerKey, error) {
	keys, err := s.keyCache.GetMany(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("Answer key cache unavailable, reading from database")
		keys = make(map[uint]model.AnswerKey, len(ids))
	}

	var missing []uint
	for _, id := range ids {
		if _, ok := keys[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return keys, nil
	}

	questions, err := s.questionRepo.FindByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("error loading answer keys: %w", err)
	}
	fetched := make([]model.AnswerKey, 0, len(questions))
	for i := range questions {
		k := questions[i].Key()
		keys[k.QuestionID] = k
		fetched = append(fetched, k)
	}
	if len(fetched) < len(missing) {
		log.Warn().Int("missing", len(missing)-len(fetched)).Msg("Attempt references questions that no longer exist")
	}
	if err := s.keyCache.SetMany(ctx, fetched); err != nil {
		log.Warn().Err(err).Msg("Failed to cache answer keys")
	}
	return keys, nil
}

func (s *attemptService) Abandon(ctx context.Context, userID, attemptID uint) (*dto.AttemptResponse, error) {
	if err := s.attemptRepo.Abandon(ctx, attemptID, userID, s.now()); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Uint("attemptID", attemptID).Msg("Abandon failed")
		}
		return nil, notFound(err, "attempt", attemptID)
	}
	attempt, err := s.attemptRepo.FindForUser(ctx, attemptID, userID)
	if err != nil {
		return nil, notFound(err, "attempt", attemptID)
	}
	log.Info().Uint("attemptID", attemptID).Uint("userID", userID).Msg("Attempt abandoned")
	s.publish(ctx, event.AttemptAbandoned, attempt)
	return toAttemptResponse(attempt), nil
}

func (s *attemptService) Get(ctx context.Context, userID, attemptID uint) (*dto.AttemptResponse, error) {
	attempt, err := s.attemptRepo.FindForUser(ctx, attemptID, userID)
	if err != nil {
		return nil, notFound(err, "attempt", attemptID)
	}
	return toAttemptResponse(attempt), nil
}

func (s *attemptService) List(ctx context.Context, userID uint, query dto.ListAttemptsQuery) (*dto.AttemptListResponse, error) {
	page := repository.Page{Page: query.Page, Limit: query.Limit}
	attempts, total, err := s.attemptRepo.List(ctx, repository.AttemptFilter{
		UserID: userID,
		ExamID: query.ExamID,
		Status: model.AttemptStatus(query.Status),
		Page:   page,
	})
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Failed to list attempts")
		return nil, fmt.Errorf("error fetching attempts: %w", err)
	}

	resp := &dto.AttemptListResponse{
		Attempts: make([]dto.AttemptSummaryDTO, 0, len(attempts)),
		Meta:     pageMeta(page, total),
	}
	for i := range attempts {
		a := &attempts[i]
		resp.Attempts = append(resp.Attempts, dto.AttemptSummaryDTO{
			ID:        a.ID,
			ExamID:    a.ExamID,
			ExamTitle: a.Exam.Title,
			Status:    string(a.Status),
			StartTime: a.StartTime,
			EndTime:   a.EndTime,
			Score:     toScoreDTO(a.Score),
			Passed:    a.Passed,
		})
	}
	return resp, nil
}

// Review is only offered for scored attempts and only to plans with review
// access.
func (s *attemptService) Review(ctx context.Context, userID, attemptID uint) (*dto.ReviewResponse, error) {
	attempt, err := s.attemptRepo.FindForUser(ctx, attemptID, userID)
	if err != nil {
		return nil, notFound(err, "attempt", attemptID)
	}
	if !attempt.Status.Scored() {
		return nil, fmt.Errorf("attempt %d is %s: %w", attemptID, attempt.Status, ErrNotFound)
	}
	allowed, err := s.entitlement.CanReview(ctx, userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("Review: entitlement lookup failed")
		return nil, err
	}
	if !allowed {
		return nil, ErrReviewAccessDenied
	}

	ids := make([]uint, len(attempt.Answers))
	for i := range attempt.Answers {
		ids[i] = attempt.Answers[i].QuestionID
	}
	questions, err := s.questionRepo.FindByIDs(ctx, ids)
	if err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Review: failed to load questions")
		return nil, fmt.Errorf("error fetching questions: %w", err)
	}
	byID := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	marked := make(map[uint]bool, len(attempt.MarkedQuestions))
	for _, id := range attempt.MarkedQuestions {
		marked[id] = true
	}

	resp := &dto.ReviewResponse{
		Attempt: *toAttemptResponse(attempt),
		Items:   make([]dto.ReviewItem, 0, len(attempt.Answers)),
	}
	for i := range attempt.Answers {
		slot := &attempt.Answers[i]
		item := dto.ReviewItem{AnswerSlotDTO: toSlotDTO(slot), Marked: marked[slot.QuestionID], Options: []dto.OptionDTO{}}
		if q, ok := byID[slot.QuestionID]; ok {
			item.Type = string(q.Type)
			item.Text = q.Text
			item.KoreanText = q.KoreanText
			item.ImageURL = q.ImageURL
			item.AudioURL = q.AudioURL
			item.Options = toOptionDTOs(q.Options)
			item.CorrectAnswer = q.CorrectAnswer
			item.Topic = q.Topic
		}
		resp.Items = append(resp.Items, item)
	}

	examTitle := ""
	if exam, err := s.examRepo.FindByID(ctx, attempt.ExamID); err == nil {
		examTitle = exam.Title
	}
	advice, err := s.coach.StudyAdvice(ctx, attempt, examTitle)
	if err != nil {
		log.Warn().Err(err).Uint("attemptID", attemptID).Msg("Review served without study advice")
	}
	resp.StudyAdvice = advice
	return resp, nil
}

// publish runs after commit. A failed publish is logged and never undoes
// the state change.
func (s *attemptService) publish(ctx context.Context, eventType string, a *model.Attempt) {
	ev := &event.AttemptEvent{
		EventType:  eventType,
		AttemptID:  a.ID,
		UserID:     a.UserID,
		ExamID:     a.ExamID,
		Status:     string(a.Status),
		OccurredAt: s.now(),
	}
	if eventType == event.AttemptSubmitted {
		pct, passed := a.Score.Total.Percentage, a.Passed
		ev.TotalPercentage = &pct
		ev.Passed = &passed
	}
	if err := s.publisher.PublishAttemptEvent(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", eventType).Uint("attemptID", a.ID).Msg("Failed to publish attempt event")
	}
}

func toSlotDTO(slot *model.AnswerSlot) dto.AnswerSlotDTO {
	return dto.AnswerSlotDTO{
		QuestionID:     slot.QuestionID,
		QuestionNumber: slot.QuestionNumber,
		SelectedAnswer: slot.SelectedAnswer,
		IsCorrect:      slot.IsCorrect,
		TimeTaken:      slot.TimeTaken,
		AudioReplays:   slot.AudioReplays,
	}
}

func toSectionDTO(s model.SectionScore) dto.SectionScoreDTO {
	return dto.SectionScoreDTO{Correct: s.Correct, Total: s.Total, Percentage: s.Percentage}
}

func toScoreDTO(s model.Score) dto.ScoreDTO {
	return dto.ScoreDTO{
		Reading:   toSectionDTO(s.Reading),
		Listening: toSectionDTO(s.Listening),
		Total:     toSectionDTO(s.Total),
	}
}

func toAttemptResponse(a *model.Attempt) *dto.AttemptResponse {
	resp := &dto.AttemptResponse{
		ID:                   a.ID,
		UserID:               a.UserID,
		ExamID:               a.ExamID,
		StartTime:            a.StartTime,
		EndTime:              a.EndTime,
		Status:               string(a.Status),
		CurrentSection:       string(a.CurrentSection),
		CurrentQuestionIndex: a.CurrentQuestionIndex,
		TimeRemaining:        a.TimeRemaining,
		TimeSpent:            a.TimeSpent,
		Answers:              make([]dto.AnswerSlotDTO, len(a.Answers)),
		MarkedQuestions:      a.MarkedQuestions,
		Score:                toScoreDTO(a.Score),
		Passed:               a.Passed,
		TopicPerformance:     make([]dto.TopicScoreDTO, len(a.TopicPerformance)),
	}
	for i := range a.Answers {
		resp.Answers[i] = toSlotDTO(&a.Answers[i])
	}
	for i, t := range a.TopicPerformance {
		resp.TopicPerformance[i] = dto.TopicScoreDTO{Topic: t.Topic, Correct: t.Correct, Total: t.Total, Percentage: t.Percentage}
	}
	if resp.MarkedQuestions == nil {
		resp.MarkedQuestions = []uint{}
	}
	return resp
}
