package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lshigami/eps-topik/config"
	"github.com/lshigami/eps-topik/internal/cache"
	"github.com/lshigami/eps-topik/internal/dto"
	"github.com/lshigami/eps-topik/internal/model"
)

func validQuestion(typ string) dto.QuestionUpsertRequest {
	return dto.QuestionUpsertRequest{
		Type: typ,
		Text: "다음 그림을 보고 맞는 단어를 고르십시오.",
		Options: []dto.OptionDTO{
			{Label: "1", Text: "가방"}, {Label: "2", Text: "모자"},
			{Label: "3", Text: "시계"}, {Label: "4", Text: "우산"},
		},
		CorrectAnswer: "3",
		Topic:         "vocabulary",
	}
}

func TestQuestionValidation(t *testing.T) {
	svc := NewQuestionService(memQuestionRepo{newMemStore()}, cache.NewAnswerKeyCache(nil, &config.Config{}))
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*dto.QuestionUpsertRequest)
	}{
		{"unknown type", func(r *dto.QuestionUpsertRequest) { r.Type = "writing" }},
		{"one option", func(r *dto.QuestionUpsertRequest) { r.Options = r.Options[:1] }},
		{"duplicate label", func(r *dto.QuestionUpsertRequest) { r.Options[1].Label = "1" }},
		{"empty label", func(r *dto.QuestionUpsertRequest) { r.Options[0].Label = " " }},
		{"key not an option", func(r *dto.QuestionUpsertRequest) { r.CorrectAnswer = "5" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validQuestion("reading")
			tt.mutate(&req)
			if _, err := svc.CreateQuestion(ctx, req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}

	q, err := svc.CreateQuestion(ctx, validQuestion("reading"))
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if q.Difficulty != "medium" || len(q.Options) != 4 {
		t.Errorf("created = %+v", q)
	}
	if _, err := svc.GetQuestion(ctx, q.ID+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetQuestion unknown: err = %v", err)
	}
	if err := svc.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteQuestion(ctx, q.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v", err)
	}
}

func TestExamValidationAndCatalog(t *testing.T) {
	store := newMemStore()
	cfg := &config.Config{Exam: config.Exam{DefaultPassScore: 60}}
	questions := NewQuestionService(memQuestionRepo{store}, cache.NewAnswerKeyCache(nil, cfg))
	exams := NewExamService(memExamRepo{store}, memQuestionRepo{store}, cfg)
	ctx := context.Background()

	r, err := questions.CreateQuestion(ctx, validQuestion("reading"))
	if err != nil {
		t.Fatal(err)
	}
	l, err := questions.CreateQuestion(ctx, validQuestion("listening"))
	if err != nil {
		t.Fatal(err)
	}

	base := func() dto.ExamUpsertRequest {
		return dto.ExamUpsertRequest{
			Title:                "Mock",
			ExamType:             "full",
			ReadingQuestionIDs:   []uint{r.ID},
			ListeningQuestionIDs: []uint{l.ID},
			Duration:             dto.DurationDTO{Reading: 50, Listening: 20},
		}
	}
	bad := []struct {
		name   string
		mutate func(*dto.ExamUpsertRequest)
	}{
		{"reading-only with listening", func(e *dto.ExamUpsertRequest) { e.ExamType = "reading-only" }},
		{"listening-only with reading", func(e *dto.ExamUpsertRequest) { e.ExamType = "listening-only" }},
		{"no questions", func(e *dto.ExamUpsertRequest) { e.ReadingQuestionIDs, e.ListeningQuestionIDs = nil, nil }},
		{"duplicate id", func(e *dto.ExamUpsertRequest) { e.ListeningQuestionIDs = []uint{r.ID} }},
		{"missing question", func(e *dto.ExamUpsertRequest) { e.ReadingQuestionIDs = []uint{999} }},
		{"type mismatch", func(e *dto.ExamUpsertRequest) {
			e.ReadingQuestionIDs, e.ListeningQuestionIDs = []uint{l.ID}, []uint{r.ID}
		}},
		{"zero duration", func(e *dto.ExamUpsertRequest) { e.Duration = dto.DurationDTO{} }},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(&req)
			if _, err := exams.CreateExam(ctx, req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}

	created, err := exams.CreateExam(ctx, base())
	if err != nil {
		t.Fatalf("CreateExam: %v", err)
	}
	if created.Duration.Total != 70 || created.PassScore != 60 || !created.IsActive {
		t.Errorf("created = %+v", created)
	}
	if _, err := exams.CreateExam(ctx, base()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("duplicate title: err = %v", err)
	}

	detail, err := exams.GetExamForUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExamForUser: %v", err)
	}
	if len(detail.ReadingQuestions) != 1 || len(detail.ListeningQuestions) != 1 || detail.ListeningQuestions[0].Number != 2 {
		t.Errorf("detail = %+v", detail)
	}

	inactive := base()
	inactive.IsActive = new(bool)
	if _, err := exams.UpdateExam(ctx, created.ID, inactive); err != nil {
		t.Fatalf("UpdateExam: %v", err)
	}
	if _, err := exams.GetExamForUser(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("inactive exam visible: err = %v", err)
	}
	list, err := exams.ListExams(ctx, dto.ListExamsQuery{}, true)
	if err != nil || len(list.Exams) != 0 {
		t.Errorf("active list = %+v, %v", list, err)
	}
	if err := exams.DeleteExam(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if err := exams.DeleteExam(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v", err)
	}
}

func TestExamPassScore(t *testing.T) {
	store := newMemStore()
	cfg := &config.Config{Exam: config.Exam{DefaultPassScore: 60}}
	questions := NewQuestionService(memQuestionRepo{store}, cache.NewAnswerKeyCache(nil, cfg))
	exams := NewExamService(memExamRepo{store}, memQuestionRepo{store}, cfg)
	ctx := context.Background()

	q, err := questions.CreateQuestion(ctx, validQuestion("reading"))
	if err != nil {
		t.Fatal(err)
	}
	req := func(title string, pass *int) dto.ExamUpsertRequest {
		return dto.ExamUpsertRequest{
			Title:              title,
			ExamType:           "reading-only",
			ReadingQuestionIDs: []uint{q.ID},
			Duration:           dto.DurationDTO{Reading: 50},
			PassScore:          pass,
		}
	}

	zero, err := exams.CreateExam(ctx, req("Zero", intp(0)))
	if err != nil {
		t.Fatalf("CreateExam: %v", err)
	}
	if zero.PassScore != 0 || store.exams[zero.ID].PassScore != 0 {
		t.Errorf("explicit 0 stored as %d", store.exams[zero.ID].PassScore)
	}

	defaulted, err := exams.CreateExam(ctx, req("Default", nil))
	if err != nil {
		t.Fatalf("CreateExam: %v", err)
	}
	if defaulted.PassScore != 60 {
		t.Errorf("omitted pass_score = %d, want 60", defaulted.PassScore)
	}

	// An update that omits pass_score keeps the stored threshold.
	updated, err := exams.UpdateExam(ctx, zero.ID, req("Zero", nil))
	if err != nil {
		t.Fatalf("UpdateExam: %v", err)
	}
	if updated.PassScore != 0 {
		t.Errorf("update reset pass score to %d", updated.PassScore)
	}
	if updated, err = exams.UpdateExam(ctx, zero.ID, req("Zero", intp(80))); err != nil || updated.PassScore != 80 {
		t.Errorf("update to 80: %+v, %v", updated, err)
	}
}

// answeringQuestionRepo records a submit landing between the read and the
// write of an admin edit.
type answeringQuestionRepo struct {
	memQuestionRepo
}

func (r answeringQuestionRepo) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	q, err := r.memQuestionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.IncrementUsage(ctx, []uint{id}, []uint{id}); err != nil {
		return nil, err
	}
	return q, nil
}

func TestUpdateQuestionKeepsUsageCounters(t *testing.T) {
	store := newMemStore()
	svc := NewQuestionService(answeringQuestionRepo{memQuestionRepo{store}}, cache.NewAnswerKeyCache(nil, &config.Config{}))
	ctx := context.Background()

	q, err := svc.CreateQuestion(ctx, validQuestion("reading"))
	if err != nil {
		t.Fatal(err)
	}
	store.questions[q.ID].TimesAnswered, store.questions[q.ID].TimesCorrect = 10, 4

	edit := validQuestion("reading")
	edit.CorrectAnswer = "2"
	got, err := svc.UpdateQuestion(ctx, q.ID, edit)
	if err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	if got.CorrectAnswer != "2" {
		t.Errorf("CorrectAnswer = %q", got.CorrectAnswer)
	}
	stored := store.questions[q.ID]
	if stored.CorrectAnswer != "2" || stored.TimesAnswered != 11 || stored.TimesCorrect != 5 {
		t.Errorf("stored = key %q answered %d correct %d, want key 2 answered 11 correct 5",
			stored.CorrectAnswer, stored.TimesAnswered, stored.TimesCorrect)
	}
}

func TestUserStatsDefaultsToZero(t *testing.T) {
	svc := NewUserStatsService(memStatsRepo{newMemStore()})
	got, err := svc.GetStats(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != 3 || got.TotalExamsTaken != 0 {
		t.Fatalf("stats = %+v", got)
	}
}
