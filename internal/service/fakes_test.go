package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lshigami/eps-topik/internal/event"
	"github.com/lshigami/eps-topik/internal/model"
	"github.com/lshigami/eps-topik/internal/repository"
)

// memStore backs all in-memory repositories of one test.
type memStore struct {
	mu        sync.Mutex
	nextID    uint
	questions map[uint]*model.Question
	exams     map[uint]*model.Exam
	attempts  map[uint]*model.Attempt
	stats     map[uint]*model.UserStats
	subs      map[uint]*model.UserSubscription // by user id
	plans     map[uint]*model.Plan
}

func newMemStore() *memStore {
	return &memStore{
		questions: map[uint]*model.Question{},
		exams:     map[uint]*model.Exam{},
		attempts:  map[uint]*model.Attempt{},
		stats:     map[uint]*model.UserStats{},
		subs:      map[uint]*model.UserSubscription{},
		plans:     map[uint]*model.Plan{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func cloneAttempt(a *model.Attempt) *model.Attempt {
	c := *a
	c.Answers = append([]model.AnswerSlot(nil), a.Answers...)
	c.MarkedQuestions = append([]uint{}, a.MarkedQuestions...)
	c.TopicPerformance = append([]model.TopicScore(nil), a.TopicPerformance...)
	return &c
}

type noTx struct{}

func (noTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// snapshotTx restores the store when fn fails, so tests observe the same
// all-or-nothing outcome a database transaction gives.
type snapshotTx struct{ s *memStore }

func (t snapshotTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	restore := t.s.snapshot()
	if err := fn(ctx); err != nil {
		restore()
		return err
	}
	return nil
}

func (s *memStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	nextID := s.nextID
	questions := make(map[uint]*model.Question, len(s.questions))
	for id, q := range s.questions {
		c := *q
		questions[id] = &c
	}
	exams := make(map[uint]*model.Exam, len(s.exams))
	for id, e := range s.exams {
		c := *e
		exams[id] = &c
	}
	attempts := make(map[uint]*model.Attempt, len(s.attempts))
	for id, a := range s.attempts {
		attempts[id] = cloneAttempt(a)
	}
	stats := make(map[uint]*model.UserStats, len(s.stats))
	for id, st := range s.stats {
		c := *st
		stats[id] = &c
	}
	subs := make(map[uint]*model.UserSubscription, len(s.subs))
	for id, sub := range s.subs {
		c := *sub
		subs[id] = &c
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.nextID = nextID
		s.questions, s.exams, s.attempts, s.stats, s.subs = questions, exams, attempts, stats, subs
	}
}

// question repository

type memQuestionRepo struct{ s *memStore }

func (r memQuestionRepo) Create(_ context.Context, q *model.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q.ID = r.s.id()
	c := *q
	r.s.questions[q.ID] = &c
	return nil
}

func (r memQuestionRepo) FindByID(_ context.Context, id uint) (*model.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *q
	return &c, nil
}

func (r memQuestionRepo) FindByIDs(_ context.Context, ids []uint) ([]model.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Question
	for _, id := range ids {
		if q, ok := r.s.questions[id]; ok {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (r memQuestionRepo) List(_ context.Context, f repository.QuestionFilter) ([]model.Question, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Question
	for _, q := range r.s.questions {
		if f.Type != "" && q.Type != f.Type {
			continue
		}
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r memQuestionRepo) Update(_ context.Context, q *model.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.questions[q.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c := *q
	c.TimesAnswered, c.TimesCorrect = old.TimesAnswered, old.TimesCorrect
	r.s.questions[q.ID] = &c
	return nil
}

func (r memQuestionRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.questions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.questions, id)
	return nil
}

func (r memQuestionRepo) IncrementUsage(_ context.Context, answered, correct []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range answered {
		if q, ok := r.s.questions[id]; ok {
			q.TimesAnswered++
		}
	}
	for _, id := range correct {
		if q, ok := r.s.questions[id]; ok {
			q.TimesCorrect++
		}
	}
	return nil
}

// exam repository

type memExamRepo struct{ s *memStore }

func (r memExamRepo) Create(_ context.Context, e *model.Exam) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.exams {
		if other.Title == e.Title {
			return repository.ErrDuplicate
		}
	}
	e.ID = r.s.id()
	c := *e
	r.s.exams[e.ID] = &c
	return nil
}

func (r memExamRepo) FindByID(_ context.Context, id uint) (*model.Exam, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (r memExamRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Exam, error) {
	return r.FindByID(ctx, id)
}

func (r memExamRepo) List(_ context.Context, f repository.ExamFilter) ([]model.Exam, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Exam
	for _, e := range r.s.exams {
		if f.ActiveOnly && !e.IsActive {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r memExamRepo) Update(_ context.Context, e *model.Exam) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.exams[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c := *e
	c.Stats = old.Stats
	r.s.exams[e.ID] = &c
	return nil
}

func (r memExamRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.exams[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.exams, id)
	for aid, a := range r.s.attempts {
		if a.ExamID == id {
			delete(r.s.attempts, aid)
		}
	}
	return nil
}

func (r memExamRepo) IncrementTotalAttempts(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.exams[id]; ok {
		e.Stats.TotalAttempts++
	}
	return nil
}

func (r memExamRepo) UpdateStats(_ context.Context, id uint, stats model.ExamStats) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.exams[id]
	if !ok {
		return repository.ErrNotFound
	}
	stats.TotalAttempts = e.Stats.TotalAttempts
	e.Stats = stats
	return nil
}

// attempt and slot repositories

type memAttemptRepo struct{ s *memStore }

func (r memAttemptRepo) Create(_ context.Context, a *model.Attempt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.attempts {
		if other.UserID == a.UserID && other.ExamID == a.ExamID && other.Status == model.AttemptStatusInProgress {
			return repository.ErrDuplicate
		}
	}
	a.ID = r.s.id()
	for i := range a.Answers {
		a.Answers[i].ID = r.s.id()
		a.Answers[i].AttemptID = a.ID
	}
	r.s.attempts[a.ID] = cloneAttempt(a)
	return nil
}

func (r memAttemptRepo) FindInProgress(_ context.Context, userID, examID uint) (*model.Attempt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.attempts {
		if a.UserID == userID && a.ExamID == examID && a.Status == model.AttemptStatusInProgress {
			return cloneAttempt(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memAttemptRepo) FindForUser(_ context.Context, id, userID uint) (*model.Attempt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attempts[id]
	if !ok || a.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return cloneAttempt(a), nil
}

func (r memAttemptRepo) FindInProgressForUser(ctx context.Context, id, userID uint, _ bool) (*model.Attempt, error) {
	a, err := r.FindForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if a.Status != model.AttemptStatusInProgress {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (r memAttemptRepo) guarded(id, userID uint, fn func(a *model.Attempt)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attempts[id]
	if !ok || a.UserID != userID || a.Status != model.AttemptStatusInProgress {
		return repository.ErrNotFound
	}
	fn(a)
	return nil
}

func (r memAttemptRepo) SaveProgress(_ context.Context, in *model.Attempt) error {
	return r.guarded(in.ID, in.UserID, func(a *model.Attempt) {
		a.CurrentSection = in.CurrentSection
		a.CurrentQuestionIndex = in.CurrentQuestionIndex
		a.TimeRemaining = in.TimeRemaining
	})
}

func (r memAttemptRepo) UpdateMarked(_ context.Context, in *model.Attempt) error {
	return r.guarded(in.ID, in.UserID, func(a *model.Attempt) {
		a.MarkedQuestions = append([]uint{}, in.MarkedQuestions...)
	})
}

func (r memAttemptRepo) Complete(_ context.Context, in *model.Attempt) error {
	return r.guarded(in.ID, in.UserID, func(a *model.Attempt) {
		a.Status = in.Status
		a.EndTime = in.EndTime
		a.TimeSpent = in.TimeSpent
		a.TimeRemaining = in.TimeRemaining
		a.Score = in.Score
		a.Passed = in.Passed
		a.TopicPerformance = append([]model.TopicScore(nil), in.TopicPerformance...)
	})
}

func (r memAttemptRepo) Abandon(_ context.Context, id, userID uint, end time.Time) error {
	return r.guarded(id, userID, func(a *model.Attempt) {
		a.Status = model.AttemptStatusAbandoned
		a.EndTime = &end
	})
}

func (r memAttemptRepo) List(_ context.Context, f repository.AttemptFilter) ([]model.Attempt, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Attempt
	for _, a := range r.s.attempts {
		if a.UserID != f.UserID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		c := cloneAttempt(a)
		if e, ok := r.s.exams[a.ExamID]; ok {
			c.Exam = *e
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

type memSlotRepo struct{ s *memStore }

func (r memSlotRepo) each(slots []model.AnswerSlot, fn func(dst *model.AnswerSlot, src *model.AnswerSlot)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range slots {
		a, ok := r.s.attempts[slots[i].AttemptID]
		if !ok {
			continue
		}
		if dst := a.Slot(slots[i].QuestionID); dst != nil {
			fn(dst, &slots[i])
		}
	}
	return nil
}

func (r memSlotRepo) UpdateAnswers(_ context.Context, slots []model.AnswerSlot) error {
	return r.each(slots, func(dst, src *model.AnswerSlot) {
		dst.SelectedAnswer = src.SelectedAnswer
		dst.TimeTaken = src.TimeTaken
		dst.AudioReplays = src.AudioReplays
	})
}

func (r memSlotRepo) UpdateCorrectness(_ context.Context, slots []model.AnswerSlot) error {
	return r.each(slots, func(dst, src *model.AnswerSlot) {
		dst.IsCorrect = src.IsCorrect
	})
}

// user stats repository

type memStatsRepo struct{ s *memStore }

func (r memStatsRepo) FindByUserID(_ context.Context, userID uint) (*model.UserStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stats[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *st
	return &c, nil
}

func (r memStatsRepo) FindByUserIDForUpdate(ctx context.Context, userID uint) (*model.UserStats, error) {
	return r.FindByUserID(ctx, userID)
}

func (r memStatsRepo) Ensure(_ context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stats[userID]; !ok {
		r.s.stats[userID] = &model.UserStats{UserID: userID}
	}
	return nil
}

func (r memStatsRepo) Save(_ context.Context, st *model.UserStats) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *st
	r.s.stats[st.UserID] = &c
	return nil
}

// plan and subscription repositories

type memPlanRepo struct{ s *memStore }

func (r memPlanRepo) Create(_ context.Context, p *model.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.plans {
		if other.Name == p.Name {
			return repository.ErrDuplicate
		}
	}
	p.ID = r.s.id()
	c := *p
	r.s.plans[p.ID] = &c
	return nil
}

func (r memPlanRepo) FindByID(_ context.Context, id uint) (*model.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r memPlanRepo) List(_ context.Context, activeOnly bool) ([]model.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Plan
	for _, p := range r.s.plans {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

type memSubRepo struct{ s *memStore }

func (r memSubRepo) FindByUserID(_ context.Context, userID uint) (*model.UserSubscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.subs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *sub
	return &c, nil
}

func (r memSubRepo) FindByUserIDForUpdate(ctx context.Context, userID uint) (*model.UserSubscription, error) {
	return r.FindByUserID(ctx, userID)
}

func (r memSubRepo) CreateIfAbsent(ctx context.Context, sub *model.UserSubscription) (*model.UserSubscription, error) {
	r.s.mu.Lock()
	if _, ok := r.s.subs[sub.UserID]; !ok {
		sub.ID = r.s.id()
		c := *sub
		r.s.subs[sub.UserID] = &c
	}
	r.s.mu.Unlock()
	return r.FindByUserID(ctx, sub.UserID)
}

func (r memSubRepo) Save(_ context.Context, sub *model.UserSubscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *sub
	c.Plan = nil
	r.s.subs[sub.UserID] = &c
	return nil
}

func (r memSubRepo) IncrementExamsUsed(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.subs {
		if sub.ID == id {
			sub.ExamsUsed++
		}
	}
	return nil
}

// collaborators

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.AttemptEvent
}

func (p *recordingPublisher) PublishAttemptEvent(_ context.Context, ev *event.AttemptEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.EventType
	}
	return out
}

type stubCoach struct{ advice string }

func (c stubCoach) StudyAdvice(context.Context, *model.Attempt, string) (string, error) {
	return c.advice, nil
}
