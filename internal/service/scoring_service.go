package service

import (
	"math"

	"github.com/lshigami/eps-topik/internal/model"
)

const defaultTopic = "general"

// ScoreResult is everything a submit writes back besides the slots, which
// ScoreAttempt updates in place.
type ScoreResult struct {
	Score            model.Score
	Passed           bool
	TopicPerformance []model.TopicScore
	// AnsweredIDs and CorrectIDs feed the per-question usage counters.
	AnsweredIDs []uint
	CorrectIDs  []uint
}

// Percentage is round(100*correct/total), or 0 for an empty bucket.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// ScoreAttempt reconciles slots against keys. Buckets follow the question
// type, not the slot position. A slot whose question has no key is left
// out of every bucket. Topics are listed in order of first appearance.
func ScoreAttempt(slots []model.AnswerSlot, keys map[uint]model.AnswerKey, passScore int) ScoreResult {
	var res ScoreResult
	topicIdx := make(map[string]int)

	for i := range slots {
		slot := &slots[i]
		key, ok := keys[slot.QuestionID]
		if !ok {
			slot.IsCorrect = false
			continue
		}
		slot.IsCorrect = slot.SelectedAnswer != nil && *slot.SelectedAnswer == key.CorrectAnswer

		var bucket *model.SectionScore
		switch key.Type {
		case model.QuestionTypeListening:
			bucket = &res.Score.Listening
		default:
			bucket = &res.Score.Reading
		}
		bucket.Total++
		res.Score.Total.Total++
		if slot.IsCorrect {
			bucket.Correct++
			res.Score.Total.Correct++
			res.CorrectIDs = append(res.CorrectIDs, slot.QuestionID)
		}
		if slot.Answered() {
			res.AnsweredIDs = append(res.AnsweredIDs, slot.QuestionID)
		}

		topic := key.Topic
		if topic == "" {
			topic = defaultTopic
		}
		idx, seen := topicIdx[topic]
		if !seen {
			idx = len(res.TopicPerformance)
			topicIdx[topic] = idx
			res.TopicPerformance = append(res.TopicPerformance, model.TopicScore{Topic: topic})
		}
		res.TopicPerformance[idx].Total++
		if slot.IsCorrect {
			res.TopicPerformance[idx].Correct++
		}
	}

	for _, b := range []*model.SectionScore{&res.Score.Reading, &res.Score.Listening, &res.Score.Total} {
		b.Percentage = Percentage(b.Correct, b.Total)
	}
	for i := range res.TopicPerformance {
		t := &res.TopicPerformance[i]
		t.Percentage = Percentage(t.Correct, t.Total)
	}
	if res.TopicPerformance == nil {
		res.TopicPerformance = []model.TopicScore{}
	}
	res.Passed = res.Score.Total.Percentage >= passScore
	return res
}
