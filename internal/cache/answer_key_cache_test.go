package cache

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lshigami/eps-topik/config"
	"github.com/lshigami/eps-topik/internal/model"
	"github.com/redis/go-redis/v9"
)

func TestAnswerKeyFormat(t *testing.T) {
	if got := answerKey(42); got != "answer_key:42" {
		t.Fatalf("answerKey(42) = %q", got)
	}
}

func TestNoopCacheWithoutClient(t *testing.T) {
	c := NewAnswerKeyCache(nil, &config.Config{})
	if _, ok := c.(noopCache); !ok {
		t.Fatalf("expected noopCache, got %T", c)
	}

	ctx := context.Background()
	if err := c.SetMany(ctx, []model.AnswerKey{{QuestionID: 1, CorrectAnswer: "A"}}); err != nil {
		t.Fatalf("SetMany: %v", err)
	}
	hits, err := c.GetMany(ctx, []uint{1})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("noop cache returned hits: %v", hits)
	}
	if err := c.Invalidate(ctx, 1, 2); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
}

// recordingHook answers every command locally and keeps its arguments, so
// the redis cache can be exercised without a server.
type recordingHook struct {
	mu   sync.Mutex
	cmds [][]interface{}
	mget []interface{}
}

func (h *recordingHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *recordingHook) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		h.record(cmd)
		return nil
	}
}

func (h *recordingHook) ProcessPipelineHook(redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(_ context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			h.record(cmd)
		}
		return nil
	}
}

func (h *recordingHook) record(cmd redis.Cmder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cmds = append(h.cmds, cmd.Args())
	if sc, ok := cmd.(*redis.SliceCmd); ok && cmd.Name() == "mget" {
		sc.SetVal(h.mget)
	}
}

func (h *recordingHook) take() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.cmds))
	for i, args := range h.cmds {
		parts := make([]string, len(args))
		for j, a := range args {
			if b, ok := a.([]byte); ok {
				a = string(b)
			}
			parts[j] = fmt.Sprint(a)
		}
		out[i] = strings.Join(parts, " ")
	}
	h.cmds = nil
	return out
}

func newRecordedCache(t *testing.T) (AnswerKeyCache, *recordingHook) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { client.Close() })
	hook := &recordingHook{}
	client.AddHook(hook)
	cfg := &config.Config{}
	cfg.Redis.KeyTTL = time.Hour
	return NewAnswerKeyCache(client, cfg), hook
}

func TestInvalidateWritesTombstones(t *testing.T) {
	c, hook := newRecordedCache(t)
	if err := c.Invalidate(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	want := []string{"set answer_key:1  ex 60", "set answer_key:2  ex 60"}
	if got := hook.take(); !reflect.DeepEqual(got, want) {
		t.Fatalf("commands = %q, want %q", got, want)
	}
}

func TestSetManyOnlyFillsAbsentKeys(t *testing.T) {
	c, hook := newRecordedCache(t)
	err := c.SetMany(context.Background(), []model.AnswerKey{{QuestionID: 3, CorrectAnswer: "2", Topic: "grammar"}})
	if err != nil {
		t.Fatal(err)
	}
	got := hook.take()
	if len(got) != 1 || !strings.HasPrefix(got[0], "set answer_key:3 ") || !strings.HasSuffix(got[0], " ex 3600 nx") {
		t.Fatalf("commands = %q, want a conditional set with the key ttl", got)
	}
}

func TestGetManySkipsTombstones(t *testing.T) {
	c, hook := newRecordedCache(t)
	hook.mget = []interface{}{
		"",
		`{"question_id":2,"correct_answer":"4","topic":"vocabulary"}`,
		nil,
		"not json",
	}
	hits, err := c.GetMany(context.Background(), []uint{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[2].CorrectAnswer != "4" {
		t.Fatalf("hits = %+v, want only question 2", hits)
	}
}
