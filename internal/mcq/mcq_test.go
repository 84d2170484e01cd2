package mcq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadolammi/facultyhire/internal/logger"
	"github.com/muhammadolammi/facultyhire/internal/logger/loggertest"
)

const validSet = "```json\n" + `[
  {"question": "Which keyword declares a constant in C++?", "options": ["A. let", "B. const", "C. final", "D. static"], "answer": "B"},
  {"question": "Size of char in C++?", "options": ["A. 1 byte", "B. 2 bytes", "C. 4 bytes", "D. depends"], "answer": "a"}
]` + "\n```"

type fakeGenerator struct {
	out     string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, time.Hour), mr
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Operating Systems", 51)
	assert.Contains(t, p, "You are an expert educator in Operating Systems.")
	assert.Contains(t, p, "Generate 51 multiple-choice questions (MCQs) strictly on the topic of Operating Systems.")
	assert.Contains(t, p, `"answer": "B"`)
}

func TestParse_Valid(t *testing.T) {
	res := Parse(validSet)
	require.Nil(t, res.Failure)
	require.Len(t, res.Questions, 2)
	assert.Equal(t, "B", res.Questions[0].Answer)
	assert.Equal(t, "A", res.Questions[1].Answer)
	assert.Len(t, res.Questions[0].Options, 4)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "Sure! Here are your questions:"},
		{"object instead of list", `{"question": "q"}`},
		{"three options", `[{"question": "q", "options": ["A", "B", "C"], "answer": "A"}]`},
		{"bad answer letter", `[{"question": "q", "options": ["A", "B", "C", "D"], "answer": "E"}]`},
		{"missing question", `[{"options": ["A", "B", "C", "D"], "answer": "A"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.raw)
			require.NotNil(t, res.Failure)
			assert.Nil(t, res.Questions)
			assert.Equal(t, "Failed to parse generated content", res.Failure.Error)
			assert.Equal(t, tt.raw, res.Failure.ResponseText)
			assert.NotEmpty(t, res.Failure.Exception)
			assert.Equal(t, res.Failure, res.Payload())
		})
	}
}

func TestService_DefaultTopic(t *testing.T) {
	gen := &fakeGenerator{out: validSet}
	svc := NewService(gen, nil, loggertest.New(t), ServiceConfig{DefaultTopic: "C++ Programming", Count: 5})

	res, err := svc.Generate(context.Background(), "   ")
	require.NoError(t, err)
	require.Len(t, res.Questions, 2)
	assert.Contains(t, gen.prompts[0], "expert educator in C++ Programming")
	assert.Contains(t, gen.prompts[0], "Generate 5 multiple-choice")
}

func TestService_GeneratorError(t *testing.T) {
	svc := NewService(&fakeGenerator{err: errors.New("quota exceeded")}, nil, logger.NewNoOpLogger(), ServiceConfig{})
	_, err := svc.Generate(context.Background(), "Python")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestService_CachesValidSets(t *testing.T) {
	cache, mr := newRedisCache(t)
	gen := &fakeGenerator{out: validSet}
	svc := NewService(gen, cache, loggertest.New(t), ServiceConfig{})

	first, err := svc.Generate(context.Background(), "Python")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.True(t, mr.Exists(CacheKey("python")))

	second, err := svc.Generate(context.Background(), " PYTHON ")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Questions, second.Questions)
	assert.Len(t, gen.prompts, 1)

	mr.FastForward(2 * time.Hour)
	_, err = svc.Generate(context.Background(), "python")
	require.NoError(t, err)
	assert.Len(t, gen.prompts, 2)
}

func TestService_DoesNotCacheFailures(t *testing.T) {
	cache, mr := newRedisCache(t)
	svc := NewService(&fakeGenerator{out: "not json"}, cache, logger.NewNoOpLogger(), ServiceConfig{})

	res, err := svc.Generate(context.Background(), "Compilers")
	require.NoError(t, err)
	require.NotNil(t, res.Failure)
	assert.False(t, mr.Exists(CacheKey("Compilers")))
}

func TestService_CacheUnavailable(t *testing.T) {
	cache, mr := newRedisCache(t)
	mr.Close()
	gen := &fakeGenerator{out: validSet}
	svc := NewService(gen, cache, logger.NewNoOpLogger(), ServiceConfig{})

	res, err := svc.Generate(context.Background(), "Networks")
	require.NoError(t, err)
	assert.Len(t, res.Questions, 2)
}
