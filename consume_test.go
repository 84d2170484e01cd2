package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/muhammadolammi/facultyhire/internal/candidates"
	"github.com/muhammadolammi/facultyhire/internal/logger/loggertest"
	"github.com/muhammadolammi/facultyhire/internal/queue"
)

type fakeCandidates struct {
	statuses []candidates.Status
	analysis *candidates.Analysis
	final    candidates.Status
	saveErrs int
}

func (f *fakeCandidates) UpdateStatus(_ context.Context, _ primitive.ObjectID, status candidates.Status) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeCandidates) UpdateScreening(_ context.Context, _ primitive.ObjectID, analysis *candidates.Analysis, status candidates.Status) error {
	if f.saveErrs > 0 {
		f.saveErrs--
		return errors.New("write conflict")
	}
	f.analysis = analysis
	f.final = status
	return nil
}

type fakeObjects struct {
	data  []byte
	fails int
	calls int
}

func (f *fakeObjects) Download(context.Context, string) ([]byte, error) {
	f.calls++
	if f.calls <= f.fails {
		return nil, errors.New("connection reset")
	}
	return f.data, nil
}

type fakeUpdates struct {
	updates []queue.StatusUpdate
}

func (f *fakeUpdates) PublishStatus(_ context.Context, u queue.StatusUpdate) error {
	f.updates = append(f.updates, u)
	return nil
}

type fakeAnalyzer struct {
	out     string
	err     error
	message string
	onCall  func()
}

func (f *fakeAnalyzer) Analyze(_ context.Context, job queue.ScreeningJob, resumeText string) (string, error) {
	f.message = analyzerMessage(job, resumeText)
	if f.onCall != nil {
		f.onCall()
	}
	return f.out, f.err
}

type workerFixture struct {
	wc         *WorkerConfig
	candidates *fakeCandidates
	objects    *fakeObjects
	updates    *fakeUpdates
	analyzer   *fakeAnalyzer
}

func newWorkerFixture(t *testing.T) *workerFixture {
	f := &workerFixture{
		candidates: &fakeCandidates{},
		objects:    &fakeObjects{data: []byte("PhD Computer Science. Taught compilers for 8 years.")},
		updates:    &fakeUpdates{},
		analyzer: &fakeAnalyzer{out: "```json\n" + `{"match_score": 82, "relevant_skills": ["compilers"],
			"missing_skills": ["grant writing"], "summary": "solid teaching record", "recommendation": "interview"}` + "\n```"},
	}
	f.wc = &WorkerConfig{
		Candidates: f.candidates,
		Objects:    f.objects,
		Updates:    f.updates,
		Analyzer:   f.analyzer,
		Log:        loggertest.New(t),
		RetryDelay: time.Millisecond,
	}
	return f
}

func jobBody(id primitive.ObjectID) []byte {
	return []byte(`{"candidate_id":"` + id.Hex() + `","email":"ada@uni.edu","object_key":"resumes/a.txt",` +
		`"mime":"text/plain","job_title":"Lecturer","job_description":"Teach compilers"}`)
}

func TestRetry(t *testing.T) {
	calls := 0
	got, err := retry(context.Background(), 3, time.Millisecond, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)

	calls = 0
	_, err = retry(context.Background(), 2, time.Millisecond, func() (string, error) {
		calls++
		return "", errors.New("still down")
	})
	assert.ErrorContains(t, err, "after 2 attempts: still down")
	assert.Equal(t, 2, calls)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := retry(ctx, 5, time.Hour, func() (int, error) { return 0, errors.New("fail") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalysisFromOutput(t *testing.T) {
	a := analysisFromOutput(`{"match_score": 140, "summary": "ok"}`, false, "")
	assert.False(t, a.IsErrorResult)
	assert.Equal(t, 100, a.MatchScore)

	a = analysisFromOutput("", false, "")
	assert.True(t, a.IsErrorResult)
	assert.Equal(t, "empty response from agent", a.Error)

	a = analysisFromOutput("I think they are great", false, "")
	assert.True(t, a.IsErrorResult)
	assert.True(t, strings.HasPrefix(a.Error, "json unmarshal error"))

	a = analysisFromOutput("", true, "file download error: boom")
	assert.Equal(t, "file download error: boom", a.Error)
}

func TestHandleDelivery_Screened(t *testing.T) {
	f := newWorkerFixture(t)
	f.objects.fails = 2

	require.NoError(t, f.wc.handleDelivery(context.Background(), jobBody(primitive.NewObjectID())))

	assert.Equal(t, []candidates.Status{candidates.StatusScreening}, f.candidates.statuses)
	assert.Equal(t, candidates.StatusScreened, f.candidates.final)
	require.NotNil(t, f.candidates.analysis)
	assert.Equal(t, 82, f.candidates.analysis.MatchScore)
	assert.Equal(t, []string{"grant writing"}, f.candidates.analysis.MissingSkills)

	require.Len(t, f.updates.updates, 2)
	assert.Equal(t, "screening", f.updates.updates[0].Status)
	assert.Equal(t, "screened", f.updates.updates[1].Status)

	assert.Contains(t, f.analyzer.message, "Job Title:\nLecturer")
	assert.Contains(t, f.analyzer.message, "Taught compilers")
}

func TestHandleDelivery_DownloadFails(t *testing.T) {
	f := newWorkerFixture(t)
	f.objects.fails = 10

	require.NoError(t, f.wc.handleDelivery(context.Background(), jobBody(primitive.NewObjectID())))
	assert.Equal(t, 3, f.objects.calls)
	assert.Equal(t, candidates.StatusFailed, f.candidates.final)
	assert.True(t, f.candidates.analysis.IsErrorResult)
	assert.Contains(t, f.candidates.analysis.Error, "file download error")
	assert.Equal(t, "failed", f.updates.updates[len(f.updates.updates)-1].Status)
}

func TestHandleDelivery_AgentFails(t *testing.T) {
	f := newWorkerFixture(t)
	f.analyzer.err = errors.New("quota")

	require.NoError(t, f.wc.handleDelivery(context.Background(), jobBody(primitive.NewObjectID())))
	assert.Equal(t, candidates.StatusFailed, f.candidates.final)
	assert.Contains(t, f.candidates.analysis.Error, "agent stream error")
}

func TestHandleDelivery_SaveRetried(t *testing.T) {
	f := newWorkerFixture(t)
	f.candidates.saveErrs = 2

	require.NoError(t, f.wc.handleDelivery(context.Background(), jobBody(primitive.NewObjectID())))
	assert.Equal(t, candidates.StatusScreened, f.candidates.final)
}

func TestHandleDelivery_BadMessage(t *testing.T) {
	f := newWorkerFixture(t)
	assert.Error(t, f.wc.handleDelivery(context.Background(), []byte("{")))
	assert.Error(t, f.wc.handleDelivery(context.Background(),
		[]byte(`{"candidate_id":"not-hex","object_key":"k"}`)))
	assert.Empty(t, f.updates.updates)
}

func TestHandleDelivery_ShutdownRequeues(t *testing.T) {
	f := newWorkerFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.analyzer.onCall = cancel
	f.analyzer.err = context.Canceled

	err := f.wc.handleDelivery(ctx, jobBody(primitive.NewObjectID()))
	assert.ErrorIs(t, err, errInterrupted)

	assert.Nil(t, f.candidates.analysis)
	assert.Empty(t, f.candidates.final)
	assert.Equal(t, []candidates.Status{candidates.StatusScreening, candidates.StatusUploaded}, f.candidates.statuses)
	for _, u := range f.updates.updates {
		assert.NotEqual(t, "failed", u.Status)
	}
}
