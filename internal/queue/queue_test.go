package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   *[]published
	closed *int
}

func (f fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	*f.sent = append(*f.sent, published{exchange, key, msg})
	return nil
}

func (f fakeChannel) Close() error {
	*f.closed++
	return nil
}

func newFake() (*Publisher, *[]published, *int) {
	sent := &[]published{}
	closed := new(int)
	p := newPublisherWith(func() (Channel, error) {
		return fakeChannel{sent: sent, closed: closed}, nil
	}, "resume_screenings", "screening_updates")
	return p, sent, closed
}

func TestEnqueue(t *testing.T) {
	p, sent, closed := newFake()
	err := p.Enqueue(context.Background(), ScreeningJob{CandidateID: "abc", ObjectKey: "resumes/x.pdf"})
	require.NoError(t, err)

	require.Len(t, *sent, 1)
	got := (*sent)[0]
	assert.Equal(t, "", got.exchange)
	assert.Equal(t, "resume_screenings", got.key)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, 1, *closed)

	job, err := DecodeJob(got.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, "abc", job.CandidateID)
	assert.False(t, job.EnqueuedAt.IsZero())
}

func TestPublishStatus(t *testing.T) {
	p, sent, _ := newFake()
	err := p.PublishStatus(context.Background(), StatusUpdate{CandidateID: "abc", Status: "screened"})
	require.NoError(t, err)

	got := (*sent)[0]
	assert.Equal(t, "screening_updates", got.exchange)
	assert.Equal(t, "candidate.abc", got.key)

	var update map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &update))
	assert.Equal(t, "screened", update["status"])
	assert.NotEmpty(t, update["timestamp"])
}

func TestPublish_ChannelError(t *testing.T) {
	p := newPublisherWith(func() (Channel, error) { return nil, errors.New("connection closed") }, "q", "x")
	err := p.Enqueue(context.Background(), ScreeningJob{CandidateID: "a", ObjectKey: "k"})
	assert.ErrorContains(t, err, "connection closed")
}

func TestDecodeJob_Invalid(t *testing.T) {
	_, err := DecodeJob([]byte("{not json"))
	assert.Error(t, err)

	_, err = DecodeJob([]byte(`{"candidate_id": "abc"}`))
	assert.ErrorContains(t, err, "object_key")
}
