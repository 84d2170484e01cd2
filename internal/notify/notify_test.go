package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadolammi/facultyhire/internal/logger/loggertest"
)

type mockSES struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

func TestSESMailer_Send(t *testing.T) {
	var captured *ses.SendEmailInput
	mailer := NewSESMailer(&mockSES{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{}, nil
		},
	}, "hr@college.edu")

	err := mailer.Send(context.Background(), ShortlistEmail("ada@uni.edu", "Ada", 0.83))
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, []string{"ada@uni.edu"}, captured.Destination.ToAddresses)
	assert.Equal(t, "hr@college.edu", *captured.Source)
	assert.Equal(t, "Your application has been shortlisted", *captured.Message.Subject.Data)
	assert.Contains(t, *captured.Message.Body.Text.Data, "83%")
}

func TestSESMailer_Errors(t *testing.T) {
	mailer := NewSESMailer(&mockSES{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}, "hr@college.edu")

	err := mailer.Send(context.Background(), Message{To: "ada@uni.edu", Subject: "s", Body: "b"})
	assert.ErrorContains(t, err, "throttled")

	err = mailer.Send(context.Background(), Message{Subject: "s"})
	assert.Error(t, err)
}

func TestInterviewEmail(t *testing.T) {
	at := time.Date(2026, 11, 3, 14, 30, 0, 0, time.UTC)
	msg := InterviewEmail("ada@uni.edu", "", at)
	assert.Equal(t, "Interview scheduled", msg.Subject)
	assert.Contains(t, msg.Body, "Dear Candidate")
	assert.Contains(t, msg.Body, "Tuesday, 03 November 2026 14:30 UTC")
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, NewLogMailer(loggertest.New(t)).Send(context.Background(), Message{To: "x@y.z"}))
}
