// Package notify sends candidate emails.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/muhammadolammi/facultyhire/internal/logger"
)

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	To      string
	Subject string
	Body    string
}

// SESAPI is the part of the SES client the mailer calls.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESMailer struct {
	client SESAPI
	sender string
}

func NewSESMailer(client SESAPI, sender string) *SESMailer {
	return &SESMailer{client: client, sender: sender}
}

// NewSESMailerFromRegion loads the default AWS credential chain for region.
func NewSESMailerFromRegion(ctx context.Context, region, sender string) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSESMailer(ses.NewFromConfig(cfg), sender), nil
}

func (m *SESMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("email recipient is empty")
	}
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Body)},
			},
		},
		Source: aws.String(m.sender),
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer only logs messages. Used when no SES sender is configured.
type LogMailer struct {
	log logger.Logger
}

func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("email not sent, mailer disabled", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}

func ShortlistEmail(to, name string, score float64) Message {
	return Message{
		To:      to,
		Subject: "Your application has been shortlisted",
		Body: fmt.Sprintf("Dear %s,\n\nThank you for applying. Your resume matched the position at %.0f%% "+
			"and you have been shortlisted for the next stage. We will contact you with interview details.\n\n"+
			"Faculty Recruitment Team", greeting(name), score*100),
	}
}

func InterviewEmail(to, name string, at time.Time) Message {
	return Message{
		To:      to,
		Subject: "Interview scheduled",
		Body: fmt.Sprintf("Dear %s,\n\nYour interview has been scheduled for %s.\n\n"+
			"Faculty Recruitment Team", greeting(name), at.UTC().Format("Monday, 02 January 2006 15:04 MST")),
	}
}

func greeting(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return "Candidate"
}
