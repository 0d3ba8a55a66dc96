// Package mail sends transactional email through Amazon SES.
package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the slice of the SES client the mailer uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type Mailer struct {
	client sesAPI
	sender string
}

// New builds a mailer backed by the default AWS credential chain.
func New(ctx context.Context, region, sender string) (*Mailer, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws config load: %w", err)
	}
	return &Mailer{client: sesv2.NewFromConfig(cfg), sender: sender}, nil
}

// NewWithClient is for tests.
func NewWithClient(client sesAPI, sender string) *Mailer {
	return &Mailer{client: client, sender: sender}
}

const inviteSubject = "You've been invited to Inkline ROI"

func (m *Mailer) SendInvitation(ctx context.Context, email, role, inviteURL string) error {
	body := fmt.Sprintf(
		"Hi,\n\nYou've been invited to join Inkline ROI as a %s.\n\nAccept your invitation here: %s\n\nIf you weren't expecting this, you can ignore this email.\n",
		role, inviteURL)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.sender),
		Destination: &sestypes.Destination{
			ToAddresses: []string{email},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(inviteSubject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(body)},
				},
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send invitation to %s: %w", email, err)
	}
	return nil
}
