package notify

import (
	"context"
	"fmt"

	"github.com/StormRens/Fake-Twitter/internal/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESConfig selects the region and, optionally, static credentials and a
// custom endpoint (LocalStack and similar).
type SESConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	From      string
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// seams for tests
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig
	newSESClient         = func(cfg aws.Config, optFns ...func(*sesv2.Options)) sesAPI {
		return sesv2.NewFromConfig(cfg, optFns...)
	}
)

// SESNotifier sends verification mail through Amazon SES (v2 API).
type SESNotifier struct {
	client sesAPI
	from   string
	logger logging.Logger
}

func NewSESNotifier(ctx context.Context, cfg SESConfig, logger logging.Logger) (*SESNotifier, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newSESClient(awsCfg, func(o *sesv2.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &SESNotifier{client: client, from: cfg.From, logger: logger.With("module", "notify.ses")}, nil
}

func (n *SESNotifier) SendVerification(ctx context.Context, msg VerificationMessage) error {
	r, err := Render(msg)
	if err != nil {
		return err
	}

	out, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(r.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(r.HTML), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(r.Text), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}

	n.logger.Info(ctx, "verification mail sent", "to", msg.To, "message_id", aws.ToString(out.MessageId))
	return nil
}
