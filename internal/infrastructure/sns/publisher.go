package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-autoresign/internal/config"
	"github.com/go-autoresign/internal/domain"
	"github.com/go-autoresign/internal/infrastructure/awsconf"
)

// EventGameAutoResigned is the event type attribute of resolution messages.
const EventGameAutoResigned = "game.auto_resigned"

type publishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher announces resolved games on an SNS topic.
type Publisher struct {
	client   publishAPI
	topicARN string
}

func NewClient(awsCfg aws.Config, cfg *config.Config) *sns.Client {
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if ep := awsconf.Endpoint(cfg); ep != nil {
			o.BaseEndpoint = ep
		}
	})
}

func NewPublisher(client publishAPI, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

type resolutionEvent struct {
	Type string `json:"type"`
	domain.ResolveResult
}

func (p *Publisher) PublishResolution(ctx context.Context, res domain.ResolveResult) error {
	payload, err := json.Marshal(resolutionEvent{Type: EventGameAutoResigned, ResolveResult: res})
	if err != nil {
		return fmt.Errorf("marshal resolution event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event": {DataType: aws.String("String"), StringValue: aws.String(EventGameAutoResigned)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish game %s: %w", res.GameID, err)
	}
	return nil
}
