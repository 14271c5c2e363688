package sns

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-autoresign/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublishAPI struct{ mock.Mock }

func (m *mockPublishAPI) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func TestPublishResolution_Payload(t *testing.T) {
	api := &mockPublishAPI{}
	api.On("Publish", mock.Anything, mock.Anything).Return(&sns.PublishOutput{}, nil)

	p := NewPublisher(api, "arn:aws:sns:us-east-1:000000000000:games")
	err := p.PublishResolution(context.Background(), domain.ResolveResult{
		GameID:    "g1",
		Forfeited: domain.SideWhite,
		Result:    domain.ResultBlackWins,
		Changes:   []domain.ScoreChange{{PlayerID: "b", Moves: 1, Delta: 20}},
	})
	require.NoError(t, err)

	in := api.Calls[0].Arguments.Get(1).(*sns.PublishInput)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:games", aws.ToString(in.TopicArn))
	assert.Equal(t, EventGameAutoResigned, aws.ToString(in.MessageAttributes["event"].StringValue))

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &body))
	assert.Equal(t, EventGameAutoResigned, body["type"])
	assert.Equal(t, "g1", body["game_id"])
	assert.Equal(t, "0-1", body["result"])
	assert.Equal(t, "white", body["forfeited"])
}

func TestPublishResolution_WrapsError(t *testing.T) {
	api := &mockPublishAPI{}
	api.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("NotFound"))

	err := NewPublisher(api, "arn").PublishResolution(context.Background(), domain.ResolveResult{GameID: "g1"})
	assert.ErrorContains(t, err, "sns publish game g1: NotFound")
}
