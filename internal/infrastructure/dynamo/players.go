package dynamo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-autoresign/internal/domain"
)

// BatchGetItem accepts at most 100 keys per request.
const batchGetLimit = 100

// maxUnprocessedRounds bounds how often unprocessed keys are re-requested.
const maxUnprocessedRounds = 5

type playersAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// PlayerRepo provides typed DynamoDB operations for the players table.
type PlayerRepo struct {
	client    playersAPI
	tableName string
}

func NewPlayerRepo(client playersAPI, tableName string) *PlayerRepo {
	return &PlayerRepo{client: client, tableName: tableName}
}

func (r *PlayerRepo) Get(ctx context.Context, playerID string) (*domain.Player, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldPlayerID, playerID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("player %s: %w", playerID, domain.ErrNotFound)
	}
	var p domain.Player
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetMany loads the given players. Unknown ids are absent from the result.
func (r *PlayerRepo) GetMany(ctx context.Context, playerIDs []string) ([]domain.Player, error) {
	var players []domain.Player
	for start := 0; start < len(playerIDs); start += batchGetLimit {
		end := min(start+batchGetLimit, len(playerIDs))
		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range playerIDs[start:end] {
			keys = append(keys, strKey(fieldPlayerID, id))
		}
		request := map[string]types.KeysAndAttributes{r.tableName: {Keys: keys}}
		for round := 0; len(request) > 0; round++ {
			if round == maxUnprocessedRounds {
				return nil, fmt.Errorf("batch get players: unprocessed keys after %d rounds", round)
			}
			out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, fmt.Errorf("batch get players: %w", err)
			}
			var page []domain.Player
			if err := attributevalue.UnmarshalListOfMaps(out.Responses[r.tableName], &page); err != nil {
				return nil, fmt.Errorf("unmarshal players: %w", err)
			}
			players = append(players, page...)
			request = out.UnprocessedKeys
		}
	}
	return players, nil
}

// AddScore atomically adds delta to a player's score.
func (r *PlayerRepo) AddScore(ctx context.Context, playerID string, delta float64) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldPlayerID, playerID),
		UpdateExpression:    aws.String("ADD #score :delta"),
		ConditionExpression: aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{
			"#score": fieldScore,
			"#pk":    fieldPlayerID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: strconv.FormatFloat(delta, 'f', -1, 64)},
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("player %s: %w", playerID, domain.ErrNotFound)
	}
	return err
}

// SetScore overwrites a player's score.
func (r *PlayerRepo) SetScore(ctx context.Context, playerID string, score float64) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldScore: score})
	if err != nil {
		return err
	}
	ue.merge(map[string]string{"#pk": fieldPlayerID}, nil)
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldPlayerID, playerID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("player %s: %w", playerID, domain.ErrNotFound)
	}
	return err
}
