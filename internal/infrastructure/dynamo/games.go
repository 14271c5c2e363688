package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-autoresign/internal/domain"
)

// gamesAPI is the subset of the DynamoDB client used by GameRepo.
type gamesAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// GameRepo provides typed DynamoDB operations for the games table.
type GameRepo struct {
	client    gamesAPI
	tableName string
}

func NewGameRepo(client gamesAPI, tableName string) *GameRepo {
	return &GameRepo{client: client, tableName: tableName}
}

// filterExpr is a compiled FilterExpression or ConditionExpression.
type filterExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// unsetClause matches an attribute that is missing or explicitly NULL.
func unsetClause(name string) string {
	return fmt.Sprintf("(attribute_not_exists(%s) OR attribute_type(%s, :nullType))", name, name)
}

// notificationFilter compiles domain.NotificationQuery.Matches for a table scan.
func notificationFilter(q domain.NotificationQuery) filterExpr {
	return filterExpr{
		Expr: unsetClause("#result") + " AND " + unsetClause("#notified") +
			" AND #lastMove < :cutoff AND size(#history) >= :minHistory",
		Names: map[string]string{
			"#result":   fieldResult,
			"#notified": fieldNotifiedAt,
			"#lastMove": fieldLastMoveAt,
			"#history":  fieldHistory,
		},
		Values: map[string]types.AttributeValue{
			":nullType":   &types.AttributeValueMemberS{Value: nullType},
			":cutoff":     unixNum(q.LastMoveBefore),
			":minHistory": intNum(q.MinHistory),
		},
	}
}

// resolutionFilter compiles domain.ResolutionQuery.Matches for a table scan.
func resolutionFilter(q domain.ResolutionQuery) filterExpr {
	return filterExpr{
		Expr: unsetClause("#result") + " AND #notified < :cutoff",
		Names: map[string]string{
			"#result":   fieldResult,
			"#notified": fieldNotifiedAt,
		},
		Values: map[string]types.AttributeValue{
			":nullType": &types.AttributeValueMemberS{Value: nullType},
			":cutoff":   unixNum(q.NotifiedBefore),
		},
	}
}

// claimCondition guards a claim against games that were finished or claimed
// after the scan read them.
func claimCondition() filterExpr {
	return filterExpr{
		Expr: "attribute_exists(#pk) AND " + unsetClause("#cResult") + " AND " + unsetClause("#cNotified"),
		Names: map[string]string{
			"#pk":        fieldGameID,
			"#cResult":   fieldResult,
			"#cNotified": fieldNotifiedAt,
		},
		Values: map[string]types.AttributeValue{
			":nullType": &types.AttributeValueMemberS{Value: nullType},
		},
	}
}

// resolveCondition makes the result write happen at most once per game.
func resolveCondition() filterExpr {
	return filterExpr{
		Expr: "attribute_exists(#pk) AND " + unsetClause("#cResult"),
		Names: map[string]string{
			"#pk":      fieldGameID,
			"#cResult": fieldResult,
		},
		Values: map[string]types.AttributeValue{
			":nullType": &types.AttributeValueMemberS{Value: nullType},
		},
	}
}

func (r *GameRepo) FindNotificationCandidates(ctx context.Context, q domain.NotificationQuery) ([]domain.Game, error) {
	return r.scan(ctx, notificationFilter(q))
}

func (r *GameRepo) FindResolutionCandidates(ctx context.Context, q domain.ResolutionQuery) ([]domain.Game, error) {
	return r.scan(ctx, resolutionFilter(q))
}

func (r *GameRepo) scan(ctx context.Context, f filterExpr) ([]domain.Game, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String(f.Expr),
		ExpressionAttributeNames:  f.Names,
		ExpressionAttributeValues: f.Values,
	})
	var games []domain.Game
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan games: %w", err)
		}
		var page []domain.Game
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal games: %w", err)
		}
		games = append(games, page...)
	}
	return games, nil
}

// MarkNotified stamps the notification date on every id and returns the ids
// that were actually claimed. Ids whose game was finished or claimed in the
// meantime are skipped silently; other write failures are joined into err.
func (r *GameRepo) MarkNotified(ctx context.Context, ids []string, at time.Time) ([]string, error) {
	cond := claimCondition()
	claimed := make([]string, 0, len(ids))
	var errs []error
	for _, gameID := range ids {
		ue, err := buildUpdateExpr(map[string]interface{}{fieldNotifiedAt: at.Unix()})
		if err != nil {
			return claimed, err
		}
		ue.merge(cond.Names, cond.Values)
		_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(r.tableName),
			Key:                       strKey(fieldGameID, gameID),
			UpdateExpression:          aws.String(ue.Expr),
			ConditionExpression:       aws.String(cond.Expr),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: ue.Values,
		})
		switch {
		case err == nil:
			claimed = append(claimed, gameID)
		case isConditionFailed(err):
			slog.Debug("game no longer claimable", "game_id", gameID)
		default:
			errs = append(errs, fmt.Errorf("claim game %s: %w", gameID, err))
		}
	}
	return claimed, errors.Join(errs...)
}

// Resolve writes the terminal result of a game and clears its notification date.
// Returns domain.ErrConflict when the game already has a result.
func (r *GameRepo) Resolve(ctx context.Context, gameID string, result domain.Result, at time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldResult:           string(result),
		fieldResolvedAt:       at.Unix(),
		fieldResolutionReason: domain.ResolutionTimeout,
	}, fieldNotifiedAt)
	if err != nil {
		return err
	}
	cond := resolveCondition()
	ue.merge(cond.Names, cond.Values)
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldGameID, gameID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String(cond.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("game %s already resolved: %w", gameID, domain.ErrConflict)
	}
	return err
}
