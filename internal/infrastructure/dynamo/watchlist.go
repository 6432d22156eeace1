package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-watchlist-api/internal/domain"
)

// WatchlistRepo manages per-user watchlist entries.
// PK: user_id, SK: movie_id.
type WatchlistRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewWatchlistRepo(client *dynamodb.Client, tableName string) *WatchlistRepo {
	return &WatchlistRepo{client: client, tableName: tableName}
}

// Add inserts an entry; ErrConflict if the movie is already on the list.
func (r *WatchlistRepo) Add(ctx context.Context, e *domain.WatchlistEntry) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal watchlist entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id) AND attribute_not_exists(movie_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("movie already in watchlist: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *WatchlistRepo) Get(ctx context.Context, userID, movieID string) (*domain.WatchlistEntry, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "movie_id", movieID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("watchlist entry not found: %w", domain.ErrNotFound)
	}
	var e domain.WatchlistEntry
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *WatchlistRepo) ListByUser(ctx context.Context, userID string) ([]domain.WatchlistEntry, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var entries []domain.WatchlistEntry
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListAll scans every user's watchlist entries.
func (r *WatchlistRepo) ListAll(ctx context.Context) ([]domain.WatchlistEntry, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var entries []domain.WatchlistEntry
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateStatus changes the watch status; ErrNotFound if the movie is not on
// the user's list.
func (r *WatchlistRepo) UpdateStatus(ctx context.Context, userID, movieID, status string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 compositeKey("user_id", userID, "movie_id", movieID),
		UpdateExpression:    aws.String("SET #s = :s, updated_at = :u"),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: status},
			":u": &types.AttributeValueMemberS{Value: now},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("movie not in watchlist: %w", domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (r *WatchlistRepo) Remove(ctx context.Context, userID, movieID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "movie_id", movieID),
	})
	return err
}
