package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-watchlist-api/internal/domain"
)

// TwoFactorRepo manages single-use login codes.
// PK: user_id, SK: code. Codes are consumed by flipping is_used, never
// deleted; the table TTL on expires_at handles cleanup.
type TwoFactorRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTwoFactorRepo(client *dynamodb.Client, tableName string) *TwoFactorRepo {
	return &TwoFactorRepo{client: client, tableName: tableName}
}

func (r *TwoFactorRepo) Put(ctx context.Context, c *domain.TwoFactorCode) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal two-factor code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Consume marks the code used if and only if it exists for this user, has not
// been used, and has not expired. The conditional update makes the operation
// atomic: of N concurrent attempts with the same valid code, exactly one
// succeeds and the rest get ErrUnauthorized.
func (r *TwoFactorRepo) Consume(ctx context.Context, userID, code string) error {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 compositeKey("user_id", userID, "code", code),
		UpdateExpression:    aws.String("SET is_used = :t"),
		ConditionExpression: aws.String("attribute_exists(user_id) AND is_used = :f AND expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":   &types.AttributeValueMemberBOOL{Value: true},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":now": &types.AttributeValueMemberN{Value: now},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
		}
		return err
	}
	return nil
}
