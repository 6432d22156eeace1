package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-watchlist-api/internal/domain"
)

// VerificationRepo manages single-use email verification records.
// PK: token. Verified consumption is transactional with the user flag flip.
type VerificationRepo struct {
	client     *dynamodb.Client
	tableName  string
	usersTable string
}

func NewVerificationRepo(client *dynamodb.Client, tableName, usersTable string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName, usersTable: usersTable}
}

func (r *VerificationRepo) Put(ctx context.Context, v *domain.EmailVerification) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *VerificationRepo) Get(ctx context.Context, token string) (*domain.EmailVerification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("token", token),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verification token not found: %w", domain.ErrNotFound)
	}
	var v domain.EmailVerification
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Consume deletes the verification record and marks the owning user verified
// in a single transaction. The delete is conditional on the record still
// existing, so two callers racing on the same token see exactly one success;
// the loser gets ErrNotFound and observes no half-applied state.
func (r *VerificationRepo) Consume(ctx context.Context, token, userEmail string) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Delete: &types.Delete{
					TableName:           aws.String(r.tableName),
					Key:                 strKey("token", token),
					ConditionExpression: aws.String("attribute_exists(#t)"),
					ExpressionAttributeNames: map[string]string{
						"#t": "token",
					},
				},
			},
			{
				Update: &types.Update{
					TableName:        aws.String(r.usersTable),
					Key:              strKey("email", userEmail),
					UpdateExpression: aws.String("SET email_verified = :t REMOVE email_verification_token"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":t": &types.AttributeValueMemberBOOL{Value: true},
					},
					ConditionExpression: aws.String("attribute_exists(email)"),
				},
			},
		},
	})
	if err != nil {
		var tc *types.TransactionCanceledException
		if errors.As(err, &tc) {
			return fmt.Errorf("verification token not found: %w", domain.ErrNotFound)
		}
		return err
	}
	return nil
}
