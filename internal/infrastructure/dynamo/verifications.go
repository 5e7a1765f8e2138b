package dynamo

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/multierr"

	"github.com/storefront-api/internal/domain"
)

// VerificationRepo stores pending email verification tokens.
// PK: email. At most one row per email exists at any time.
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

// Put replaces any existing token for the email in a single write.
func (r *VerificationRepo) Put(ctx context.Context, v *domain.VerificationToken) error {
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

// Find returns the record matching both token and email. An expired record is
// returned together with domain.ErrTokenExpired so the caller can remove it.
func (r *VerificationRepo) Find(ctx context.Context, token, email string, now time.Time) (*domain.VerificationToken, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	var v domain.VerificationToken
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(v.Token), []byte(token)) != 1 {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	if v.Expired(now) {
		return &v, domain.ErrTokenExpired
	}
	return &v, nil
}

// Delete removes the record only while it still holds the given token, so a
// token that was already consumed or replaced reports domain.ErrNotFound.
func (r *VerificationRepo) Delete(ctx context.Context, email, token string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldEmail, email),
		ConditionExpression: aws.String("#t = :t"),
		ExpressionAttributeNames: map[string]string{
			"#t": fieldToken,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": strVal(token),
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("verification already consumed: %w", domain.ErrNotFound)
	}
	return err
}

// PurgeExpired deletes every record whose expiry is before now. DynamoDB TTL
// removes rows eventually; this keeps the table tidy between TTL passes.
func (r *VerificationRepo) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:            aws.String(r.tableName),
		FilterExpression:     aws.String("#e < :now"),
		ProjectionExpression: aws.String("#k, #t"),
		ExpressionAttributeNames: map[string]string{
			"#e": fieldExpiresAt,
			"#k": fieldEmail,
			"#t": fieldToken,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	})

	var (
		purged int
		errs   error
	)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return purged, multierr.Append(errs, err)
		}
		var rows []domain.VerificationToken
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &rows); err != nil {
			return purged, multierr.Append(errs, err)
		}
		for _, row := range rows {
			if err := r.Delete(ctx, row.Email, row.Token); err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					errs = multierr.Append(errs, fmt.Errorf("purge %s: %w", row.Email, err))
				}
				continue
			}
			purged++
		}
	}
	return purged, errs
}
