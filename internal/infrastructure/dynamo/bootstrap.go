package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/pkg/logger"
)

// Index names.
const (
	indexUsersByEmail    = "email-index"
	indexUsersByAdminID  = "admin_id-index"
	indexOrdersByUser    = "user_id-created_at-index"
	indexProductsByGroup = "category-created_at-index"
)

// Bootstrap creates all DynamoDB tables and GSIs if they don't already exist.
// Existing tables are left untouched; every other failure is collected and returned.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) error {
	var errs error

	errs = multierr.Append(errs, createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Users),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr(fieldUserID), attr(fieldEmail), attr(fieldAdminID),
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(fieldUserID), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexUsersByEmail, fieldEmail, ""),
			gsi(indexUsersByAdminID, fieldAdminID, ""),
		},
	}))

	// One row per email: PutItem is an atomic replace of the previous token.
	errs = multierr.Append(errs, createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.VerificationTokens),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr(fieldEmail),
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(fieldEmail), KeyType: types.KeyTypeHash},
		},
	}))
	enableTTL(ctx, client, tables.VerificationTokens, fieldExpiresAt)

	errs = multierr.Append(errs, createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Products),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr(fieldProductID), attr(fieldCategory), attr(fieldCreatedAt),
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(fieldProductID), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexProductsByGroup, fieldCategory, fieldCreatedAt),
		},
	}))

	errs = multierr.Append(errs, createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Carts),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr(fieldUserID),
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(fieldUserID), KeyType: types.KeyTypeHash},
		},
	}))

	errs = multierr.Append(errs, createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Orders),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr(fieldOrderID), attr(fieldUserID), attr(fieldCreatedAt),
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(fieldOrderID), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexOrdersByUser, fieldUserID, fieldCreatedAt),
		},
	}))

	return errs
}

func attr(name string) types.AttributeDefinition {
	return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS}
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) error {
	log := logger.WithModule("dynamo")
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		var riue *types.ResourceInUseException
		if errors.As(err, &riue) {
			return nil
		}
		return fmt.Errorf("create table %s: %w", aws.ToString(input.TableName), err)
	}
	log.Info("created table", zap.String("table", aws.ToString(input.TableName)))
	return nil
}

func enableTTL(ctx context.Context, client *dynamodb.Client, tableName, ttlAttr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(ttlAttr),
		},
	})
	if err != nil {
		// Re-enabling an already active TTL is rejected; treat it as a warning.
		logger.WithModule("dynamo").Warn("could not enable TTL",
			zap.String("table", tableName), zap.Error(err))
	}
}
