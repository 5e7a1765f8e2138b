package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/storefront-api/internal/domain"
)

// ProductRepo provides typed DynamoDB operations for the products table.
type ProductRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProductRepo(client *dynamodb.Client, tableName string) *ProductRepo {
	return &ProductRepo{client: client, tableName: tableName}
}

func (r *ProductRepo) Put(ctx context.Context, p *domain.Product) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ProductRepo) Get(ctx context.Context, productID string) (*domain.Product, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldProductID, productID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	var p domain.Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetMany loads products by id. Missing ids are skipped.
func (r *ProductRepo) GetMany(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	result := make(map[string]*domain.Product, len(ids))
	seen := make(map[string]bool, len(ids))
	var keys []map[string]types.AttributeValue
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, strKey(fieldProductID, id))
	}

	// BatchGetItem accepts at most 100 keys per call.
	for start := 0; start < len(keys); start += 100 {
		end := min(start+100, len(keys))
		pending := map[string]types.KeysAndAttributes{
			r.tableName: {Keys: keys[start:end]},
		}
		for len(pending) > 0 {
			out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: pending})
			if err != nil {
				return nil, err
			}
			var rows []domain.Product
			if err := attributevalue.UnmarshalListOfMaps(out.Responses[r.tableName], &rows); err != nil {
				return nil, err
			}
			for i := range rows {
				result[rows[i].ProductID] = &rows[i]
			}
			pending = out.UnprocessedKeys
		}
	}
	return result, nil
}

func (r *ProductRepo) Update(ctx context.Context, productID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldProductID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldProductID, productID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *ProductRepo) Delete(ctx context.Context, productID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(fieldProductID, productID),
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": fieldProductID},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	return err
}

// List returns the page of products matching the filter, newest first, and the
// total number of matches. A category filter is served from the category index.
func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	var filter *string
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		names["#s"] = fieldSearchText
		values[":q"] = strVal(q)
		filter = aws.String("contains(#s, :q)")
	}

	var items []map[string]types.AttributeValue
	if f.Category != "" {
		names["#c"] = fieldCategory
		values[":c"] = strVal(f.Category)
		p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(indexProductsByGroup),
			KeyConditionExpression:    aws.String("#c = :c"),
			FilterExpression:          filter,
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
			ScanIndexForward:          aws.Bool(false),
		})
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return nil, 0, err
			}
			items = append(items, page.Items...)
		}
	} else {
		in := &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: filter,
		}
		if filter != nil {
			in.ExpressionAttributeNames = names
			in.ExpressionAttributeValues = values
		}
		p := dynamodb.NewScanPaginator(r.client, in)
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return nil, 0, err
			}
			items = append(items, page.Items...)
		}
	}

	var all []domain.Product
	if err := attributevalue.UnmarshalListOfMaps(items, &all); err != nil {
		return nil, 0, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return pageOf(all, f.Page, f.Limit), len(all), nil
}

// pageOf slices a 1-based page out of items.
func pageOf[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}
