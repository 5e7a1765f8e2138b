package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/storefront-api/internal/domain"
)

// OrderRepo stores orders and performs the multi-table writes that move stock.
type OrderRepo struct {
	client        *dynamodb.Client
	tableName     string
	productsTable string
	cartsTable    string
}

func NewOrderRepo(client *dynamodb.Client, tables OrderTables) *OrderRepo {
	return &OrderRepo{
		client:        client,
		tableName:     tables.Orders,
		productsTable: tables.Products,
		cartsTable:    tables.Carts,
	}
}

// OrderTables names the tables touched by order transactions.
type OrderTables struct {
	Orders   string
	Products string
	Carts    string
}

// Create writes the order, decrements stock for every line and empties the
// user's cart in one transaction. A line whose stock ran out returns *domain.StockError.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	qty, order := quantitiesByProduct(o.Items)
	now, err := attributevalue.Marshal(o.CreatedAt)
	if err != nil {
		return err
	}

	tx := make([]types.TransactWriteItem, 0, len(order)+2)
	for _, pid := range order {
		tx = append(tx, types.TransactWriteItem{Update: &types.Update{
			TableName:           aws.String(r.productsTable),
			Key:                 strKey(fieldProductID, pid),
			UpdateExpression:    aws.String("SET #s = #s - :q, #u = :now"),
			ConditionExpression: aws.String("attribute_exists(#pk) AND #s >= :q"),
			ExpressionAttributeNames: map[string]string{
				"#s": fieldStock, "#u": fieldUpdatedAt, "#pk": fieldProductID,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":q": numVal(qty[pid]), ":now": now,
			},
		}})
	}
	tx = append(tx,
		types.TransactWriteItem{Put: &types.Put{
			TableName: aws.String(r.tableName),
			Item:      item,
		}},
		types.TransactWriteItem{Update: &types.Update{
			TableName:        aws.String(r.cartsTable),
			Key:              strKey(fieldUserID, o.UserID),
			UpdateExpression: aws.String("SET #i = :empty, #t = :zero, #u = :now"),
			ExpressionAttributeNames: map[string]string{
				"#i": "items", "#t": "total_price", "#u": fieldUpdatedAt,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
				":zero":  numVal(0),
				":now":   now,
			},
		}},
	)

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: tx})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			for i, reason := range tce.CancellationReasons {
				if i < len(order) && aws.ToString(reason.Code) == "ConditionalCheckFailed" {
					return &domain.StockError{ProductID: order[i], Name: nameOf(o.Items, order[i])}
				}
			}
		}
		return err
	}
	return nil
}

// Cancel marks the order cancelled and returns stock for the given products.
// It fails with domain.ErrBadRequest if the order is already delivered or cancelled.
func (r *OrderRepo) Cancel(ctx context.Context, orderID string, restock map[string]int, at time.Time) error {
	now, err := attributevalue.Marshal(at)
	if err != nil {
		return err
	}

	tx := []types.TransactWriteItem{{Update: &types.Update{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldOrderID, orderID),
		UpdateExpression:    aws.String("SET #st = :cancelled, #u = :now"),
		ConditionExpression: aws.String("attribute_exists(#pk) AND NOT #st IN (:delivered, :cancelled)"),
		ExpressionAttributeNames: map[string]string{
			"#st": fieldStatus, "#u": fieldUpdatedAt, "#pk": fieldOrderID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cancelled": strVal(domain.OrderCancelled),
			":delivered": strVal(domain.OrderDelivered),
			":now":       now,
		},
	}}}

	pids := make([]string, 0, len(restock))
	for pid := range restock {
		pids = append(pids, pid)
	}
	sort.Strings(pids)
	for _, pid := range pids {
		tx = append(tx, types.TransactWriteItem{Update: &types.Update{
			TableName:           aws.String(r.productsTable),
			Key:                 strKey(fieldProductID, pid),
			UpdateExpression:    aws.String("SET #s = #s + :q, #u = :now"),
			ConditionExpression: aws.String("attribute_exists(#pk)"),
			ExpressionAttributeNames: map[string]string{
				"#s": fieldStock, "#u": fieldUpdatedAt, "#pk": fieldProductID,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":q": numVal(restock[pid]), ":now": now,
			},
		}})
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: tx})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && len(tce.CancellationReasons) > 0 &&
			aws.ToString(tce.CancellationReasons[0].Code) == "ConditionalCheckFailed" {
			return domain.NewError(domain.ErrBadRequest, "Cannot cancel this order")
		}
		return err
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldOrderID, orderID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("order not found: %w", domain.ErrNotFound)
	}
	var o domain.Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexOrdersByUser),
		KeyConditionExpression:    aws.String("#u = :u"),
		ExpressionAttributeNames:  map[string]string{"#u": fieldUserID},
		ExpressionAttributeValues: map[string]types.AttributeValue{":u": strVal(userID)},
		ScanIndexForward:          aws.Bool(false),
	})
	orders := []domain.Order{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Order
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		orders = append(orders, batch...)
	}
	return orders, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID, status string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldStatus:    status,
		fieldUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldOrderID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldOrderID, orderID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("order not found: %w", domain.ErrNotFound)
	}
	return err
}

// quantitiesByProduct sums line quantities per product. A transaction may touch
// each item only once, so lines differing only by size or color are merged.
func quantitiesByProduct(items []domain.OrderItem) (map[string]int, []string) {
	qty := make(map[string]int, len(items))
	var order []string
	for _, it := range items {
		if _, ok := qty[it.ProductID]; !ok {
			order = append(order, it.ProductID)
		}
		qty[it.ProductID] += it.Quantity
	}
	return qty, order
}

func nameOf(items []domain.OrderItem, productID string) string {
	for _, it := range items {
		if it.ProductID == productID {
			return it.Name
		}
	}
	return ""
}
