package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"go.uber.org/zap"

	"product-inventory/internal/domain"
)

const keyAttr = "productId"

// Store is a thin gateway over the single inventory table. It exposes the
// five single-key primitives the handler needs and nothing else; all
// durability and indexing guarantees come from DynamoDB itself.
type Store struct {
	db    dynamodbiface.DynamoDBAPI
	table string
	log   *zap.Logger
}

func New(db dynamodbiface.DynamoDBAPI, table string, log *zap.Logger) *Store {
	return &Store{db: db, table: table, log: log}
}

func (s *Store) key(productID string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		keyAttr: {S: aws.String(productID)},
	}
}

// Get looks up a single product by id. A missing record is
// domain.ErrProductNotFound, not a bare nil.
func (s *Store) Get(ctx context.Context, productID string) (*domain.Product, error) {
	out, err := s.db.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(productID),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", productID, err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrProductNotFound
	}
	var p domain.Product
	if err := dynamodbattribute.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", productID, err)
	}
	return &p, nil
}

// ScanAll drains the table, following continuation keys until the scan
// reports none. Items come back in store order across however many pages
// the scan takes.
func (s *Store) ScanAll(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	var start map[string]*dynamodb.AttributeValue
	for {
		out, err := s.db.ScanWithContext(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var page []domain.Product
		if err := dynamodbattribute.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal scan page: %w", err)
		}
		products = append(products, page...)
		s.log.Debug("scan page", zap.Int("items", len(page)), zap.Int("total", len(products)))
		if len(out.LastEvaluatedKey) == 0 {
			return products, nil
		}
		start = out.LastEvaluatedKey
	}
}

// Put writes the full record, unconditionally overwriting any existing
// record under the same id.
func (s *Store) Put(ctx context.Context, p domain.Product) error {
	item, err := dynamodbattribute.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", p.ProductID, err)
	}
	if _, err := s.db.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put %s: %w", p.ProductID, err)
	}
	return nil
}

// UpdateField sets exactly one attribute on the record and returns the
// store's post-update view of the changed attribute. Concurrent updates
// apply in arrival order, last write wins.
func (s *Store) UpdateField(ctx context.Context, productID, field string, value interface{}) (map[string]interface{}, error) {
	av, err := dynamodbattribute.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal %s value: %w", field, err)
	}
	out, err := s.db.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              s.key(productID),
		UpdateExpression: aws.String("SET #f = :v"),
		ExpressionAttributeNames: map[string]*string{
			"#f": aws.String(field),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":v": av,
		},
		ReturnValues: aws.String(dynamodb.ReturnValueUpdatedNew),
	})
	if err != nil {
		return nil, fmt.Errorf("update %s.%s: %w", productID, field, err)
	}
	updated := map[string]interface{}{}
	if err := dynamodbattribute.UnmarshalMap(out.Attributes, &updated); err != nil {
		return nil, fmt.Errorf("unmarshal updated attributes: %w", err)
	}
	return updated, nil
}

// Delete removes the record and returns its prior state. Deleting an id
// that does not exist is not an error; the prior state is just nil.
func (s *Store) Delete(ctx context.Context, productID string) (*domain.Product, error) {
	out, err := s.db.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.table),
		Key:          s.key(productID),
		ReturnValues: aws.String(dynamodb.ReturnValueAllOld),
	})
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", productID, err)
	}
	if len(out.Attributes) == 0 {
		return nil, nil
	}
	var prior domain.Product
	if err := dynamodbattribute.UnmarshalMap(out.Attributes, &prior); err != nil {
		return nil, fmt.Errorf("unmarshal prior state of %s: %w", productID, err)
	}
	return &prior, nil
}
