package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"product-inventory/internal/domain"
)

type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	getItem    func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	scan       func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error)
	putItem    func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	updateItem func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	deleteItem func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
}

func (f *fakeDynamo) GetItemWithContext(_ aws.Context, in *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	return f.getItem(in)
}

func (f *fakeDynamo) ScanWithContext(_ aws.Context, in *dynamodb.ScanInput, _ ...request.Option) (*dynamodb.ScanOutput, error) {
	return f.scan(in)
}

func (f *fakeDynamo) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	return f.putItem(in)
}

func (f *fakeDynamo) UpdateItemWithContext(_ aws.Context, in *dynamodb.UpdateItemInput, _ ...request.Option) (*dynamodb.UpdateItemOutput, error) {
	return f.updateItem(in)
}

func (f *fakeDynamo) DeleteItemWithContext(_ aws.Context, in *dynamodb.DeleteItemInput, _ ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	return f.deleteItem(in)
}

func mustMarshal(t *testing.T, p domain.Product) map[string]*dynamodb.AttributeValue {
	t.Helper()
	item, err := dynamodbattribute.MarshalMap(p)
	require.NoError(t, err)
	return item
}

func TestGet(t *testing.T) {
	want := domain.Product{
		ProductID:   "42",
		Name:        "Glue Gun",
		Price:       12.5,
		Description: "Hot glue",
		Image:       "https://bucket.s3.amazonaws.com/42.jpg",
	}
	db := &fakeDynamo{
		getItem: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			require.Equal(t, "inventory", *in.TableName)
			require.Equal(t, "42", *in.Key["productId"].S)
			return &dynamodb.GetItemOutput{Item: mustMarshal(t, want)}, nil
		},
	}
	s := New(db, "inventory", zap.NewNop())

	got, err := s.Get(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, want, *got)
}

func TestGetMissing(t *testing.T) {
	db := &fakeDynamo{
		getItem: func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{}, nil
		},
	}
	s := New(db, "inventory", zap.NewNop())

	_, err := s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetBackendError(t *testing.T) {
	db := &fakeDynamo{
		getItem: func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	s := New(db, "inventory", zap.NewNop())

	_, err := s.Get(context.Background(), "42")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrProductNotFound)
}

func TestScanAllFollowsContinuationKeys(t *testing.T) {
	const pages = 4
	const pageSize = 3

	page := 0
	db := &fakeDynamo{
		scan: func(in *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			// The continuation key from the previous page must come back
			// as this page's start key.
			if page == 0 {
				require.Nil(t, in.ExclusiveStartKey)
			} else {
				require.Equal(t, fmt.Sprint(page), *in.ExclusiveStartKey["productId"].S)
			}

			out := &dynamodb.ScanOutput{}
			for i := 0; i < pageSize; i++ {
				out.Items = append(out.Items, mustMarshal(t, domain.Product{
					ProductID: fmt.Sprintf("%d-%d", page, i),
				}))
			}
			page++
			if page < pages {
				out.LastEvaluatedKey = map[string]*dynamodb.AttributeValue{
					"productId": {S: aws.String(fmt.Sprint(page))},
				}
			}
			return out, nil
		},
	}
	s := New(db, "inventory", zap.NewNop())

	products, err := s.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, products, pages*pageSize)
	for i, p := range products {
		require.Equal(t, fmt.Sprintf("%d-%d", i/pageSize, i%pageSize), p.ProductID)
	}
}

func TestScanAllSinglePage(t *testing.T) {
	db := &fakeDynamo{
		scan: func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
			return &dynamodb.ScanOutput{}, nil
		},
	}
	s := New(db, "inventory", zap.NewNop())

	products, err := s.ScanAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, products)
	require.Empty(t, products)
}

func TestPut(t *testing.T) {
	var written map[string]*dynamodb.AttributeValue
	db := &fakeDynamo{
		putItem: func(in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
			require.Equal(t, "inventory", *in.TableName)
			written = in.Item
			return &dynamodb.PutItemOutput{}, nil
		},
	}
	s := New(db, "inventory", zap.NewNop())

	err := s.Put(context.Background(), domain.Product{ProductID: "7", Name: "Yarn", Price: 3.25})
	require.NoError(t, err)
	require.Equal(t, "7", *written["productId"].S)
	require.Equal(t, "Yarn", *written["name"].S)
	require.Equal(t, "3.25", *written["price"].N)
}

func TestUpdateField(t *testing.T) {
	db := &fakeDynamo{
		updateItem: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			require.Equal(t, "SET #f = :v", *in.UpdateExpression)
			require.Equal(t, "price", *in.ExpressionAttributeNames["#f"])
			require.Equal(t, "9.99", *in.ExpressionAttributeValues[":v"].N)
			require.Equal(t, dynamodb.ReturnValueUpdatedNew, *in.ReturnValues)
			return &dynamodb.UpdateItemOutput{
				Attributes: map[string]*dynamodb.AttributeValue{
					"price": {N: aws.String("9.99")},
				},
			}, nil
		},
	}
	s := New(db, "inventory", zap.NewNop())

	updated, err := s.UpdateField(context.Background(), "42", "price", 9.99)
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"price": 9.99}, updated)
}

func TestDeleteReturnsPriorState(t *testing.T) {
	prior := domain.Product{ProductID: "42", Name: "Glue Gun", Price: 12.5}
	db := &fakeDynamo{
		deleteItem: func(in *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
			require.Equal(t, dynamodb.ReturnValueAllOld, *in.ReturnValues)
			return &dynamodb.DeleteItemOutput{Attributes: mustMarshal(t, prior)}, nil
		},
	}
	s := New(db, "inventory", zap.NewNop())

	got, err := s.Delete(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, prior, *got)
}

func TestDeleteMissingIsIdempotent(t *testing.T) {
	db := &fakeDynamo{
		deleteItem: func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
			return &dynamodb.DeleteItemOutput{}, nil
		},
	}
	s := New(db, "inventory", zap.NewNop())

	got, err := s.Delete(context.Background(), "gone")
	require.NoError(t, err)
	require.Nil(t, got)
}
