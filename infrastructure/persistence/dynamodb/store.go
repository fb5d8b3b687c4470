// Package dynamodb implements the document store port on top of Amazon
// DynamoDB. Filters are pushed down as scan filter expressions where the
// operator set allows it; sorting, pagination, and aggregation run client-side
// through the shared store helpers so both adapters agree on semantics.
package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"fintrack-backend/infrastructure/persistence/store"
	appErrors "fintrack-backend/pkg/errors"
)

const batchWriteLimit = 25

// Store maps logical collection names to DynamoDB tables. Every table uses a
// simple "id" partition key.
type Store struct {
	client *awsdynamodb.Client
	tables map[string]string
	logger *zap.Logger
}

// NewStore creates a DynamoDB-backed store. The tables map translates
// collection names to table names; unknown collections fail at query time.
func NewStore(client *awsdynamodb.Client, tables map[string]string, logger *zap.Logger) *Store {
	return &Store{client: client, tables: tables, logger: logger}
}

// Collection returns a handle for the named collection.
func (s *Store) Collection(name string) store.Collection {
	return &collection{store: s, name: name}
}

func (s *Store) tableName(collection string) (string, error) {
	table, ok := s.tables[collection]
	if !ok {
		return "", appErrors.NewInternalError(fmt.Sprintf("no table configured for collection %q", collection))
	}
	return table, nil
}

// scan reads every item matching filter. The filter is translated to a scan
// filter expression when possible; MatchFilter is re-applied after unmarshal
// so operators the translation cannot express ($or) still hold.
func (s *Store) scan(ctx context.Context, collection string, filter store.Filter) ([]store.Document, error) {
	table, err := s.tableName(collection)
	if err != nil {
		return nil, err
	}

	input := &awsdynamodb.ScanInput{TableName: aws.String(table)}
	if cond, ok := buildFilterExpression(filter); ok {
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return nil, appErrors.NewDatabaseError("failed to build filter expression", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var docs []store.Document
	for {
		output, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, appErrors.NewDatabaseError("failed to scan table "+table, err)
		}

		var page []store.Document
		if err := attributevalue.UnmarshalListOfMaps(output.Items, &page); err != nil {
			return nil, appErrors.NewDatabaseError("failed to unmarshal items from "+table, err)
		}
		for _, d := range page {
			if store.MatchFilter(d, filter) {
				docs = append(docs, d)
			}
		}

		if output.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
	return docs, nil
}

// buildFilterExpression translates a filter into an expression-builder
// condition. It returns ok=false when the filter is empty or uses a construct
// ($or) that has no direct expression form; callers then scan unfiltered.
func buildFilterExpression(filter store.Filter) (expression.ConditionBuilder, bool) {
	var cond expression.ConditionBuilder
	have := false

	add := func(c expression.ConditionBuilder) {
		if have {
			cond = cond.And(c)
		} else {
			cond = c
			have = true
		}
	}

	for field, value := range filter {
		if field == store.OpOr {
			return expression.ConditionBuilder{}, false
		}
		ops, isOps := value.(map[string]any)
		if !isOps {
			add(expression.Name(field).Equal(expression.Value(value)))
			continue
		}
		for op, operand := range ops {
			switch op {
			case store.OpGT:
				add(expression.Name(field).GreaterThan(expression.Value(operand)))
			case store.OpGTE:
				add(expression.Name(field).GreaterThanEqual(expression.Value(operand)))
			case store.OpLT:
				add(expression.Name(field).LessThan(expression.Value(operand)))
			case store.OpLTE:
				add(expression.Name(field).LessThanEqual(expression.Value(operand)))
			case store.OpIn:
				values, isSlice := operand.([]any)
				if !isSlice || len(values) == 0 {
					return expression.ConditionBuilder{}, false
				}
				operands := make([]expression.OperandBuilder, len(values))
				for i, v := range values {
					operands[i] = expression.Value(v)
				}
				first := operands[0]
				add(expression.Name(field).In(first, operands[1:]...))
			default:
				return expression.ConditionBuilder{}, false
			}
		}
	}
	if !have {
		return expression.ConditionBuilder{}, false
	}
	return cond, true
}

type collection struct {
	store *Store
	name  string
}

func (c *collection) Find(filter store.Filter) store.Query {
	return &query{coll: c, filter: filter, limit: -1}
}

func (c *collection) CountDocuments(ctx context.Context, filter store.Filter) (int64, error) {
	docs, err := c.store.scan(ctx, c.name, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (c *collection) Aggregate(ctx context.Context, stages []store.Stage) ([]store.Document, error) {
	docs, err := c.store.scan(ctx, c.name, nil)
	if err != nil {
		return nil, err
	}
	return store.ExecutePipeline(docs, stages, func(name string) ([]store.Document, error) {
		return c.store.scan(ctx, name, nil)
	})
}

func (c *collection) InsertMany(ctx context.Context, docs []store.Document) error {
	table, err := c.store.tableName(c.name)
	if err != nil {
		return err
	}

	for start := 0; start < len(docs); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(docs) {
			end = len(docs)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, d := range docs[start:end] {
			item, err := attributevalue.MarshalMap(d)
			if err != nil {
				return appErrors.NewDatabaseError("failed to marshal document", err)
			}
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		input := &awsdynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{table: requests},
		}
		output, err := c.store.client.BatchWriteItem(ctx, input)
		if err != nil {
			return appErrors.NewDatabaseError("failed to batch write to "+table, err)
		}
		// Retry unprocessed items until DynamoDB accepts the whole chunk.
		for len(output.UnprocessedItems) > 0 {
			output, err = c.store.client.BatchWriteItem(ctx, &awsdynamodb.BatchWriteItemInput{
				RequestItems: output.UnprocessedItems,
			})
			if err != nil {
				return appErrors.NewDatabaseError("failed to batch write to "+table, err)
			}
		}
	}
	return nil
}

func (c *collection) FindOneAndUpdate(ctx context.Context, filter store.Filter, update store.Document) (store.Document, error) {
	table, err := c.store.tableName(c.name)
	if err != nil {
		return nil, err
	}
	target, err := c.findOne(ctx, filter)
	if err != nil || target == nil {
		return nil, err
	}

	var set expression.UpdateBuilder
	for field, value := range update {
		set = set.Set(expression.Name(field), expression.Value(value))
	}
	expr, err := expression.NewBuilder().WithUpdate(set).Build()
	if err != nil {
		return nil, appErrors.NewDatabaseError("failed to build update expression", err)
	}

	key, err := documentKey(target)
	if err != nil {
		return nil, err
	}
	output, err := c.store.client.UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("failed to update item in "+table, err)
	}

	var updated store.Document
	if err := attributevalue.UnmarshalMap(output.Attributes, &updated); err != nil {
		return nil, appErrors.NewDatabaseError("failed to unmarshal updated item", err)
	}
	return updated, nil
}

func (c *collection) FindOneAndDelete(ctx context.Context, filter store.Filter) (store.Document, error) {
	table, err := c.store.tableName(c.name)
	if err != nil {
		return nil, err
	}
	target, err := c.findOne(ctx, filter)
	if err != nil || target == nil {
		return nil, err
	}

	key, err := documentKey(target)
	if err != nil {
		return nil, err
	}
	output, err := c.store.client.DeleteItem(ctx, &awsdynamodb.DeleteItemInput{
		TableName:    aws.String(table),
		Key:          key,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("failed to delete item from "+table, err)
	}
	if len(output.Attributes) == 0 {
		return nil, nil
	}

	var deleted store.Document
	if err := attributevalue.UnmarshalMap(output.Attributes, &deleted); err != nil {
		return nil, appErrors.NewDatabaseError("failed to unmarshal deleted item", err)
	}
	return deleted, nil
}

func (c *collection) findOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	docs, err := c.store.scan(ctx, c.name, filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func documentKey(doc store.Document) (map[string]types.AttributeValue, error) {
	id, ok := doc["id"].(string)
	if !ok || id == "" {
		return nil, appErrors.NewInternalError("document is missing its id attribute")
	}
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}, nil
}

type query struct {
	coll   *collection
	filter store.Filter
	sorts  []sortCriterion
	skip   int
	limit  int
	fields []string
}

type sortCriterion struct {
	field string
	order store.SortOrder
}

// Sort accumulates criteria; a second call adds a secondary sort key.
func (q *query) Sort(field string, order store.SortOrder) store.Query {
	q.sorts = append(q.sorts, sortCriterion{field: field, order: order})
	return q
}

func (q *query) Skip(n int) store.Query {
	q.skip = n
	return q
}

func (q *query) Limit(n int) store.Query {
	q.limit = n
	return q
}

func (q *query) Select(fields ...string) store.Query {
	q.fields = fields
	return q
}

func (q *query) Exec(ctx context.Context) ([]store.Document, error) {
	matched, err := q.coll.store.scan(ctx, q.coll.name, q.filter)
	if err != nil {
		return nil, err
	}

	for i := len(q.sorts) - 1; i >= 0; i-- {
		store.SortDocuments(matched, q.sorts[i].field, q.sorts[i].order)
	}
	if q.skip > 0 {
		if q.skip >= len(matched) {
			return []store.Document{}, nil
		}
		matched = matched[q.skip:]
	}
	if q.limit >= 0 && len(matched) > q.limit {
		matched = matched[:q.limit]
	}
	for i, d := range matched {
		matched[i] = store.SelectFields(d, q.fields)
	}
	return matched, nil
}
