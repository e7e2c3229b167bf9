package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"vibin_discover/models"
)

// fakeDynamo is an in-memory DynamoAPI that understands the single
// equality key conditions the services issue.
type fakeDynamo struct {
	mu       sync.Mutex
	keys     map[string][]string
	tables   map[string][]map[string]types.AttributeValue
	queryErr error
	putErr   error
	// one-shot failures keyed by "op:table"
	failures map[string]error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		keys: map[string][]string{
			models.CandidatesTable: {"requesterId", "rankKey"},
			models.SwipesTable:     {"userId", "targetUserId"},
			models.MatchesTable:    {"matchId"},
		},
		tables:   map[string][]map[string]types.AttributeValue{},
		failures: map[string]error{},
	}
}

// failNext makes the next op ("get", "put", "delete") on table return err.
func (f *fakeDynamo) failNext(op, table string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op+":"+table] = err
}

func (f *fakeDynamo) takeFailure(op, table string) error {
	err := f.failures[op+":"+table]
	delete(f.failures, op+":"+table)
	return err
}

func attrString(v types.AttributeValue) string {
	if s, ok := v.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) sameKey(table string, a, b map[string]types.AttributeValue) bool {
	for _, k := range f.keys[table] {
		if attrString(a[k]) != attrString(b[k]) {
			return false
		}
	}
	return true
}

func (f *fakeDynamo) find(table string, key map[string]types.AttributeValue) int {
	for i, item := range f.tables[table] {
		if f.sameKey(table, item, key) {
			return i
		}
	}
	return -1
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table := aws.ToString(in.TableName)
	if err := f.takeFailure("get", table); err != nil {
		return nil, err
	}
	if i := f.find(table, in.Key); i >= 0 {
		return &dynamodb.GetItemOutput{Item: f.tables[table][i]}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	table := aws.ToString(in.TableName)
	if err := f.takeFailure("put", table); err != nil {
		return nil, err
	}
	i := f.find(table, in.Item)
	if i >= 0 && strings.HasPrefix(aws.ToString(in.ConditionExpression), "attribute_not_exists") {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	if i >= 0 {
		f.tables[table][i] = in.Item
	} else {
		f.tables[table] = append(f.tables[table], in.Item)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table := aws.ToString(in.TableName)
	if err := f.takeFailure("delete", table); err != nil {
		return nil, err
	}
	i := f.find(table, in.Key)
	if i < 0 {
		return &dynamodb.DeleteItemOutput{}, nil
	}
	old := f.tables[table][i]
	f.tables[table] = append(f.tables[table][:i], f.tables[table][i+1:]...)
	return &dynamodb.DeleteItemOutput{Attributes: old}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	parts := strings.Split(aws.ToString(in.KeyConditionExpression), " = ")
	if len(parts) != 2 {
		return nil, errors.New("unsupported key condition")
	}
	want := attrString(in.ExpressionAttributeValues[parts[1]])

	var items []map[string]types.AttributeValue
	for _, item := range f.tables[aws.ToString(in.TableName)] {
		if attrString(item[parts[0]]) == want {
			items = append(items, item)
		}
	}
	return &dynamodb.QueryOutput{Items: items, Count: int32(len(items))}, nil
}

func (f *fakeDynamo) count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

// seedCandidates stores candidates for requester in rank order.
func (f *fakeDynamo) seedCandidates(requester string, candidates ...models.Candidate) {
	for i, c := range candidates {
		item, err := attributevalue.MarshalMap(c)
		if err != nil {
			panic(err)
		}
		item["requesterId"] = &types.AttributeValueMemberS{Value: requester}
		item["rankKey"] = &types.AttributeValueMemberS{Value: string(rune('a' + i))}
		f.tables[models.CandidatesTable] = append(f.tables[models.CandidatesTable], item)
	}
}
