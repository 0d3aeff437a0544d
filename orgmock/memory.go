package orgmock

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nisimpson/orgmap"
)

// MemoryClient is an in-memory DynamoDBAPI implementation that honors the
// point reads, point writes, deletes and single-equality index queries
// issued by orgmap.Store. It is not a general DynamoDB emulation: queries
// match the single expression attribute value against the GSI1PK or GSI2PK
// attribute selected by the request's index name.
type MemoryClient struct {
	mu    sync.Mutex
	table *orgmap.Table
	items map[orgmap.Key]orgmap.Item
}

// Ensure MemoryClient implements DynamoDBAPI
var _ DynamoDBAPI = (*MemoryClient)(nil)

// NewMemoryClient creates an empty in-memory table with the given
// configuration.
func NewMemoryClient(table *orgmap.Table) *MemoryClient {
	return &MemoryClient{
		table: table,
		items: make(map[orgmap.Key]orgmap.Item),
	}
}

// Len returns the number of stored items.
func (m *MemoryClient) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func itemKey(attrs orgmap.Item) (orgmap.Key, bool) {
	pk, pkok := attrs[orgmap.AttributePK].(*types.AttributeValueMemberS)
	sk, skok := attrs[orgmap.AttributeSK].(*types.AttributeValueMemberS)
	if !pkok || !skok {
		return orgmap.Key{}, false
	}
	return orgmap.Key{PK: pk.Value, SK: sk.Value}, true
}

// PutItem stores a copy of the item, replacing any existing item under the
// same key.
func (m *MemoryClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	key, ok := itemKey(params.Item)
	if !ok {
		return nil, &types.ResourceNotFoundException{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = maps.Clone(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// GetItem returns the item under the requested key, or an empty output when
// absent.
func (m *MemoryClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	key, ok := itemKey(params.Key)
	if !ok {
		return nil, &types.ResourceNotFoundException{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if item, exists := m.items[key]; exists {
		return &dynamodb.GetItemOutput{Item: maps.Clone(item)}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

// DeleteItem removes the item under the requested key; deleting an absent
// key succeeds, matching DynamoDB.
func (m *MemoryClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	key, ok := itemKey(params.Key)
	if !ok {
		return nil, &types.ResourceNotFoundException{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

// Query returns all items whose index partition key attribute equals the
// single expression attribute value in the request. The index name selects
// which attribute is matched.
func (m *MemoryClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	var attribute string
	switch {
	case params.IndexName != nil && *params.IndexName == m.table.GSI1Name:
		attribute = orgmap.AttributeGSI1PK
	case params.IndexName != nil && *params.IndexName == m.table.GSI2Name:
		attribute = orgmap.AttributeGSI2PK
	default:
		attribute = orgmap.AttributePK
	}

	var want string
	for _, value := range params.ExpressionAttributeValues {
		if s, ok := value.(*types.AttributeValueMemberS); ok {
			want = s.Value
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []orgmap.Item
	for _, item := range m.items {
		if s, ok := item[attribute].(*types.AttributeValueMemberS); ok && s.Value == want {
			matches = append(matches, maps.Clone(item))
		}
	}

	// Stable result order for tests.
	sort.Slice(matches, func(i, j int) bool {
		a, _ := itemKey(matches[i])
		b, _ := itemKey(matches[j])
		if a.PK != b.PK {
			return a.PK < b.PK
		}
		return a.SK < b.SK
	})

	return &dynamodb.QueryOutput{
		Items: matches,
		Count: int32(len(matches)),
	}, nil
}

// ListTables reports the single configured table.
func (m *MemoryClient) ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	return &dynamodb.ListTablesOutput{TableNames: []string{m.table.TableName}}, nil
}
