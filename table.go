package orgmap

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Table contains DynamoDB table configuration.
type Table struct {
	TableName string // Main table name
	GSI1Name  string // Alternate lookup overlay (email, org name, team name, reverse pointers)
	GSI2Name  string // Type tag overlay (TYPE#TEAM, USERROLE#SUPERUSER)
}

// NewTable creates a new Table with the default index names.
func NewTable(tableName string) *Table {
	return &Table{
		TableName: tableName,
		GSI1Name:  "GSI1",
		GSI2Name:  "GSI2",
	}
}

func keyAttributes(key Key) Item {
	return Item{
		AttributePK: &types.AttributeValueMemberS{Value: key.PK},
		AttributeSK: &types.AttributeValueMemberS{Value: key.SK},
	}
}

// PutInput builds a whole-item upsert request. Last write wins at item
// granularity; there is no partial-attribute merge.
func (t *Table) PutInput(item Item) *dynamodb.PutItemInput {
	return &dynamodb.PutItemInput{
		TableName: aws.String(t.TableName),
		Item:      item,
	}
}

// GetInput builds a point read request for the given key.
func (t *Table) GetInput(key Key) *dynamodb.GetItemInput {
	return &dynamodb.GetItemInput{
		TableName: aws.String(t.TableName),
		Key:       keyAttributes(key),
	}
}

// DeleteInput builds a point delete request for the given key. DynamoDB
// deletes are absence tolerant, which gives Remove*Member its no-op
// semantics for free.
func (t *Table) DeleteInput(key Key) *dynamodb.DeleteItemInput {
	return &dynamodb.DeleteItemInput{
		TableName: aws.String(t.TableName),
		Key:       keyAttributes(key),
	}
}

// QueryInput builds an equality query against one of the index overlays. All
// index lookups in this layer are single-equality on the partition key; no
// range conditions are ever issued.
func (t *Table) QueryInput(indexName, pkAttribute, value string) (*dynamodb.QueryInput, error) {
	keyCondition := expression.Key(pkAttribute).Equal(expression.Value(value))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	return &dynamodb.QueryInput{
		TableName:                 aws.String(t.TableName),
		IndexName:                 aws.String(indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}
