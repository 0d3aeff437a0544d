package orgmock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nisimpson/orgmap"
)

// DefaultLocalPort is the default port for DynamoDB Local.
const DefaultLocalPort = 8000

// LocalDynamoDB represents a connection to a local DynamoDB instance.
type LocalDynamoDB struct {
	Client   *dynamodb.Client
	Endpoint string
	Port     int
}

// NewLocalClient creates a DynamoDB client configured to connect to a local
// DynamoDB instance. This is useful for integration testing with DynamoDB
// Local.
func NewLocalClient(port int) *dynamodb.Client {
	endpoint := fmt.Sprintf("http://localhost:%d", port)

	cfg := aws.Config{
		Region:      "us-east-1", // DynamoDB Local doesn't care about region
		Credentials: aws.AnonymousCredentials{},
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
}

// NewLocalDynamoDB creates a LocalDynamoDB instance with the specified port.
func NewLocalDynamoDB(port int) *LocalDynamoDB {
	return &LocalDynamoDB{
		Client:   NewLocalClient(port),
		Endpoint: fmt.Sprintf("http://localhost:%d", port),
		Port:     port,
	}
}

// IsAvailable checks if DynamoDB Local is running on the configured port.
func (l *LocalDynamoDB) IsAvailable(ctx context.Context) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", l.Port), 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()

	// Try to list tables to verify it's actually DynamoDB
	_, err = l.Client.ListTables(ctx, &dynamodb.ListTablesInput{})
	return err == nil
}

// CreateIdentityTable creates a table with the orgmap identity schema:
// PK/SK primary key, the GSI1 alternate lookup overlay and the GSI2 type tag
// overlay. GSI2 has a hash key only, since tagged items do not always carry
// a GSI2SK attribute.
func (l *LocalDynamoDB) CreateIdentityTable(ctx context.Context, table *orgmap.Table) error {
	input := &dynamodb.CreateTableInput{
		TableName: aws.String(table.TableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(orgmap.AttributePK), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(orgmap.AttributeSK), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(orgmap.AttributeGSI1PK), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(orgmap.AttributeGSI1SK), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(orgmap.AttributeGSI2PK), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(orgmap.AttributePK), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(orgmap.AttributeSK), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(table.GSI1Name),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String(orgmap.AttributeGSI1PK), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String(orgmap.AttributeGSI1SK), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
				ProvisionedThroughput: &types.ProvisionedThroughput{
					ReadCapacityUnits:  aws.Int64(5),
					WriteCapacityUnits: aws.Int64(5),
				},
			},
			{
				IndexName: aws.String(table.GSI2Name),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String(orgmap.AttributeGSI2PK), KeyType: types.KeyTypeHash},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
				ProvisionedThroughput: &types.ProvisionedThroughput{
					ReadCapacityUnits:  aws.Int64(5),
					WriteCapacityUnits: aws.Int64(5),
				},
			},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(5),
			WriteCapacityUnits: aws.Int64(5),
		},
	}

	_, err := l.Client.CreateTable(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", table.TableName, err)
	}

	return l.WaitForTableActive(ctx, table.TableName, 30*time.Second)
}

// WaitForTableActive waits for a table to become active.
func (l *LocalDynamoDB) WaitForTableActive(ctx context.Context, tableName string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		output, err := l.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(tableName),
		})
		if err != nil {
			return fmt.Errorf("failed to describe table %s: %w", tableName, err)
		}

		if output.Table.TableStatus == types.TableStatusActive {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
			// Continue checking
		}
	}

	return fmt.Errorf("table %s did not become active within %v", tableName, timeout)
}

// DeleteTable deletes a table and waits for it to be fully deleted.
func (l *LocalDynamoDB) DeleteTable(ctx context.Context, tableName string) error {
	_, err := l.Client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		return fmt.Errorf("failed to delete table %s: %w", tableName, err)
	}

	return l.WaitForTableDeleted(ctx, tableName, 30*time.Second)
}

// WaitForTableDeleted waits for a table to be fully deleted.
func (l *LocalDynamoDB) WaitForTableDeleted(ctx context.Context, tableName string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		_, err := l.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(tableName),
		})

		if err != nil {
			var notFoundErr *types.ResourceNotFoundException
			if errors.As(err, &notFoundErr) {
				return nil
			}
			return fmt.Errorf("error checking table deletion status: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
			// Continue checking
		}
	}

	return fmt.Errorf("table %s was not deleted within %v", tableName, timeout)
}

// WithLocalDynamoDB runs a test function with a local DynamoDB instance,
// skipping the test when DynamoDB Local is not available.
func WithLocalDynamoDB(t *testing.T, port int, fn func(local *LocalDynamoDB)) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	local := NewLocalDynamoDB(port)
	if !local.IsAvailable(context.Background()) {
		t.Skipf("DynamoDB Local not available on port %d", port)
	}

	fn(local)
}

// WithIsolatedTable runs a test function against a freshly created identity
// table that is deleted afterward. The table name is unique per invocation.
func (l *LocalDynamoDB) WithIsolatedTable(t *testing.T, fn func(table *orgmap.Table)) {
	ctx := context.Background()
	table := orgmap.NewTable(fmt.Sprintf("identity-test-%d", time.Now().UnixNano()))

	if err := l.CreateIdentityTable(ctx, table); err != nil {
		t.Fatalf("Failed to create test table %s: %v", table.TableName, err)
	}
	defer func() {
		if err := l.DeleteTable(ctx, table.TableName); err != nil {
			t.Errorf("Failed to cleanup table %s: %v", table.TableName, err)
		}
	}()

	fn(table)
}
