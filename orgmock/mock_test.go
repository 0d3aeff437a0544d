package orgmock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/nisimpson/orgmap"
	"github.com/nisimpson/orgmap/orgmock"
)

func TestMockClient(t *testing.T) {
	ctx := context.Background()
	table := orgmap.NewTable("identity-test")

	t.Run("expectation is invoked", func(t *testing.T) {
		client := orgmock.NewMockClient(t)

		calls := 0
		client.GetFunc = func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			calls++
			if *params.TableName != "identity-test" {
				t.Errorf("Expected table 'identity-test', got %q", *params.TableName)
			}
			return &dynamodb.GetItemOutput{}, nil
		}

		store := orgmap.New(client, table)
		if _, err := store.GetUserByID(ctx, "u1"); !errors.Is(err, orgmap.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for empty output, got %v", err)
		}
		if calls != 1 {
			t.Errorf("Expected 1 call, got %d", calls)
		}
	})

	t.Run("injected errors propagate", func(t *testing.T) {
		client := orgmock.NewMockClient(t)
		client.PutFunc = func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			return nil, errors.New("throttled")
		}

		store := orgmap.New(client, table)
		err := store.CreateOrg(ctx, &orgmap.Org{ID: "o1", Name: "Acme"})
		if !errors.Is(err, orgmap.ErrUnavailable) {
			t.Errorf("Expected ErrUnavailable, got %v", err)
		}
	})
}
