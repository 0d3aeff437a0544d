// Package orgmap persists a small multi-tenant identity domain (users,
// organizations, teams and their membership relations) in a single
// wide-column DynamoDB table, accessed exclusively through primary-key
// lookups and two secondary index projections.
//
// # Schema
//
// All entities live in one table; type is discriminated by key prefix, not
// by a schema field:
//
//	| Entity         | PK / SK               | GSI1 (PK/SK)          | GSI2 (PK)          |
//	| ============== | ===================== | ===================== | ================== |
//	| User           | USER#<id> (both)      | EMAIL#<email> (both)  | USERROLE#SUPERUSER |
//	| Email alias    | EMAIL#<email> (both)  | USER#<id> (both)      |                    |
//	| Org            | ORG#<id> (both)       | ORGNAME#<name> (both) |                    |
//	| Org member     | ORG#<id> / USER#<id>  | USER#<id> / ORG#<id>  |                    |
//	| Team           | TEAM#<id> (both)      | TEAMNAME#<name> (both)| TYPE#TEAM          |
//	| Team member    | TEAM#<id> / USER#<id> | USER#<id> / TEAM#<id> |                    |
//
// Root items have PK == SK; membership adjacency items key the parent with PK
// and the member with SK. GSI1 is a generic alternate lookup overlay whose
// meaning depends on the entity type. GSI2 is a coarse type tag; only tagged
// items are visible to it.
//
// # Basic Usage
//
//	cfg, err := orgmap.ParseConfig()
//	store, err := orgmap.Connect(ctx, cfg, logger)
//
//	org := orgmap.NewOrg("Acme")
//	err = store.CreateOrg(ctx, org)
//	found, err := store.GetOrgByName(ctx, "Acme")
//
// A Store can also be built directly from any DynamoDBClient, which is how
// the orgmock package wires in-memory and DynamoDB Local clients for tests:
//
//	store := orgmap.New(client, orgmap.NewTable("identity"))
//
// # Consistency
//
// CreateUser writes the user item and its email alias as two independent
// point writes with no transaction; a reader can observe one before the
// other exists, and a failure on the second write leaves the pair
// inconsistent. Deleting an org or team does not cascade to its membership
// items. Both are contract, not bugs; see the Store method docs.
//
// # Errors
//
// Operations fail with one of four sentinels, checked via errors.Is:
// ErrNotFound (legitimate absence), ErrConflict (unique index returned more
// than one item), ErrUnavailable (the table call itself failed) and
// ErrDecode (stored item has a foreign shape).
package orgmap
