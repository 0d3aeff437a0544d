// Package orgmock provides test doubles and integration helpers for the
// orgmap identity store.
//
// Three levels of fidelity are available:
//
//   - MockClient: an expectation-based mock where each DynamoDB operation is
//     a settable function field. Operations without an expectation fail the
//     test. Use this to script error paths.
//   - MemoryClient: an in-memory table honoring the point requests and
//     single-equality index queries orgmap issues. Use this for behavioral
//     tests without a running DynamoDB.
//   - LocalDynamoDB: helpers for DynamoDB Local, including creation of the
//     identity table schema (PK/SK plus the GSI1 and GSI2 overlays) and
//     isolated per-test tables. Tests skip when no local instance is
//     running.
//
// The Seeder writes fixture data through the same store operations
// production code uses, either programmatically or from a JSON document:
//
//	seeder := orgmock.NewSeeder(client, table)
//	n, err := seeder.SeedFromJSON(ctx, strings.NewReader(`[
//	  {"type": "org", "id": "o1", "attributes": {"name": "Acme", "active": true}},
//	  {"type": "membership", "attributes": {"org": "o1", "user": "u1"}}
//	]`))
package orgmock
