// Package store persists the bearer token and its absolute expiry between
// process runs. The durable shape is two string entries, the opaque token
// and the expiry as milliseconds-since-epoch, matching what the web client
// kept in local storage. Implementations: in-memory (tests, ephemeral runs),
// JSON file (default for desktop/embedded clients), and Redis for kiosk
// deployments that already run a local instance.
package store
