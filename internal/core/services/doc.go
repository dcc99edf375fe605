// Package services implements the driving port interfaces.
// Services contain the core business logic: ingest with content-hash
// dedup, domain classification and hybrid retrieval. They orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO.
package services
