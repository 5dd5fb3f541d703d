// Package assetstore abstracts the external store holding snippet
// source text. Two backends satisfy the contract: the asset service's
// HTTP API and an S3-compatible bucket.
package assetstore

import "context"

// WriteOutcome distinguishes a first write from an overwrite.
type WriteOutcome string

const (
	Created WriteOutcome = "created"
	Updated WriteOutcome = "updated"
)

// Store fetches and writes snippet text by path. A missing asset is
// reported as fault.ErrNotFound; any other failure as fault.ErrUpstream.
type Store interface {
	Get(ctx context.Context, path string) (string, error)
	Put(ctx context.Context, path, text string) (WriteOutcome, error)
}
