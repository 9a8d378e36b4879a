// Package reembed provides functionality for re-embedding stored artifacts
// with new or updated embedding models.
//
// Artifacts can lack a vector when the embedding service was down at compose
// time, and every artifact needs a fresh vector after an embedding model
// change. This package supports both cases with batch processing, progress
// tracking, retry with exponential backoff, and vector normalization so the
// results stay compatible with dot-product similarity search.
package reembed
