package models

import "errors"

// Sentinel errors shared across the retrieval and generation layers. Lower
// layers wrap these with fmt.Errorf("...: %w", err); callers classify with
// errors.Is.
var (
	// ErrEmbeddingUnavailable means the embedding provider could not be
	// reached or returned an unusable response. Fatal for insertion,
	// recoverable through the exact-search fallback for search.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrQuotaOrAuth marks credential or quota failures so callers can show
	// an actionable remediation message instead of a generic one. Never
	// retried: a second attempt will not succeed.
	ErrQuotaOrAuth = errors.New("provider quota exhausted or authentication failed")

	// ErrCollectionEmpty is returned by search on a collection with no
	// documents. Valid and non-fatal: callers treat it as "no knowledge yet".
	ErrCollectionEmpty = errors.New("collection is empty")

	// ErrSchemaInvalid marks a candidate structured record that failed
	// validation. Always recoverable: the pipeline substitutes a no-data
	// answer.
	ErrSchemaInvalid = errors.New("structured record failed validation")

	// ErrGenerationProvider marks a failed generation call.
	ErrGenerationProvider = errors.New("generation provider failed")

	// ErrModelUnavailable means the configured generation model is
	// deprecated, decommissioned or unknown to the provider. The pipeline
	// reacts by substituting the secondary provider for the rest of the
	// request.
	ErrModelUnavailable = errors.New("generation model unavailable")
)
