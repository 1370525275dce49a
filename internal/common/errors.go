// Package common defines sentinel errors shared by the storage, service and
// presentation layers of the dashboard. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Storage errors. Driver errors are wrapped with one of these by
	// dbx.Classify; the original error stays in the chain.
	ErrConnectivity = errors.New("storage unreachable")
	ErrConstraint   = errors.New("constraint violation")
	ErrQuery        = errors.New("query error")

	// Lookup errors.
	ErrorNotFound = errors.New("not found")

	// Request-level errors.
	ErrorValidation = errors.New("validation error")

	// Export archive is requested but no bucket is configured.
	ErrorStorageDisabled = errors.New("object storage disabled")
)
