// Package token generates opaque identifiers for OAuth state parameters
// and sync batch tracking.
package token

import googleuuid "github.com/google/uuid"

// NewState returns a fresh unguessable OAuth state parameter.
func NewState() string {
	return googleuuid.NewString()
}

// NewBatchID returns an identifier for a sync batch.
func NewBatchID() string {
	return googleuuid.NewString()
}

// IsValid checks if a string is a well-formed identifier.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
