// Package source retrieves the reviewable files of a changeset.
package source

import (
	"context"
	"fmt"

	"github.com/perimetric/council/internal/models"
)

// Provider resolves a locator into the files a review job analyzes.
type Provider interface {
	// Name identifies the provider in job targets.
	Name() string

	// Fetch resolves locator into the changeset's files. Failures come back
	// as a *FetchError and are fatal to the job that requested them.
	Fetch(ctx context.Context, locator string) ([]models.SourceFile, error)
}

// FetchError wraps a failed changeset retrieval.
type FetchError struct {
	Provider string
	Locator  string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s changeset %q: %v", e.Provider, e.Locator, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
