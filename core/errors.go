package core

import "errors"

// Sentinel errors returned by the core operations.
var (
	// ErrNoSnapshots means the history log is empty; run a refresh or seed first.
	ErrNoSnapshots = errors.New("no snapshots recorded yet")

	// ErrArtifactNotFound means a derived artifact has not been produced yet.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrNotFound means the requested narrative or entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoNarratives means synthesis produced nothing, which fails the refresh.
	ErrNoNarratives = errors.New("synthesizer returned no narratives")
)
