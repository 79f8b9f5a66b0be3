// internal/domain/trend/detector.go

package trend

import (
	"context"
	"time"
)

// EndpointSelector picks a reachable mirror endpoint
type EndpointSelector interface {
	// SelectEndpoint returns the first candidate that answers its liveness
	// probe, or ErrNoEndpointAvailable
	SelectEndpoint(ctx context.Context) (string, error)
}

// TimelineFetcher retrieves recent posts for one account
type TimelineFetcher interface {
	// FetchTimeline returns posts created at or after cutoff. Account-level
	// failures come back as *AccountFetchError with an empty list.
	FetchTimeline(ctx context.Context, account AccountConfig, cutoff time.Time) ([]Post, error)
}

// Analyzer turns a cycle's timelines into ranked insights
type Analyzer interface {
	// Analyze scores keywords per category and ranks them
	Analyze(snapshot Snapshot, accounts []AccountConfig) Insights
}

// Namer produces the cosmetic project name and ticker for a summary
type Namer interface {
	ProjectName() (name, ticker string)
}

// Publisher hands a finished summary to a presentation collaborator
type Publisher interface {
	Publish(ctx context.Context, summary Summary) error
}
