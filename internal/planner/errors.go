package planner

import (
	"errors"
	"fmt"
)

// Planning failures. Callers match with errors.Is; the wrapped detail text is
// safe to surface to operators.
var (
	// ErrSiteInaccessible means the probe reported the site down; no range is
	// proposed and retrying is the prober's business, not the planner's.
	ErrSiteInaccessible = errors.New("site is not accessible")

	// ErrInvalidPolicy means the policy cannot produce a meaningful plan.
	ErrInvalidPolicy = errors.New("invalid planner policy")

	// ErrSiteShrunk means the site's page count fell past local coverage by
	// more than the configured threshold. The planner refuses to extend the
	// range; the drift detector classifies what happened.
	ErrSiteShrunk = errors.New("site page count shrank past local coverage")
)

func invalidPolicy(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidPolicy, reason)
}
