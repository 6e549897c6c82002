package actions

import (
	"context"
	"fmt"
)

// TestConnectivity probes the appliance to verify the credentials and the
// signing clock are good.
type TestConnectivity struct {
	API API
}

func (a *TestConnectivity) Name() string { return "test_connectivity" }

func (a *TestConnectivity) Run(ctx context.Context, _ Params) (any, error) {
	result, err := a.API.TestConnectivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("connectivity test failed: %w", err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("connectivity test did not return any data in the response")
	}
	return result, nil
}
