package loadgen

import "errors"

// Sentinel kinds for load run failures.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrVerification = errors.New("listing verification failed")
)
