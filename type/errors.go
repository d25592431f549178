package septypes

import "github.com/pkg/errors"

var (
	// ErrInvalidConfiguration is returned before any pixel work starts
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrTraceFailure marks a separation whose trace produced no ink paths
	ErrTraceFailure = errors.New("trace produced no paths")
)

// InvalidConfig wraps ErrInvalidConfiguration with a reason
func InvalidConfig(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfiguration, format, args...)
}
