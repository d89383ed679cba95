package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Remote collaborator errors
	ErrTransport   = fmt.Errorf("transport failure")
	ErrDecode      = fmt.Errorf("decode failure")
	ErrApplication = fmt.Errorf("server reported an error")
	ErrNotFound    = fmt.Errorf("not found")
	ErrTimeout     = fmt.Errorf("operation timed out")

	// Local state errors
	ErrEditInProgress = fmt.Errorf("another edit is in progress")
	ErrNoPendingEdit  = fmt.Errorf("no pending edit")
	ErrNoDrag         = fmt.Errorf("no drag in progress")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
