package controller

// Error is a constant error value
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrModuleAbsent  = Error("module not configured")
	ErrInvalidGrid   = Error("grid width and height must be greater than 1")
	ErrNoTask        = Error("no task set")
	ErrInvalidConfig = Error("invalid config")
	ErrUnknownTarget = Error("unknown target")
)

// configError describes why Validate rejected a config and matches ErrInvalidConfig
type configError string

func (e configError) Error() string {
	return string(ErrInvalidConfig) + ": " + string(e)
}

func (e configError) Is(target error) bool {
	return target == ErrInvalidConfig
}
