package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound           = ErrorKind("Not Found")
	InvalidArgument    = ErrorKind("Invalid Argument")
	ArgumentRequired   = ErrorKind("Argument Required")
	ConflictSetting    = ErrorKind("Conflict Setting")
	Unsupported        = ErrorKind("Unsupported")
	Duplicate          = ErrorKind("Duplicate")
	Timeout            = ErrorKind("Timeout")
	Closed             = ErrorKind("Closed")
	InternalError      = ErrorKind("Internal Error")
	SomethingWentWrong = ErrorKind("Something Went Wrong")
	OverflowUint64     = ErrorKind("overflow uint64")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
