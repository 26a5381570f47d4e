package slogx

// Keys for well-known log attributes.
const (
	ErrorKey = "error"
)
