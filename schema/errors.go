package schema

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "schema: " + string(e) }
