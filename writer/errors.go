package writer

// Error is a writer-package error, grounded on the teacher's
// flate.Error/bzip2.Error pattern: a plain string type with a
// package-prefixed message, raised by panic and recovered at the single
// public entrypoint.
type Error string

func (e Error) Error() string { return "writer: " + string(e) }
