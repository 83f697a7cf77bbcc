package except

// Guarded wraps a single fallible allocation, throwing OutOfMemoryError
// instead of returning a nil/zero result the caller would otherwise have
// to check by hand. Stands in for a "fallible allocator wrapper"
// collaborator, explicitly out of scope beyond this — Go's
// garbage-collected allocator does not fail the way a bare malloc() does,
// so there is no real allocation logic to port, only the throw-on-failure
// contract callers of the original library relied on.
func Guarded[T any](v T, ok bool) T {
	if !ok {
		Throw(OutOfMemoryError, nil)
	}
	return v
}
