package client

// Response is the outcome of one request. Value is meaningful only when Err is nil.
type Response[T any] struct {
	Value   T
	RawBody string
	Err     *Error
}

// OK reports whether the request succeeded.
func (r Response[T]) OK() bool { return r.Err == nil }

// Result converts the envelope to Go's (value, error) form.
func (r Response[T]) Result() (T, error) {
	if r.Err != nil {
		var zero T
		return zero, r.Err
	}
	return r.Value, nil
}
