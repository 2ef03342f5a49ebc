package cache

import "errors"

// ErrKeyNotFound is returned by stores when a key is absent or expired.
var ErrKeyNotFound = errors.New("cache: key not found")

// Op names used for error context. They mirror the Redis command issued.
const (
	OpGet  = "GET"
	OpSet  = "SET"
	OpScan = "SCAN"
	OpMGet = "MGET"
	OpPing = "PING"
)

// Error wraps a store failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
