package task

import "github.com/rs/xid"

// NewID returns a new globally unique task identifier.
func NewID() string {
	return xid.New().String()
}
