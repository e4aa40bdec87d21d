// File: task/id.go
// Author: momentics <momentics@gmail.com>

package task

import "github.com/oklog/ulid/v2"

// NewID generates a fresh callback id, unique for the process lifetime.
func NewID() string {
	return ulid.Make().String()
}
