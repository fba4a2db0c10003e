package handler

import (
	"fmt"
	"strings"
)

// NotFoundError reports a lookup of an unregistered table name. The message
// lists the registered names to make typos easy to spot.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("table %q not registered (registry is empty)", e.Name)
	}
	return fmt.Sprintf("table %q not registered (available: %s)", e.Name, strings.Join(e.Available, ", "))
}
