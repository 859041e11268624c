package entity

import (
	"fmt"
	"strings"
)

// UnknownParametersError is returned by bulk visibility updates when some of
// the requested codes have no visibility row for the link.
type UnknownParametersError struct {
	Codes []string
}

func (e *UnknownParametersError) Error() string {
	return fmt.Sprintf("unknown parameters: %s", strings.Join(e.Codes, ", "))
}
