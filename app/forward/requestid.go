package forward

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewRequestID generates a correlation id for one pipeline run.
func NewRequestID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

// ResolveRequestID keeps a non-blank inbound id so correlation survives
// across collaborator hops, generating a fresh one otherwise.
func ResolveRequestID(incoming, prefix string) string {
	if strings.TrimSpace(incoming) != "" {
		return incoming
	}
	return NewRequestID(prefix)
}
