package xid

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a random identifier such as "tx-3f0c9a5e2b7d4c21a0e4f6b8d9c1e2f3".
func New(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}
