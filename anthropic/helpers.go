// helpers.go - IDs und kleine Hilfen
package anthropic

import (
	"strings"

	"github.com/google/uuid"
)

// generateID erzeugt eine ID der Form prefix_<24 hex>
func generateID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

// GenerateMessageID erzeugt eine Nachrichten-ID msg_<24 hex>
func GenerateMessageID() string {
	return generateID("msg")
}

func ptr(s string) *string {
	return &s
}
