package instance

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

// ID returns the configured process identifier, or a generated
// "<hostname>-<suffix>" value unique to this process. Broadcast listeners use
// it to recognise their own messages.
func ID(configured string) string {
	if id := strings.TrimSpace(configured); id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		host = "kiosk"
	}
	return host + "-" + uuid.NewString()[:8]
}
