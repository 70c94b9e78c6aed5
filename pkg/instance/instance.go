package instance

import (
	"os"
	"strings"
)

// ID names the running process for logs: the platform dyno, then the
// container hostname, then "local".
func ID() string {
	for _, key := range []string{"DYNO", "HOSTNAME"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	return "local"
}
