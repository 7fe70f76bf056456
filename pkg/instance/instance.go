package instance

import "os"

// GetID identifies the running process in logs. INSTANCE_ID wins, then the
// container hostname.
func GetID() string {
	if id := os.Getenv("INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
