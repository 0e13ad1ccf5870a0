package shared

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

// HealthHandler reports the service as healthy along with the build
// configuration it was started with.
func HealthHandler(configuration string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":        "healthy",
			"configuration": configuration,
		})
	}
}

// ListenAddr returns the address from PORT, or the fallback port.
func ListenAddr(fallback int) string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return fmt.Sprintf(":%d", fallback)
}
