package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jakoblorz/go-combine/kitchensink/packages/shared"
)

func main() {
	exe, err := os.Executable()
	if err != nil {
		log.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", shared.HealthHandler(os.Getenv("BUILD_CONFIGURATION")))
	// static files are deployed next to the binary
	mux.Handle("/", http.FileServer(http.Dir(filepath.Join(filepath.Dir(exe), "static"))))

	addr := shared.ListenAddr(8081)
	log.Printf("www listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
