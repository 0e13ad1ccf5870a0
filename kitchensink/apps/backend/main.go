package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jakoblorz/go-combine/kitchensink/packages/shared"
)

func main() {
	mux := http.NewServeMux()
	mux.Handle("/health", shared.HealthHandler(os.Getenv("BUILD_CONFIGURATION")))

	mux.HandleFunc("/builds", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "backend built with %s\n", os.Getenv("BUILD_CONFIGURATION"))
	})

	addr := shared.ListenAddr(8080)
	log.Printf("backend listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
