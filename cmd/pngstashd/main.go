package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pngstash/internal/server/api"
)

func main() {
	// Parse command line flags
	addr := flag.String("addr", ":3000", "HTTP service address")
	flag.Parse()

	// Create server
	server := api.New()

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Routes
	r.Get("/health", server.HealthCheck)
	r.Mount("/api", server.Routes())

	// Start server
	log.Printf("Starting server on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, r))
}
