package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-sgd-bsdf/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	workers := flag.Int("workers", 0, "Number of estimator workers (0 = auto-detect CPU count)")
	flag.Parse()

	// Create and start web server
	webServer := server.NewServer(*port, *workers)
	defer webServer.Close()

	log.Printf("SGD BSDF Web Server")
	log.Printf("Visit http://localhost:%d/api/health to check the service", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
