package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/pbrt-scene/config"
	"github.com/df07/pbrt-scene/web/server"
)

func main() {
	// Defaults, config file, PBRTCONV_FLAGS, then command line flags
	cfg, _, err := config.Load("web", os.Args[1:], os.Getenv, func(c *config.Config, fs *flag.FlagSet) {
		c.BindFlags(fs)
		c.BindServerFlags(fs)
	})
	if err != nil {
		log.Printf("Error loading configuration: %v", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	// Create and start web server
	webServer := server.NewServer(cfg.Server.Port, cfg.Server.Root)

	log.Printf("PBRT Scene Web Server")
	log.Printf("POST scenes to http://localhost:%d/api/parse", cfg.Server.Port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
