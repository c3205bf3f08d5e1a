package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"

	"codescout/config"
	"codescout/tools"
	"codescout/web"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("Session configured", "root", cfg.Root)

	registry := tools.DefaultRegistry(cfg)

	addr := os.Getenv("CODESCOUT_ADDR")
	if addr == "" {
		addr = ":8700"
	}

	s := rweb.NewServer(rweb.ServerOptions{
		Address: addr,
		Verbose: true,
	})
	s.Use(rweb.RequestInfo)

	web.SetupRoutes(s, cfg, registry)

	log.Printf("Starting codescout server on %s", addr)
	log.Fatal(s.Run())
}
