package main

import (
	"github.com/mrudenko/bookcatalog/internal/config"
	"github.com/mrudenko/bookcatalog/internal/entrypoint"
)

// Version information - set at build time via ldflags
var Version = "dev"

func main() {
	cfg := config.NewConfig()
	entrypoint.Run(cfg, Version)
}
