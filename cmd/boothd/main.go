// boothd runs the photobooth: session flow, camera, printer and the
// operator web surface, driven by the physical buttons on the device.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kioskworks/go-booth/internal/config"
	"github.com/kioskworks/go-booth/pkg/booth"
)

func main() {
	cfg := parseFlags()

	app, err := booth.New(cfg)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	if err := app.Init(); err != nil {
		log.Fatalf("initialization failed: %v", err)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("runtime error: %v", err)
	}
}

// parseFlags resolves configuration: .env, then booth.yaml, then BOOTH_*
// environment variables, then flags on top.
func parseFlags() config.Config {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "booth.yaml", "Path to the YAML config file")
	camera := flag.String("camera", "", "Camera driver: rpicam, gocv or mock (overrides config)")
	port := flag.String("port", "", "HTTP port for the operator surface (overrides config)")
	photoDir := flag.String("photos", "", "Photo directory (overrides config)")
	noGPIO := flag.Bool("no-gpio", false, "Disable the GPIO button poller")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if *camera != "" {
		cfg.CameraDriver = *camera
	}
	if *port != "" {
		cfg.HTTPPort = *port
	}
	if *photoDir != "" {
		cfg.PhotoDir = *photoDir
	}
	if *noGPIO {
		cfg.GPIO = false
	}
	return cfg
}
