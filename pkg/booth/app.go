// Package booth assembles the daemon: camera, session controller, printer,
// physical buttons and the web surface, wired to one another.
package booth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kioskworks/go-booth/internal/config"
	"github.com/kioskworks/go-booth/internal/log"
	"github.com/kioskworks/go-booth/pkg/capture"
	"github.com/kioskworks/go-booth/pkg/input"
	"github.com/kioskworks/go-booth/pkg/printer"
	"github.com/kioskworks/go-booth/pkg/session"
	"github.com/kioskworks/go-booth/pkg/template"
	"github.com/kioskworks/go-booth/pkg/web"
)

// App is the assembled booth daemon.
type App struct {
	cfg config.Config

	catalog      *template.Catalog
	camera       capture.Camera
	orchestrator *capture.Orchestrator
	dispatcher   *printer.Dispatcher
	pstore       *printer.Store
	controller   *session.Controller
	source       *input.Source
	poller       *input.Poller
	server       *web.Server
}

// New validates the configuration and builds the app skeleton.
func New(cfg config.Config) (*App, error) {
	if cfg.PhotoDir == "" {
		return nil, fmt.Errorf("booth: photo_dir is required")
	}
	return &App{cfg: cfg}, nil
}

// Init loads the catalog, opens the camera and wires every component.
func (a *App) Init() error {
	log.Init(a.cfg.LogLevel)

	if err := os.MkdirAll(a.cfg.PhotoDir, 0o755); err != nil {
		return fmt.Errorf("booth: photo dir: %w", err)
	}

	catalog, err := template.LoadCatalog(a.cfg.TemplatesPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("template catalog unusable, using built-in", "path", a.cfg.TemplatesPath, "err", err)
		}
		catalog = template.DefaultCatalog()
	}
	a.catalog = catalog
	log.Info("template catalog loaded", "templates", catalog.Len())

	cam, err := openCamera(a.cfg)
	if err != nil {
		return err
	}
	a.camera = cam
	a.orchestrator = capture.NewOrchestrator(cam, a.cfg.PhotoDir)

	a.pstore = printer.NewStore(a.cfg.PhotoDir)
	a.dispatcher = printer.NewDispatcher(a.cfg.PhotoDir)

	a.controller = session.New(session.Config{
		CountdownSeconds: a.cfg.CountdownSeconds,
		QuickReview:      a.cfg.QuickReview(),
		Inactivity:       a.cfg.Inactivity(),
		CaptureRetries:   a.cfg.CaptureRetries,
	}, catalog, a.orchestrator, a.dispatcher, a.pstore)

	a.source = input.NewSource()
	if a.cfg.GPIO {
		a.poller = input.NewPoller(input.NewSysfsPins(), a.source, a.cfg.LongPress())
	}

	a.server = web.NewServer(a.cfg.HTTPPort, a.cfg.PhotoDir, catalog, a.pstore)
	a.server.Status = a.controller.Snapshot
	a.server.Inject = a.source.Inject
	a.server.Frame = a.orchestrator.Frame
	a.controller.OnChange(a.server.PushStatus)

	return nil
}

// openCamera picks the capture driver. "mock" keeps the full flow runnable
// on a dev machine with neither a Pi camera nor a webcam.
func openCamera(cfg config.Config) (capture.Camera, error) {
	switch cfg.CameraDriver {
	case "rpicam":
		return capture.NewRpicam(capture.RpicamConfig{
			Width:  cfg.CaptureW,
			Height: cfg.CaptureH,
		}), nil
	case "gocv":
		return capture.NewWebcam(cfg.CameraDevice, cfg.CaptureW, cfg.CaptureH)
	case "mock":
		return capture.NewMock(), nil
	default:
		return nil, fmt.Errorf("booth: unknown camera driver %q", cfg.CameraDriver)
	}
}

// Run starts every component and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.StartPreview(); err != nil {
		log.Warn("preview unavailable at startup", "err", err)
	}

	go a.controller.Run(ctx)
	go a.pumpActions(ctx)
	go a.pumpFrames(ctx)
	if a.poller != nil {
		go a.poller.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return fmt.Errorf("booth: web surface: %w", err)
	}
}

// pumpActions forwards operator actions into the controller's event queue.
func (a *App) pumpActions(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case action := <-a.source.Actions():
			a.controller.Dispatch(session.FromAction(action))
		}
	}
}

// pumpFrames pushes preview frames to websocket subscribers. The MJPEG
// stream pulls frames itself; this feeds only the socket path, and idles
// when nobody is connected.
func (a *App) pumpFrames(ctx context.Context) {
	ticker := time.NewTicker(66 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a.server.PreviewClientCount() == 0 {
				continue
			}
			frame, err := a.orchestrator.Frame()
			if err != nil {
				continue
			}
			a.server.PushFrame(frame)
		}
	}
}

// Shutdown releases the camera and stops the web server.
func (a *App) Shutdown() {
	if a.server != nil {
		if err := a.server.Shutdown(); err != nil {
			log.Warn("web shutdown", "err", err)
		}
	}
	if a.camera != nil {
		if err := a.camera.StopPreview(); err != nil {
			log.Debug("stop preview on shutdown", "err", err)
		}
		if err := a.camera.Close(); err != nil {
			log.Warn("camera close", "err", err)
		}
	}
	log.Info("booth stopped")
}
