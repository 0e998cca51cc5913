// Package web provides the booth's operator surface: a small HTTP API for
// status and input injection, the live preview stream and websocket status
// push for the kiosk frontend.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/kioskworks/go-booth/internal/log"
	"github.com/kioskworks/go-booth/pkg/hub"
	"github.com/kioskworks/go-booth/pkg/input"
	"github.com/kioskworks/go-booth/pkg/printer"
	"github.com/kioskworks/go-booth/pkg/session"
	"github.com/kioskworks/go-booth/pkg/template"
)

// Server is the booth's web surface.
type Server struct {
	app  *fiber.App
	port string

	// Status returns the controller's current snapshot
	Status func() session.Snapshot

	// Inject feeds an operator action into the input stream
	Inject func(input.Action)

	// Frame returns the latest preview frame as JPEG
	Frame func() ([]byte, error)

	catalog *template.Catalog
	pstore  *printer.Store

	// Hubs for websocket broadcast
	statusHub  *hub.Hub
	previewHub *hub.Hub
}

// NewServer builds the server and its routes. The callbacks must be set
// before Start.
func NewServer(port, photoDir string, catalog *template.Catalog, pstore *printer.Store) *Server {
	s := &Server{
		port:       port,
		catalog:    catalog,
		pstore:     pstore,
		statusHub:  hub.New("status"),
		previewHub: hub.New("preview"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Booth",
		DisableStartupMessage: true,
	})

	// CORS for a frontend served off-device during development
	app.Use(cors.New())

	// Kiosk frontend assets and the captured photos
	app.Static("/", "./public")
	app.Static("/photo", photoDir)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/input", s.handleInput)
	api.Get("/templates", s.handleTemplates)
	api.Get("/printer", s.handleGetPrinter)
	api.Put("/printer", s.handlePutPrinter)

	app.Get("/stream", s.handleStream)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))

	s.app = app
	return s
}

// Start runs the hubs and listens. Blocks until Shutdown.
func (s *Server) Start() error {
	log.Info("web surface listening", "port", s.port)
	go s.statusHub.Run()
	go s.previewHub.Run()
	return s.app.Listen(":" + s.port)
}

// PushStatus broadcasts a controller snapshot to status subscribers.
// Wired as the controller's change listener.
func (s *Server) PushStatus(snap session.Snapshot) {
	if err := s.statusHub.BroadcastJSON(snap); err != nil {
		log.Warn("status broadcast failed", "err", err)
	}
}

// PushFrame broadcasts a preview frame to preview subscribers.
func (s *Server) PushFrame(jpeg []byte) {
	s.previewHub.BroadcastBinary(jpeg)
}

// PreviewClientCount reports how many preview sockets are attached, so the
// frame pump can idle when nobody is watching.
func (s *Server) PreviewClientCount() int {
	return s.previewHub.ClientCount()
}

// App exposes the underlying fiber app for in-process request tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
