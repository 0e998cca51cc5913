package web

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/kioskworks/go-booth/pkg/hub"
	"github.com/kioskworks/go-booth/pkg/input"
	"github.com/kioskworks/go-booth/pkg/printer"
	"github.com/kioskworks/go-booth/pkg/session"
)

// handleStatus returns the controller's current snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	if s.Status == nil {
		return c.JSON(session.Snapshot{})
	}
	return c.JSON(s.Status())
}

// InputRequest is the body of POST /api/input.
type InputRequest struct {
	Action string `json:"action"`
}

// handleInput injects a button press from the frontend. The kiosk touch UI
// and the physical buttons share one action stream.
func (s *Server) handleInput(c *fiber.Ctx) error {
	var req InputRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed body",
		})
	}
	action, err := input.ParseAction(req.Action)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if s.Inject == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "input not wired",
		})
	}
	s.Inject(action)
	return c.JSON(fiber.Map{"action": action.String()})
}

// handleTemplates returns the template catalog.
func (s *Server) handleTemplates(c *fiber.Ctx) error {
	return c.JSON(s.catalog.All())
}

// handleGetPrinter returns the persisted printer configuration.
func (s *Server) handleGetPrinter(c *fiber.Ctx) error {
	cfg, err := s.pstore.Load()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(cfg)
}

// handlePutPrinter updates the printer queue name. An empty name clears the
// configuration; printing then fails fast until a queue is set again.
func (s *Server) handlePutPrinter(c *fiber.Ctx) error {
	var cfg printer.Config
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "malformed body",
		})
	}
	if err := s.pstore.Save(cfg); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(cfg)
}

const streamBoundary = "boothframe"

// handleStream serves the camera preview as MJPEG, the format the kiosk's
// <img> tag can render with no client code.
func (s *Server) handleStream(c *fiber.Ctx) error {
	if s.Frame == nil {
		return fiber.ErrServiceUnavailable
	}
	c.Set(fiber.HeaderContentType, "multipart/x-mixed-replace; boundary="+streamBoundary)
	c.Set(fiber.HeaderCacheControl, "no-cache")

	frame := s.Frame
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		for {
			jpeg, err := frame()
			if err != nil {
				time.Sleep(200 * time.Millisecond)
				continue
			}
			fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", streamBoundary, len(jpeg))
			if _, err := w.Write(jpeg); err != nil {
				return
			}
			fmt.Fprint(w, "\r\n")
			if err := w.Flush(); err != nil {
				return
			}
			time.Sleep(66 * time.Millisecond)
		}
	})
	return nil
}

// handleStatusWS attaches a status subscriber; the hub replays the latest
// snapshot on connect.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	hub.NewClient(s.statusHub, c).Run()
}

// handlePreviewWS attaches a preview frame subscriber.
func (s *Server) handlePreviewWS(c *websocket.Conn) {
	hub.NewClient(s.previewHub, c).Run()
}
