// Package server is the HTTP and websocket front of a world: health and debug endpoints, intent ingestion and the
// event stream.
package server

import (
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/blockshard/ecs"
	"pkg.world.dev/blockshard/intent"
	"pkg.world.dev/blockshard/types"
)

const defaultPort = "4040"

type BlockInfo struct {
	ID   types.BlockID `json:"id"`
	Name string        `json:"name"`
}

type ItemInfo struct {
	Key  types.ItemKey `json:"key"`
	Name string        `json:"name"`
}

type WorldInfo struct {
	Namespace  string      `json:"namespace"`
	Tick       uint64      `json:"tick"`
	Stage      string      `json:"stage"`
	Entities   int         `json:"entities"`
	Components []string    `json:"components"`
	Systems    []string    `json:"systems"`
	Blocks     []BlockInfo `json:"blocks"`
	Items      []ItemInfo  `json:"items"`
}

// EntityView is an entity and the JSON encoding of each of its components, keyed by component name.
type EntityView struct {
	ID         ecs.EntityID               `json:"id"`
	Components map[string]json.RawMessage `json:"components"`
}

// Provider is what the server needs from the world. Every method is safe to call from request goroutines.
type Provider interface {
	IsGameRunning() bool
	Info() WorldInfo
	QueryCQL(text string) ([]EntityView, error)
	SubmitIntent(i intent.Intent)
}

type Server struct {
	provider Provider
	app      *fiber.App
	hub      *EventHub
	port     string
	running  atomic.Bool
}

func New(provider Provider, opts ...Option) *Server {
	s := &Server{
		provider: provider,
		app:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		hub:      NewEventHub(),
		port:     defaultPort,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerHandlers()
	return s
}

func (s *Server) registerHandlers() {
	s.app.Get("/health", s.getHealth)
	s.app.Get("/world", s.getWorld)
	s.app.Get("/debug/query", s.getQuery)
	s.app.Post("/intent", s.postIntent)

	s.app.Use("/intents", upgradeWebSocket)
	s.app.Get("/intents", websocket.New(s.readIntents))
	s.app.Use("/events", upgradeWebSocket)
	s.app.Get("/events", websocket.New(s.hub.serve))
}

// App exposes the fiber app, mostly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Port() string {
	return s.port
}

// Subscribers is the number of open /events connections.
func (s *Server) Subscribers() int {
	return s.hub.Connections()
}

// Serve blocks until the server is shut down.
func (s *Server) Serve() error {
	s.running.Store(true)
	defer s.running.Store(false)
	log.Info().Msgf("serving on port %s", s.port)
	if err := s.app.Listen(":" + s.port); err != nil {
		return eris.Wrap(err, "server stopped")
	}
	return nil
}

func (s *Server) Shutdown() error {
	s.hub.Shutdown()
	if err := s.app.Shutdown(); err != nil {
		return eris.Wrap(err, "failed to shut down server")
	}
	return nil
}

// BroadcastEvent queues event for every /events subscriber. It never blocks.
func (s *Server) BroadcastEvent(event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return eris.Wrap(err, "events must be JSON serializable")
	}
	s.hub.Broadcast(data)
	return nil
}

func upgradeWebSocket(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
