package server

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/blockshard/codec"
	"pkg.world.dev/blockshard/intent"
)

type HealthResponse struct {
	IsServerRunning   bool `json:"isServerRunning"`
	IsGameLoopRunning bool `json:"isGameLoopRunning"`
}

func (s *Server) getHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		IsServerRunning:   true,
		IsGameLoopRunning: s.provider.IsGameRunning(),
	})
}

func (s *Server) getWorld(c *fiber.Ctx) error {
	return c.JSON(s.provider.Info())
}

type QueryResponse struct {
	Results []EntityView `json:"results"`
}

func (s *Server) getQuery(c *fiber.Ctx) error {
	text := c.Query("cql")
	if text == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing cql parameter")
	}
	results, err := s.provider.QueryCQL(text)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if results == nil {
		results = []EntityView{}
	}
	return c.JSON(QueryResponse{Results: results})
}

func (s *Server) postIntent(c *fiber.Ctx) error {
	in, err := decodeIntent(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.provider.SubmitIntent(in)
	return c.SendStatus(fiber.StatusAccepted)
}

func decodeIntent(body []byte) (intent.Intent, error) {
	env, err := codec.Decode[intent.Envelope](body)
	if err != nil {
		return nil, err
	}
	return intent.Decode(env)
}

// readIntents queues every intent a client sends until it disconnects. Malformed messages are logged and skipped.
func (s *Server) readIntents(conn *websocket.Conn) {
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		in, err := decodeIntent(msg)
		if err != nil {
			log.Warn().Err(err).Msg("dropping malformed intent")
			continue
		}
		s.provider.SubmitIntent(in)
	}
}
