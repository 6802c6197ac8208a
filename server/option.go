package server

import "github.com/gofiber/fiber/v2/middleware/cors"

type Option func(s *Server)

// WithPort sets the listen port. The default is 4040.
func WithPort(port string) Option {
	return func(s *Server) {
		s.port = port
	}
}

func WithCORS() Option {
	return func(s *Server) {
		s.app.Use(cors.New())
	}
}
