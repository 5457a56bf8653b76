package server

import (
	"log/slog"

	"github.com/sig-0/tcventanilla/server/config"
)

type Option func(s *Server)

// WithLogger sets the logger used by the rate API server
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithConfig sets the configuration for the rate API server
func WithConfig(c *config.Config) Option {
	return func(s *Server) {
		s.config = c
	}
}
