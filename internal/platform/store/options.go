package store

import "github.com/SamMeown/ETL/internal/platform/logger"

// Option adjusts the Store while Open assembles it
type Option func(*Store) error

// WithLogger routes backend logging (SQL tracing included) through log
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}
