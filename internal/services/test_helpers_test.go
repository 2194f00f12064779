package services_test

import (
	"github.com/idp-tracker/idp-api/pkg/logger"
)

func init() {
	// Services log through the global logger; give tests a real one
	_ = logger.Initialize(logger.Config{Level: "error", Environment: "test"})
}

func ptr[T any](v T) *T {
	return &v
}
