package config

import (
	"os"
	"testing"

	"github.com/zhubert/feedback-core/logger"
)

func TestMain(m *testing.M) {
	// Disable logging during tests to avoid creating log files in the home dir
	logger.Reset()
	logger.Init(os.DevNull)

	code := m.Run()

	logger.Reset()
	os.Exit(code)
}
