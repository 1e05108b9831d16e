// Package config resolves the server's startup configuration: listen
// port, empty-room grace period, and rate-limit bucket idle timeout.
// Grounded on the teacher's internal/config.Load, generalized from a
// fixed struct of required env vars to the CLI-arg-first precedence
// the whiteboard's CLI requires, since a shared-room whiteboard has no
// JWT secret or database URL left to load.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/tanmaysharma2001/collabboard/internal/protocol"
	"github.com/tanmaysharma2001/collabboard/pkg/logger"
)

const (
	defaultPort              = "8080"
	defaultBucketIdleSeconds = 300
)

const usage = `Usage: server [port]

Arguments:
  port    port to listen on (default 8080, or the PORT environment variable)

Options:
  -h, --help    show this help message
`

// Config is the fully resolved startup configuration.
type Config struct {
	Port              string
	EmptyRoomGrace    time.Duration
	BucketIdleSeconds time.Duration
}

// ExitRequest signals that the caller should print Message and exit
// with Code instead of starting the server — used for -h/--help and
// for a fatal CLI argument error.
type ExitRequest struct {
	Code    int
	Message string
}

// Load resolves configuration from CLI args (excluding argv[0]) and
// the environment, optionally populated from a .env file. Port
// resolution precedence is CLI arg > PORT env > default 8080.
func Load(args []string) (*Config, *ExitRequest) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found or error loading it: %v", err)
	}

	for _, a := range args {
		if a == "-h" || a == "--help" {
			return nil, &ExitRequest{Code: 0, Message: usage}
		}
	}

	port := defaultPort
	if v := os.Getenv("PORT"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			logger.Error("invalid PORT environment value %q, falling back to %s", v, defaultPort)
		} else {
			port = v
		}
	}

	if len(args) > 0 {
		if _, err := strconv.Atoi(args[0]); err != nil {
			return nil, &ExitRequest{Code: 1, Message: fmt.Sprintf("invalid port argument %q\n", args[0])}
		}
		port = args[0]
	}

	return &Config{
		Port:              port,
		EmptyRoomGrace:    durationFromEnvSeconds("ROOM_GRACE_SECONDS", protocol.EmptyRoomGraceSeconds),
		BucketIdleSeconds: durationFromEnvSeconds("RATE_LIMIT_IDLE_SECONDS", defaultBucketIdleSeconds),
	}, nil
}

func durationFromEnvSeconds(key string, defaultSeconds int) time.Duration {
	seconds := defaultSeconds
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			seconds = n
		} else {
			logger.Error("invalid %s environment value %q, falling back to %ds", key, v, defaultSeconds)
		}
	}
	return time.Duration(seconds) * time.Second
}
