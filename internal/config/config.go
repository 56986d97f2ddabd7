package config

import (
	"os"

	"go.uber.org/zap"
)

const (
	defaultAppName      = "reverie"
	defaultPlayerSocket = "/tmp/reverie-mpv.sock"
)

// AppConfig holds application configuration
type AppConfig struct {
	logger       *zap.Logger
	appName      string
	backendURL   string
	apiToken     string
	playerSocket string
}

// NewAppConfig creates a new application configuration instance
func NewAppConfig(logger *zap.Logger) *AppConfig {
	// Read from environment variables or use defaults
	backendURL := os.Getenv("REVERIE_BACKEND_URL")
	apiToken := os.Getenv("REVERIE_API_TOKEN")

	socket := os.Getenv("REVERIE_PLAYER_SOCKET")
	if socket == "" {
		socket = defaultPlayerSocket
	}

	appName := os.Getenv("REVERIE_APP_NAME")
	if appName == "" {
		appName = defaultAppName
	}

	logger.Info("Configuration loaded",
		zap.String("appName", appName),
		zap.String("backendURL", backendURL),
		zap.Bool("tokenSet", apiToken != ""),
		zap.String("playerSocket", socket))

	return &AppConfig{
		logger:       logger,
		appName:      appName,
		backendURL:   backendURL,
		apiToken:     apiToken,
		playerSocket: socket,
	}
}

// AppName returns the application name used to tag OS-level resources
func (c *AppConfig) AppName() string {
	return c.appName
}

// BackendURL returns the catalog server base URL
func (c *AppConfig) BackendURL() string {
	return c.backendURL
}

// APIToken returns the catalog server access token
func (c *AppConfig) APIToken() string {
	return c.apiToken
}

// PlayerSocket returns the player IPC socket path
func (c *AppConfig) PlayerSocket() string {
	return c.playerSocket
}
