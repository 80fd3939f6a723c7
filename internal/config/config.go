// Package config loads mudra's settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ayusman/mudra/internal/gesture"
)

// Dispatcher names.
const (
	DispatcherSpotify = "spotify"
	DispatcherPlugin  = "plugin"
	DispatcherLog     = "log"
)

// Config holds every runtime option.
type Config struct {
	Addr    string
	DataDir string

	// Detection
	CameraIndex    int
	Cooldown       time.Duration
	SwipeThreshold float64
	FPS            int
	StopTimeout    time.Duration

	// Actions
	Dispatcher    string
	PluginDir     string
	PluginName    string
	PluginTimeout time.Duration
	VolumeStep    int

	// Spotify
	SpotifyAPIURL      string
	SpotifyAccessToken string

	// MQTT fan-out, disabled when MQTTBroker is empty.
	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string
	MQTTTopic    string

	TrayEnabled bool
	LogLevel    slog.Level
}

// Load reads the configuration. A .env file in the working directory is
// applied first when present; variables already set in the environment win.
// Malformed values are logged and replaced by their default.
func Load() *Config {
	_ = godotenv.Load()

	dataDir := getEnv("MUDRA_DATA_DIR", defaultDataDir())

	return &Config{
		Addr:    getEnv("MUDRA_ADDR", ":8080"),
		DataDir: dataDir,

		CameraIndex:    getEnvInt("CAMERA_INDEX", 0),
		Cooldown:       getEnvDuration("GESTURE_COOLDOWN", gesture.DefaultCooldown),
		SwipeThreshold: getEnvFloat("SWIPE_THRESHOLD", gesture.DefaultSwipeThreshold),
		FPS:            getEnvInt("DETECTION_FPS", 15),
		StopTimeout:    getEnvDuration("STOP_TIMEOUT", 2*time.Second),

		Dispatcher:    strings.ToLower(getEnv("DISPATCHER", DispatcherSpotify)),
		PluginDir:     getEnv("PLUGIN_DIR", filepath.Join(dataDir, "plugins")),
		PluginName:    getEnv("PLUGIN_NAME", "system-control"),
		PluginTimeout: getEnvDuration("PLUGIN_TIMEOUT", 5*time.Second),
		VolumeStep:    getEnvInt("VOLUME_STEP", 10),

		SpotifyAPIURL:      getEnv("SPOTIFY_API_URL", "https://api.spotify.com/v1"),
		SpotifyAccessToken: getEnv("SPOTIFY_ACCESS_TOKEN", ""),

		MQTTBroker:   getEnv("MQTT_BROKER", ""),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "mudra"),
		MQTTUsername: getEnv("MQTT_USERNAME", ""),
		MQTTPassword: getEnv("MQTT_PASSWORD", ""),
		MQTTTopic:    getEnv("MQTT_TOPIC", "mudra/gesture/{label}"),

		TrayEnabled: getEnvBool("TRAY_ENABLED", false),
		LogLevel:    getEnvLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// Validate reports every invalid option.
func (c *Config) Validate() error {
	var errs []error
	if c.Cooldown <= 0 {
		errs = append(errs, fmt.Errorf("GESTURE_COOLDOWN must be positive, got %s", c.Cooldown))
	}
	if c.SwipeThreshold <= 0 || c.SwipeThreshold >= 1 {
		errs = append(errs, fmt.Errorf("SWIPE_THRESHOLD must be in (0, 1), got %g", c.SwipeThreshold))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("DETECTION_FPS must be positive, got %d", c.FPS))
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, fmt.Errorf("STOP_TIMEOUT must be positive, got %s", c.StopTimeout))
	}
	if c.VolumeStep <= 0 || c.VolumeStep > 100 {
		errs = append(errs, fmt.Errorf("VOLUME_STEP must be in 1..100, got %d", c.VolumeStep))
	}
	switch c.Dispatcher {
	case DispatcherSpotify, DispatcherPlugin, DispatcherLog:
	default:
		errs = append(errs, fmt.Errorf("DISPATCHER must be one of spotify, plugin, log; got %q", c.Dispatcher))
	}
	return errors.Join(errs...)
}

// DBPath returns the sqlite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}

// WebDir returns the static web UI directory.
func (c *Config) WebDir() string {
	return filepath.Join(c.DataDir, "web")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("failed to parse env var as int, using default", "key", key, "error", err)
		return defaultValue
	}
	return intValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("failed to parse env var as float, using default", "key", key, "error", err)
		return defaultValue
	}
	return floatValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("failed to parse env var as bool, using default", "key", key, "error", err)
		return defaultValue
	}
	return boolValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("failed to parse env var as duration, using default", "key", key, "error", err)
		return defaultValue
	}
	return d
}

func getEnvLevel(key string, defaultValue slog.Level) slog.Level {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		slog.Warn("unknown log level, using default", "key", key, "value", value)
		return defaultValue
	}
	return level
}
