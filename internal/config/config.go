// Package config loads AirFrame settings from the environment, optionally seeded
// from a .env file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the resolved runtime configuration.
type Config struct {
	Addr        string
	DataDir     string
	DBPath      string
	PluginDir   string
	DownloadDir string

	Camera            bool
	CameraUser        int
	CameraEnvironment int
	MotionThreshold   float64
	RenderFPS         int
	IdleFPS           int
	ActiveFPS         int
	JPEGQuality       int

	Debounce          time.Duration
	Hold              time.Duration
	Sustain           time.Duration
	ResetMotionOnLoss bool
	NoiseSeed         uint64

	PluginTimeout time.Duration
	Tray          bool

	LogLevel  string
	LogFormat string
}

// Load reads .env files into the process environment. With no paths, ".env" is
// used. Variables already set in the environment win. A missing file returns an
// error that callers may ignore.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// FromEnv builds a Config from AIRFRAME_* variables.
func FromEnv() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := GetEnv("AIRFRAME_DATA_DIR", filepath.Join(home, ".airframe"))

	return Config{
		Addr:        GetEnv("AIRFRAME_ADDR", "127.0.0.1:8080"),
		DataDir:     dataDir,
		DBPath:      GetEnv("AIRFRAME_DB", filepath.Join(dataDir, "airframe.db")),
		PluginDir:   GetEnv("AIRFRAME_PLUGIN_DIR", filepath.Join(dataDir, "plugins")),
		DownloadDir: GetEnv("AIRFRAME_DOWNLOAD_DIR", filepath.Join(home, "Downloads")),

		Camera:            GetEnvBool("AIRFRAME_CAMERA", true),
		CameraUser:        GetEnvInt("AIRFRAME_CAMERA_USER", 0),
		CameraEnvironment: GetEnvInt("AIRFRAME_CAMERA_ENVIRONMENT", 1),
		MotionThreshold:   GetEnvFloat("AIRFRAME_MOTION_THRESHOLD", 1.0),
		RenderFPS:         GetEnvInt("AIRFRAME_RENDER_FPS", 15),
		IdleFPS:           GetEnvInt("AIRFRAME_IDLE_FPS", 5),
		ActiveFPS:         GetEnvInt("AIRFRAME_ACTIVE_FPS", 15),
		JPEGQuality:       GetEnvInt("AIRFRAME_JPEG_QUALITY", 90),

		Debounce:          GetEnvMillis("AIRFRAME_DEBOUNCE_MS", 100*time.Millisecond),
		Hold:              GetEnvMillis("AIRFRAME_HOLD_MS", 1000*time.Millisecond),
		Sustain:           GetEnvMillis("AIRFRAME_SUSTAIN_MS", 2000*time.Millisecond),
		ResetMotionOnLoss: GetEnvBool("AIRFRAME_RESET_MOTION_ON_LOSS", false),
		NoiseSeed:         uint64(GetEnvInt("AIRFRAME_NOISE_SEED", 0)),

		PluginTimeout: GetEnvMillis("AIRFRAME_PLUGIN_TIMEOUT_MS", 5*time.Second),
		Tray:          GetEnvBool("AIRFRAME_TRAY", false),

		LogLevel:  GetEnv("AIRFRAME_LOG_LEVEL", "info"),
		LogFormat: GetEnv("AIRFRAME_LOG_FORMAT", "text"),
	}
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvFloat is GetEnvInt for floating point values.
func GetEnvFloat(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}

// GetEnvBool accepts the forms understood by strconv.ParseBool plus "yes"/"no".
func GetEnvBool(key string, fallback bool) bool {
	s := strings.ToLower(os.Getenv(key))
	switch s {
	case "":
		return fallback
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// GetEnvMillis reads a whole number of milliseconds.
func GetEnvMillis(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return fallback
}
