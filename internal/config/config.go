// internal/config/config.go
//
// Process configuration read from the environment (after godotenv has
// loaded .env in main).
//
// Environment variables and defaults:
//   PORT=5175                  LOG_LEVEL=info         LOG_PRETTY=
//   CLIENT_ORIGIN=http://localhost:5173
//   JWT_SECRET=dev_secret_change_me                  TOKEN_TTL_HOURS=24
//   SESSION_TTL_MINUTES=30     DAILY_SALT=local_dev_salt
//   GRID_WIDTH=20  GRID_HEIGHT=20  TICK_MS=100  EDGE_OBSTACLES=true
//   SNAKE_LENGTH=3  NO_OBSTACLE_RADIUS=3  PLACEMENT_ATTEMPTS=1000
//   LAYOUT=classic             LAYOUT_FILE=

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/snake/internal/game"
)

// Config is everything main needs to wire the server.
type Config struct {
	Port         string
	LogLevel     string
	LogPretty    bool
	ClientOrigin string

	JWTSecret  string
	TokenTTL   time.Duration
	SessionTTL time.Duration
	DailySalt  string

	Layout     string // default obstacle layout for new games
	LayoutFile string // replaces the classic layout when set

	// Game holds the grid defaults. StaticObstacles is filled from Layout by
	// the HTTP layer.
	Game game.Config
}

// Load reads the environment and validates the grid defaults.
func Load() (Config, error) {
	c := Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		Layout:       strings.ToLower(getEnv("LAYOUT", "classic")),
		LayoutFile:   os.Getenv("LAYOUT_FILE"),
		Game:         game.DefaultConfig(),
	}
	c.Game.StaticObstacles = nil

	var err error
	if c.LogPretty, err = getBool("LOG_PRETTY", false); err != nil {
		return c, err
	}
	hours, err := getInt("TOKEN_TTL_HOURS", 24)
	if err != nil {
		return c, err
	}
	c.TokenTTL = time.Duration(hours) * time.Hour
	mins, err := getInt("SESSION_TTL_MINUTES", 30)
	if err != nil {
		return c, err
	}
	c.SessionTTL = time.Duration(mins) * time.Minute
	if c.TokenTTL <= 0 || c.SessionTTL <= 0 {
		return c, fmt.Errorf("config: TOKEN_TTL_HOURS and SESSION_TTL_MINUTES must be positive")
	}

	g := &c.Game
	if g.Width, err = getInt("GRID_WIDTH", g.Width); err != nil {
		return c, err
	}
	if g.Height, err = getInt("GRID_HEIGHT", g.Height); err != nil {
		return c, err
	}
	tickMs, err := getInt("TICK_MS", int(g.Tick/time.Millisecond))
	if err != nil {
		return c, err
	}
	g.Tick = time.Duration(tickMs) * time.Millisecond
	if g.EdgeObstacles, err = getBool("EDGE_OBSTACLES", g.EdgeObstacles); err != nil {
		return c, err
	}
	if g.SnakeLength, err = getInt("SNAKE_LENGTH", g.SnakeLength); err != nil {
		return c, err
	}
	if g.NoObstacleRadius, err = getInt("NO_OBSTACLE_RADIUS", g.NoObstacleRadius); err != nil {
		return c, err
	}
	if g.PlacementAttempts, err = getInt("PLACEMENT_ATTEMPTS", g.PlacementAttempts); err != nil {
		return c, err
	}
	if err := g.Validate(); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// SweepInterval is how often idle sessions are checked.
func (c Config) SweepInterval() time.Duration {
	d := c.SessionTTL / 2
	if d > time.Minute {
		d = time.Minute
	}
	if d < time.Second {
		d = time.Second
	}
	return d
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer", k, v)
	}
	return n, nil
}

func getBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("config: %s=%q is not a boolean", k, v)
	}
	return b, nil
}
