package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/facewarden.db"

	// Vault passphrase for payload encryption at rest.
	Passphrase string

	// Recognition policy
	MatchThreshold float64 // cosine similarity; strictly-greater comparison
	DebounceSecs   int     // cooldown between accepted scans per identity
	ShiftStart     string  // "HH:MM" clock cutoff for Late status

	// Admin API
	AdminAPIKey string // empty = admin endpoints open (dev only)

	KnownKiosks []string

	// Heartbeat retention
	HeartbeatRetentionDays int // 0 = keep forever
	PruneIntervalHours     int // how often the pruner runs (default 6)
}

func FromEnv() Config {
	addr := getenvDefault("FACEWARDEN_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("FACEWARDEN_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("FACEWARDEN_DB_PATH", "./data/facewarden.db")

	passphrase := getenvDefault("FACEWARDEN_PASSPHRASE", "master_secret_password")

	threshold := getenvFloat("FACEWARDEN_MATCH_THRESHOLD", 0.5)
	debounceSecs := getenvInt("FACEWARDEN_DEBOUNCE_SECONDS", 60)
	shiftStart := getenvDefault("FACEWARDEN_SHIFT_START", "09:00")

	adminKey := os.Getenv("FACEWARDEN_ADMIN_API_KEY")

	knownKiosks := splitCSV(os.Getenv("FACEWARDEN_KNOWN_KIOSKS"))

	retentionDays := getenvInt("FACEWARDEN_HEARTBEAT_RETENTION_DAYS", 30)
	pruneInterval := getenvInt("FACEWARDEN_PRUNE_INTERVAL_HOURS", 6)

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   dbPath,

		Passphrase: passphrase,

		MatchThreshold: threshold,
		DebounceSecs:   debounceSecs,
		ShiftStart:     shiftStart,

		AdminAPIKey: adminKey,

		KnownKiosks: knownKiosks,

		HeartbeatRetentionDays: retentionDays,
		PruneIntervalHours:     pruneInterval,
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
