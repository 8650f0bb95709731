package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"canvas-sync/internal/sftpclient"
	"canvas-sync/internal/sync"
)

type Config struct {
	// Canvas
	Token  string
	Domain string

	// Mirror
	OutDir     string
	Mode       sync.Mode
	AllCourses bool
	Workers    int

	// Transport
	MaxAttempts int
	Timeout     time.Duration

	// Output
	ReportCSV string
	LogLevel  string

	// SFTP replication (optional)
	SFTP sftpclient.Config
}

// Load reads the environment. Flags are applied on top by the caller.
// An unknown CANVAS_MODE is kept raw so Validate can reject it.
func Load() Config {
	mode, err := sync.ParseMode(os.Getenv("CANVAS_MODE"))
	if err != nil {
		mode = sync.Mode(os.Getenv("CANVAS_MODE"))
	}

	return Config{
		// Canvas
		Token:  os.Getenv("CANVAS_TOKEN"),
		Domain: os.Getenv("CANVAS_DOMAIN"),

		// Mirror
		OutDir:     getenv("CANVAS_OUT_DIR", "."),
		Mode:       mode,
		AllCourses: getenvBool("CANVAS_ALL_COURSES", false),
		Workers:    getenvInt("CANVAS_WORKERS", 1),

		// Transport
		MaxAttempts: getenvInt("CANVAS_MAX_ATTEMPTS", 3),
		Timeout:     getenvDuration("CANVAS_TIMEOUT", 2*time.Minute),

		// Output
		ReportCSV: os.Getenv("CANVAS_REPORT_CSV"),
		LogLevel:  getenv("LOG_LEVEL", "info"),

		// SFTP
		SFTP: sftpclient.Config{
			Host:           os.Getenv("SFTP_HOST"),
			Port:           getenvInt("SFTP_PORT", 22),
			User:           os.Getenv("SFTP_USER"),
			Pass:           os.Getenv("SFTP_PASS"),
			RemoteDir:      getenv("SFTP_REMOTE_DIR", "/"),
			KnownHostsFile: os.Getenv("SFTP_KNOWN_HOSTS"),
		},
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Token) == "" {
		errs = append(errs, errors.New("missing token (CANVAS_TOKEN or TOKEN argument)"))
	}
	if strings.TrimSpace(c.Domain) == "" {
		errs = append(errs, errors.New("missing domain (CANVAS_DOMAIN or DOMAIN argument)"))
	}
	if _, err := sync.ParseMode(string(c.Mode)); err != nil {
		errs = append(errs, err)
	}
	if c.OutDir == "" {
		errs = append(errs, errors.New("missing output directory"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max attempts must be >= 1, got %d", c.MaxAttempts))
	}
	if c.SFTP.Enabled() && (c.SFTP.User == "" || c.SFTP.Pass == "") {
		errs = append(errs, sftpclient.ErrNotConfigured)
	}
	return errors.Join(errs...)
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return v
}

func getenvBool(k string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return v
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return v
}
