package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cgallello/remembered/internal/calendar"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where remembered stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Timezone is the IANA name dates and alerts are computed in. Empty means local.
	Timezone string
	// NotificationHour and NotificationMinute seed the alert time setting
	// until the user changes it.
	NotificationHour   int
	NotificationMinute int
	// Pro marks the installation as entitled to notifications.
	Pro bool
	// WebhookURL, when set, receives fired alerts as JSON.
	WebhookURL    string
	WebhookSecret string
	// RateLimit is the per-client request rate of the API; 0 disables limiting.
	RateLimit float64
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Location resolves Timezone.
func (p *Profile) Location() (*time.Location, error) {
	return calendar.ParseLocation(p.Timezone)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q", p.Driver)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a dsn")
	}

	if p.NotificationHour < 0 || p.NotificationHour > 23 {
		return errors.Errorf("notification hour %d out of range 0-23", p.NotificationHour)
	}
	if p.NotificationMinute < 0 || p.NotificationMinute > 59 {
		return errors.Errorf("notification minute %d out of range 0-59", p.NotificationMinute)
	}
	if _, err := p.Location(); err != nil {
		return errors.Wrapf(err, "invalid timezone %q", p.Timezone)
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "remembered")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/remembered"
		}
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("remembered_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
