package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codalotl/checkdeck/internal/backend"
	"github.com/codalotl/checkdeck/internal/q/semver"
	"github.com/codalotl/checkdeck/internal/simplelogger"
)

// minBackendVersion is the oldest checker service version checkdeck's stream
// protocol is known to work against. Services that predate version reporting
// skip the check entirely.
const minBackendVersion = "0.3.0"

const healthTimeout = 5 * time.Second

type startupValidationError struct {
	BackendURL     string
	Unreachable    error
	BackendVersion string
	MinVersion     string
}

func (e startupValidationError) Error() string {
	var b strings.Builder
	b.WriteString("checkdeck startup validation failed.\n")

	if e.Unreachable != nil {
		b.WriteString("\nCannot reach the checker service at ")
		b.WriteString(e.BackendURL)
		b.WriteString(":\n- ")
		b.WriteString(e.Unreachable.Error())
		b.WriteString("\n")

		b.WriteString("\nTo fix, start the service (python app.py in the playground repo), or point\n")
		b.WriteString("checkdeck at a running one:\n")
		b.WriteString("- flag: --backend URL\n")
		b.WriteString("- env: CHECKDECK_BACKEND\n")
		b.WriteString("- config key: backendurl\n")

		b.WriteString("\nConfig files:\n")
		b.WriteString("- Global: ")
		b.WriteString(globalConfigPath())
		b.WriteString("\n")
		b.WriteString("- Project: .checkdeck.json\n")
	}

	if e.BackendVersion != "" {
		b.WriteString("\nThe checker service at ")
		b.WriteString(e.BackendURL)
		b.WriteString(" reports version ")
		b.WriteString(e.BackendVersion)
		b.WriteString("; checkdeck requires >= ")
		b.WriteString(e.MinVersion)
		b.WriteString(".\n")
		b.WriteString("\nUpdate the service, or point checkdeck at a newer one with --backend.\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func validateStartup(client *backend.Client, cfg Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	info, err := client.Health(ctx)
	if err != nil {
		return startupValidationError{BackendURL: cfg.BackendURL, Unreachable: err}
	}

	// Older services don't report a version; run against them as-is.
	reported := strings.TrimSpace(info.Version)
	if reported == "" {
		return nil
	}
	got, err := semver.Parse(reported)
	if err != nil {
		simplelogger.Log("startup: service version %q is not semver: %v", reported, err)
		return nil
	}
	min, err := semver.Parse(minBackendVersion)
	if err != nil {
		return fmt.Errorf("parse minimum service version: %w", err)
	}
	if got.LessThan(min) {
		return startupValidationError{BackendURL: cfg.BackendURL, BackendVersion: reported, MinVersion: minBackendVersion}
	}
	return nil
}
