package api

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SupportedAPIVersions is the server version range this client knows
// how to talk to.
const SupportedAPIVersions = ">= 1.0.0, < 2.0.0"

// CheckVersion verifies the server reports an API version this client
// supports. Servers that predate version reporting pass the check.
func (c *Client) CheckVersion(ctx context.Context) error {
	health, err := c.Health(ctx)
	if err != nil {
		return err
	}
	if health.Version == "" {
		c.logger.Debug().Msg("server does not report an API version")
		return nil
	}

	v, err := semver.NewVersion(health.Version)
	if err != nil {
		return fmt.Errorf("server reported invalid version %q: %w", health.Version, err)
	}

	constraint, err := semver.NewConstraint(SupportedAPIVersions)
	if err != nil {
		return fmt.Errorf("parse version constraint: %w", err)
	}

	if !constraint.Check(v) {
		return fmt.Errorf("server API version %s is outside the supported range %s", v, SupportedAPIVersions)
	}

	c.logger.Debug().Str("version", v.String()).Msg("server API version supported")
	return nil
}
