package config

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CurrentVersion is the schema version written by `feedlist config init`.
const CurrentVersion = "1.0.0"

// SupportedVersions is the semver constraint a config's version must satisfy.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// ErrIncompatibleVersion is returned for configs outside SupportedVersions.
var ErrIncompatibleVersion = errors.New("incompatible config version")

// CheckVersion validates a config schema version. An empty version is treated
// as CurrentVersion so hand-written configs can omit it.
func CheckVersion(version string) error {
	if version == "" {
		return nil
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid config version %q: %w", version, err)
	}

	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("invalid version constraint: %w", err)
	}

	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrIncompatibleVersion, version, SupportedVersions)
	}
	return nil
}
