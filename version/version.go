// Package version parses interface version strings used during
// connection negotiation with the host.
package version

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/c360/edgeipc/errors"
)

// DefaultSDKVersion is assumed for SDKs that predate version reporting.
const DefaultSDKVersion = "1.0"

var tagPattern = regexp.MustCompile(`^(\d+)\.(\d+)`)

// ErrIncompatible reports an SDK interface version the host cannot serve.
var ErrIncompatible = fmt.Errorf("incompatible interface version")

// Tag is the (major, minor) compatibility pair of a version string.
type Tag struct {
	Major int
	Minor int
}

// Parse extracts the leading "<major>.<minor>" of s. Anything after the
// minor number (patch, pre-release suffix) is ignored.
func Parse(s string) (Tag, error) {
	m := tagPattern.FindStringSubmatch(s)
	if m == nil {
		return Tag{}, errors.Format("version", "Parse", "no leading major.minor in %q", s)
	}

	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Tag{}, errors.Format("version", "Parse", "major out of range in %q", s)
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Tag{}, errors.Format("version", "Parse", "minor out of range in %q", s)
	}

	return Tag{Major: major, Minor: minor}, nil
}

// String returns "major.minor".
func (t Tag) String() string {
	return fmt.Sprintf("%d.%d", t.Major, t.Minor)
}

// CompatibleWith reports whether an SDK at t can talk to a host whose
// highest supported interface is max. Majors must match and the SDK minor
// must not exceed the host's.
func (t Tag) CompatibleWith(max Tag) bool {
	return t.Major == max.Major && t.Minor <= max.Minor
}

// CheckCompatible parses both versions and checks compatibility. An empty
// sdk version is treated as DefaultSDKVersion.
func CheckCompatible(sdk, max string) error {
	if sdk == "" {
		sdk = DefaultSDKVersion
	}

	sdkTag, err := Parse(sdk)
	if err != nil {
		return err
	}
	maxTag, err := Parse(max)
	if err != nil {
		return err
	}

	if !sdkTag.CompatibleWith(maxTag) {
		return errors.WrapInvalid(
			fmt.Errorf("%w: sdk %s, host max %s", ErrIncompatible, sdkTag, maxTag),
			"version", "CheckCompatible", "compare interface versions")
	}
	return nil
}
