package clickhouse

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkg/errors"
)

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// VersionInfo is a parsed ClickHouse server version.
type VersionInfo struct {
	Major int
	Minor int
	Patch int
	Raw   string
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsAtLeast reports whether v is major.minor or later.
func (v VersionInfo) IsAtLeast(major, minor int) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

// SupportsParameterizedViews reports whether views may declare {name: Type}
// parameters, which arrived in 23.1.
func (v VersionInfo) SupportsParameterizedViews() bool {
	return v.IsAtLeast(23, 1)
}

// Version returns the version of the server conn is connected to.
func Version(ctx context.Context, conn driver.Conn) (*VersionInfo, error) {
	var raw string
	if err := conn.QueryRow(ctx, "SELECT version()").Scan(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to query ClickHouse version")
	}

	version, err := parseVersion(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse ClickHouse version: %s", raw)
	}

	return version, nil
}

// parseVersion accepts the forms ClickHouse reports, such as "24.3.1.2672",
// "22.8.2.11-testing" and "21.10.3.9 (official build)".
func parseVersion(raw string) (*VersionInfo, error) {
	cleaned := strings.TrimSpace(raw)
	if i := strings.Index(cleaned, " "); i != -1 {
		cleaned = cleaned[:i]
	}
	if i := strings.Index(cleaned, "-"); i != -1 {
		cleaned = cleaned[:i]
	}

	matches := versionPattern.FindStringSubmatch(cleaned)
	if matches == nil {
		return nil, errors.Errorf("invalid version format: %s", raw)
	}

	info := &VersionInfo{Raw: raw}
	info.Major, _ = strconv.Atoi(matches[1])
	info.Minor, _ = strconv.Atoi(matches[2])
	if matches[3] != "" {
		info.Patch, _ = strconv.Atoi(matches[3])
	}

	return info, nil
}
