package system

import (
	"bufio"
	"os"
	"runtime"
	"strings"

	"github.com/rocm-systems/package-planner/internal/utils/logger"
)

// OsReleaseFile is a variable so tests can point it at a fixture.
var OsReleaseFile = "/etc/os-release"

// OSFamily classifies the host by its package-manager family.
type OSFamily string

const (
	FamilyDebian  OSFamily = "debian"
	FamilyRedHat  OSFamily = "redhat"
	FamilySuse    OSFamily = "suse"
	FamilyLinux   OSFamily = "linux"
	FamilyUnknown OSFamily = "unknown"
)

// ParseFamily maps a user-supplied override string to an OSFamily.
// Unrecognized values come back as FamilyUnknown.
func ParseFamily(s string) OSFamily {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debian", "ubuntu":
		return FamilyDebian
	case "redhat", "rhel", "centos", "fedora":
		return FamilyRedHat
	case "suse", "sles":
		return FamilySuse
	}
	return FamilyUnknown
}

// DetectOSFamily classifies the host into debian/redhat/suse/unknown
// from ID and ID_LIKE in /etc/os-release. When the file is missing it
// falls back to coarse platform detection.
func DetectOSFamily() OSFamily {
	log := logger.Logger()

	info, err := readOsRelease()
	if err != nil {
		log.Warnf("%s not found, falling back to platform detection", OsReleaseFile)
		if runtime.GOOS == "linux" {
			return FamilyLinux
		}
		return FamilyUnknown
	}

	osID := strings.ToLower(info["ID"])
	osLike := strings.ToLower(info["ID_LIKE"])

	switch {
	case strings.Contains(osID, "ubuntu") || strings.Contains(osID, "debian") ||
		strings.Contains(osLike, "debian"):
		return FamilyDebian
	case strings.Contains(osID, "rhel") || strings.Contains(osID, "centos") ||
		strings.Contains(osID, "fedora") || strings.Contains(osLike, "redhat") ||
		strings.Contains(osLike, "fedora"):
		return FamilyRedHat
	case strings.Contains(osID, "suse") || strings.Contains(osID, "sles"):
		return FamilySuse
	}
	return FamilyUnknown
}

func readOsRelease() (map[string]string, error) {
	file, err := os.Open(OsReleaseFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, "=") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		info[parts[0]] = strings.Trim(parts[1], "\"")
	}
	return info, scanner.Err()
}
