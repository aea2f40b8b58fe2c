package artifact

import (
	"fmt"
	"os"
	"strings"

	"github.com/sassoftware/go-rpmutils"
)

// InspectRPM reads the header of a built .rpm artifact and returns its
// name-epoch-version-release-arch identification. Used to cross-check
// matched files against the logical package that claimed them.
func InspectRPM(path string) (string, error) {
	if !strings.HasSuffix(path, ".rpm") {
		return "", fmt.Errorf("not an rpm artifact: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening rpm %s: %w", path, err)
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return "", fmt.Errorf("reading rpm header of %s: %w", path, err)
	}
	nevra, err := rpm.Header.GetNEVRA()
	if err != nil {
		return "", fmt.Errorf("reading rpm nevra of %s: %w", path, err)
	}
	return nevra.String(), nil
}
