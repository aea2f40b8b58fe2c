package installer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/rocm-systems/package-planner/internal/planner"
	"github.com/rocm-systems/package-planner/internal/utils/logger"
	"github.com/rocm-systems/package-planner/internal/utils/shell"
	"github.com/rocm-systems/package-planner/internal/utils/system"
)

// installCommand returns the package-manager invocation for one
// artifact under the given OS family.
func installCommand(family system.OSFamily, path string) (string, bool) {
	switch family {
	case system.FamilyDebian:
		return "dpkg -i " + path, true
	case system.FamilyRedHat:
		return "rpm -ivh --replacepkgs " + path, true
	case system.FamilySuse:
		return "zypper --non-interactive install --replacepkgs " + path, true
	}
	return "", false
}

// Install executes a plan path-by-path in order. A failing package is
// logged and the rest of the plan continues: one bad artifact must not
// block an otherwise valid ordered install. On Debian a dependency
// fixup pass runs after the loop.
func Install(plan *planner.Plan) error {
	log := logger.Logger()

	if len(plan.Artifacts) == 0 {
		log.Warnf("no packages to install")
		return nil
	}
	log.Infof("installing %d packages for OS family %s", len(plan.Artifacts), plan.OSFamily)

	bar := progressbar.NewOptions(len(plan.Artifacts),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetDescription("installing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	failed := 0
	for _, pkgPath := range plan.Artifacts {
		name := filepath.Base(pkgPath)
		bar.Describe(fmt.Sprintf("installing %s", name))

		cmdStr, ok := installCommand(plan.OSFamily, pkgPath)
		if !ok {
			log.Errorf("unsupported OS family %q for package %s", plan.OSFamily, pkgPath)
			bar.Add(1)
			continue
		}

		if _, err := shell.ExecCmd(cmdStr, true); err != nil {
			log.Errorf("failed to install %s: %v", name, err)
			failed++
		} else {
			log.Infof("installed %s", name)
		}
		bar.Add(1)
	}
	bar.Finish()

	if plan.OSFamily == system.FamilyDebian {
		if _, err := shell.ExecCmd("apt-get -f install -y", true); err != nil {
			log.Errorf("dependency fixup failed: %v", err)
		}
	}

	if failed > 0 {
		log.Warnf("%d of %d packages failed to install", failed, len(plan.Artifacts))
	}
	return nil
}
