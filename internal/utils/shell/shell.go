package shell

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/rocm-systems/package-planner/internal/utils/logger"
)

// ExecCmd executes a command through the shell and returns its
// combined output. It is a package variable so tests can substitute a
// stub executor.
var ExecCmd = execCmd

// getShell returns the preferred shell, falling back to /bin/sh if bash is not available
func getShell() string {
	shells := []string{"/bin/bash", "/usr/bin/bash", "/bin/sh"}
	for _, shell := range shells {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh" // fallback
}

func execCmd(cmdStr string, sudo bool) (string, error) {
	log := logger.Logger()

	fullCmdStr := cmdStr
	if sudo {
		fullCmdStr = "sudo " + cmdStr
	}
	log.Debugf("Exec: [%s]", fullCmdStr)

	cmd := exec.Command(getShell(), "-c", fullCmdStr)
	output, err := cmd.CombinedOutput()
	outputStr := string(output)

	if err != nil {
		if outputStr != "" {
			log.Infof(outputStr)
		}
		return outputStr, fmt.Errorf("failed to exec %s: %w", fullCmdStr, err)
	}
	if outputStr != "" {
		log.Debugf(outputStr)
	}
	return outputStr, nil
}
