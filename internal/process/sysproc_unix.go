//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// setProcAttr puts the child in its own process group so a terminal
// interrupt reaches teres only; stages are stopped explicitly.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
