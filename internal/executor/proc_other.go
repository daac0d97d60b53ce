//go:build !unix

package executor

import "os/exec"

// killGroup relies on the default Cancel and WaitDelay on platforms without
// process groups.
func killGroup(*exec.Cmd) {}
