package main

import "os/exec"

// asExitError extracts the wrapped command's exit status so rpty-slave can
// propagate it as its own, matching how a shell reports a child's exit
// code rather than always exiting 1 on any failure.
func asExitError(err error) (code int, ok bool) {
	if ee, is := err.(*exec.ExitError); is {
		return ee.ExitCode(), true
	}
	return 0, false
}
