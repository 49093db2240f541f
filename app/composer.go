package app

import "os/exec"

// CaptionEditor hands caption text to an external editor and reads it back.
// The command is returned rather than run so the TUI can suspend the terminal.
type CaptionEditor interface {
	Cmd(content string) (*exec.Cmd, string, error)
	ReadContent(path string) (string, error)
}
