package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// EnvEditor prepares an external editor command using $EDITOR (fallback: "vi").
// It does not run the editor itself; callers use tea.ExecProcess with the returned
// *exec.Cmd so Bubble Tea suspends raw terminal mode.
type EnvEditor struct{}

// NewEnvEditor creates an EnvEditor.
func NewEnvEditor() *EnvEditor {
	return &EnvEditor{}
}

const instructionComment = `<!--
clipflow: write the caption for your clip below.

- SAVE and EXIT to keep it (e.g., :wq in vi).
- #hashtags in the caption are linked to the clip.
- Emptying the file leaves the caption blank.
-->

`

// Cmd writes content under the instruction comment to a temp file and returns the
// editor command for it along with the file path.
func (e *EnvEditor) Cmd(content string) (*exec.Cmd, string, error) {
	editorCmd := os.Getenv("EDITOR")
	if editorCmd == "" {
		editorCmd = "vi"
	}
	fields := strings.Fields(editorCmd)

	tmpFile, err := os.CreateTemp("", "clipflow-caption-*.md")
	if err != nil {
		return nil, "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer tmpFile.Close()

	if _, err := tmpFile.WriteString(instructionComment + content); err != nil {
		os.Remove(tmpPath)
		return nil, "", fmt.Errorf("writing to temp file: %w", err)
	}

	args := append(fields[1:], tmpPath)
	return exec.Command(fields[0], args...), tmpPath, nil
}

// ReadContent reads the temp file, strips the instruction comment, trims whitespace,
// and removes the file.
func (e *EnvEditor) ReadContent(path string) (string, error) {
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading temp file: %w", err)
	}

	content := string(data)
	if idx := strings.Index(content, "-->"); idx != -1 {
		content = content[idx+3:]
	}
	return strings.TrimSpace(content), nil
}
