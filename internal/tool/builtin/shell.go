package builtin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/task"
	"github.com/coreagent/gencore/internal/tool"
)

// destructivePatterns are checked case-insensitively against the normalized
// command and against each &&/;/|-separated sub-command. They are rejected
// regardless of permission mode — spec §4.7's "safety floor".
var destructivePatterns = []string{
	"rm -rf /",
	"rm -rf /*",
	"rm -fr /",
	":(){ :|:& };:", // fork bomb
	"> /dev/sd",
	"> /dev/nvme",
	"dd if=",
	"mkfs",
	"fdisk",
	"chmod -r 777 /",
}

func normalizeShellCommand(cmd string) string {
	return strings.ToLower(strings.TrimSpace(cmd))
}

// splitSubCommands breaks a chained command into its &&/;/|-separated parts
// so each can be checked against the destructive-pattern table on its own.
func splitSubCommands(cmd string) []string {
	var subs []string
	for _, sep := range []string{"&&", ";", "|"} {
		if len(subs) == 0 {
			subs = strings.Split(cmd, sep)
		} else {
			var next []string
			for _, s := range subs {
				next = append(next, strings.Split(s, sep)...)
			}
			subs = next
		}
	}
	out := subs[:0]
	for _, s := range subs {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func isDestructiveCommand(cmd string) bool {
	normalized := normalizeShellCommand(cmd)
	for _, sub := range append(splitSubCommands(normalized), normalized) {
		for _, pattern := range destructivePatterns {
			if strings.Contains(sub, pattern) {
				return true
			}
		}
	}
	return false
}

// Shell executes a command via bash -c, optionally in the background.
type Shell struct{}

func (t *Shell) Name() string { return "shell" }

func (t *Shell) Definition() tool.Definition {
	return tool.Definition{
		Name:        "shell",
		Description: "Run a shell command",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command":           map[string]any{"type": "string"},
				"description":       map[string]any{"type": "string"},
				"run_in_background": map[string]any{"type": "boolean"},
				"timeout_ms":        map[string]any{"type": "integer"},
			},
			"required": []string{"command"},
		},
	}
}

func (t *Shell) RequiresPermission() bool { return true }

func (t *Shell) PermissionRequest(args map[string]any) *permission.Request {
	command, ok := tool.Str(args, "command")
	if !ok {
		return nil
	}
	description, _ := tool.Str(args, "description")
	return &permission.Request{
		ToolName:      t.Name(),
		Description:   description,
		IsDestructive: isDestructiveCommand(command),
		Meta: &permission.BashMeta{
			Command:       command,
			RunBackground: tool.Bool(args, "run_in_background"),
			LineCount:     strings.Count(command, "\n") + 1,
		},
	}
}

func (t *Shell) Execute(ctx context.Context, toolUseID string, args map[string]any, tc tool.Context) tool.Result {
	command, ok := tool.Str(args, "command")
	if !ok {
		return tool.ErrorResult(toolUseID, "command is required")
	}

	if isDestructiveCommand(command) {
		return tool.ErrorResult(toolUseID, "command blocked: matches a destructive pattern and cannot be run regardless of permission mode")
	}

	description, _ := tool.Str(args, "description")

	timeout := 120 * time.Second
	if ms, ok := tool.Int(args, "timeout_ms"); ok && ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
		if timeout > 600*time.Second {
			timeout = 600 * time.Second
		}
	}

	if tool.Bool(args, "run_in_background") {
		return t.executeBackground(toolUseID, command, description, tc.Cwd, timeout)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-c", command)
	cmd.Dir = tc.Cwd

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		if output != "" {
			output += "\n"
		}
		output += stderr.String()
	}

	const maxLen = 30000
	if len(output) > maxLen {
		output = output[:maxLen] + "\n... (output truncated)"
	}

	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return tool.Result{ToolUseID: toolUseID, IsError: true, Content: output + fmt.Sprintf("\ncommand timed out after %s", timeout)}
		}
		errMsg := err.Error()
		if exitErr, ok := err.(*exec.ExitError); ok {
			errMsg = fmt.Sprintf("exit code %d", exitErr.ExitCode())
		}
		return tool.Result{ToolUseID: toolUseID, IsError: true, Content: output + "\n" + errMsg}
	}

	if output == "" {
		output = "(no output)"
	}
	return tool.OKResult(toolUseID, output)
}

func (t *Shell) executeBackground(toolUseID, command, description, cwd string, timeout time.Duration) tool.Result {
	taskCtx, cancel := context.WithTimeout(context.Background(), timeout)

	cmd := exec.CommandContext(taskCtx, "bash", "-c", command)
	cmd.Dir = cwd
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return tool.ErrorResult(toolUseID, "failed to create stdout pipe: "+err.Error())
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return tool.ErrorResult(toolUseID, "failed to create stderr pipe: "+err.Error())
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return tool.ErrorResult(toolUseID, "failed to start command: "+err.Error())
	}

	bgTask := task.DefaultManager.Create(cmd, command, description, taskCtx, cancel)

	go func() {
		defer cancel()
		var stdoutBuf, stderrBuf bytes.Buffer
		done := make(chan struct{}, 2)
		go func() { io.Copy(&stdoutBuf, stdout); done <- struct{}{} }()
		go func() { io.Copy(&stderrBuf, stderr); done <- struct{}{} }()
		<-done
		<-done

		err := cmd.Wait()
		output := stdoutBuf.String()
		if stderrBuf.Len() > 0 {
			if output != "" {
				output += "\n"
			}
			output += stderrBuf.String()
		}
		bgTask.AppendOutput([]byte(output))

		exitCode := 0
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		bgTask.Complete(exitCode, err)
	}()

	return tool.OKResult(toolUseID, fmt.Sprintf("Started in background.\nTask ID: %s\nPID: %d\nCommand: %s", bgTask.ID, bgTask.PID, command))
}

func init() {
	tool.Register(&Shell{})
}
