package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/tool"
)

// FileWrite creates or overwrites a file with the given content.
type FileWrite struct{}

func (t *FileWrite) Name() string { return "file_write" }

func (t *FileWrite) Definition() tool.Definition {
	return tool.Definition{
		Name:        "file_write",
		Description: "Create or overwrite a file with the given content",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_path": map[string]any{"type": "string"},
				"content":   map[string]any{"type": "string"},
			},
			"required": []string{"file_path", "content"},
		},
	}
}

func (t *FileWrite) RequiresPermission() bool { return true }

func (t *FileWrite) PermissionRequest(args map[string]any) *permission.Request {
	filePath, ok := tool.Str(args, "file_path", "path", "file")
	if !ok {
		return nil
	}
	content, _ := tool.Str(args, "content", "text", "body")

	var diff *permission.Diff
	if old, err := os.ReadFile(filePath); err == nil {
		diff = permission.GenerateDiff(filePath, string(old), content)
	} else {
		diff = permission.GenerateDiff(filePath, "", content)
	}

	return &permission.Request{
		ToolName:    t.Name(),
		Description: "Write " + filePath,
		Paths:       []string{filePath},
		Meta:        &permission.EditMeta{Diff: diff},
	}
}

func (t *FileWrite) Execute(ctx context.Context, toolUseID string, args map[string]any, tc tool.Context) tool.Result {
	filePath, ok := tool.Str(args, "file_path", "path", "file")
	if !ok {
		return tool.ErrorResult(toolUseID, "file_path is required")
	}
	content, ok := tool.Str(args, "content", "text", "body")
	if !ok {
		content = ""
	}
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(tc.Cwd, filePath)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return tool.ErrorResult(toolUseID, "failed to create directory: "+err.Error())
	}

	_, statErr := os.Stat(filePath)
	isNewFile := os.IsNotExist(statErr)

	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		return tool.ErrorResult(toolUseID, "failed to write file: "+err.Error())
	}

	action := "Updated"
	if isNewFile {
		action = "Created"
	}
	lineCount := strings.Count(content, "\n") + 1
	return tool.OKResult(toolUseID, fmt.Sprintf("%s %s (%d lines)", action, filePath, lineCount))
}

func init() {
	tool.Register(&FileWrite{})
}
