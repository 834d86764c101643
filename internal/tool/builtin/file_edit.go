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

// FileEdit performs exact string-replacement edits on an existing file.
type FileEdit struct{}

func (t *FileEdit) Name() string { return "file_edit" }

func (t *FileEdit) Definition() tool.Definition {
	return tool.Definition{
		Name:        "file_edit",
		Description: "Replace an exact string occurrence in a file",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_path":   map[string]any{"type": "string"},
				"old_string":  map[string]any{"type": "string"},
				"new_string":  map[string]any{"type": "string"},
				"replace_all": map[string]any{"type": "boolean"},
			},
			"required": []string{"file_path", "old_string", "new_string"},
		},
	}
}

func (t *FileEdit) RequiresPermission() bool { return true }

func (t *FileEdit) PermissionRequest(args map[string]any) *permission.Request {
	filePath, ok := tool.Str(args, "file_path", "path", "file")
	if !ok {
		return nil
	}
	oldString, _ := tool.Str(args, "old_string")
	newString, _ := tool.Str(args, "new_string")

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil
	}
	newContent := applyEdit(string(content), oldString, newString, tool.Bool(args, "replace_all"))

	return &permission.Request{
		ToolName:    t.Name(),
		Description: "Edit " + filePath,
		Paths:       []string{filePath},
		Meta:        &permission.EditMeta{Diff: permission.GenerateDiff(filePath, string(content), newContent)},
	}
}

func applyEdit(content, oldString, newString string, replaceAll bool) string {
	if replaceAll {
		return strings.ReplaceAll(content, oldString, newString)
	}
	return strings.Replace(content, oldString, newString, 1)
}

func (t *FileEdit) Execute(ctx context.Context, toolUseID string, args map[string]any, tc tool.Context) tool.Result {
	filePath, ok := tool.Str(args, "file_path", "path", "file")
	if !ok {
		return tool.ErrorResult(toolUseID, "file_path is required")
	}
	oldString, ok := tool.Str(args, "old_string")
	if !ok {
		return tool.ErrorResult(toolUseID, "old_string is required")
	}
	newString, _ := tool.Str(args, "new_string")
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(tc.Cwd, filePath)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return tool.ErrorResult(toolUseID, "file not found: "+filePath)
		}
		return tool.ErrorResult(toolUseID, "failed to read file: "+err.Error())
	}
	oldContent := string(content)

	count := strings.Count(oldContent, oldString)
	if count == 0 {
		return tool.ErrorResult(toolUseID, "old_string not found in file")
	}
	replaceAll := tool.Bool(args, "replace_all")
	if !replaceAll && count > 1 {
		return tool.ErrorResult(toolUseID, fmt.Sprintf("old_string is not unique in file (found %d occurrences); pass replace_all=true or include more context", count))
	}

	newContent := applyEdit(oldContent, oldString, newString, replaceAll)
	if err := os.WriteFile(filePath, []byte(newContent), 0644); err != nil {
		return tool.ErrorResult(toolUseID, "failed to write file: "+err.Error())
	}

	replaceCount := 1
	if replaceAll {
		replaceCount = count
	}
	return tool.OKResult(toolUseID, fmt.Sprintf("Edited %s (%d replacement(s))", filePath, replaceCount))
}

func init() {
	tool.Register(&FileEdit{})
}
