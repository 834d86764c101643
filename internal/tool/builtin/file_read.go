package builtin

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/tool"
)

const (
	maxReadLines  = 2000
	maxLineLength = 500
)

// FileRead reads a slice of a file's lines, truncating long lines and
// reporting binary files without dumping their bytes.
type FileRead struct{}

func (t *FileRead) Name() string { return "file_read" }

func (t *FileRead) Definition() tool.Definition {
	return tool.Definition{
		Name:        "file_read",
		Description: "Read a file's contents, optionally starting at a line offset",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_path": map[string]any{"type": "string", "description": "Path to the file"},
				"offset":    map[string]any{"type": "integer", "description": "1-indexed line to start at"},
				"limit":     map[string]any{"type": "integer", "description": "Maximum number of lines to read"},
			},
			"required": []string{"file_path"},
		},
	}
}

func (t *FileRead) RequiresPermission() bool { return false }

func (t *FileRead) PermissionRequest(args map[string]any) *permission.Request { return nil }

func (t *FileRead) Execute(ctx context.Context, toolUseID string, args map[string]any, tc tool.Context) tool.Result {
	filePath, ok := tool.Str(args, "file_path", "path", "file")
	if !ok {
		return tool.ErrorResult(toolUseID, "file_path is required")
	}
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(tc.Cwd, filePath)
	}

	offset, _ := tool.Int(args, "offset")
	limit := maxReadLines
	if v, ok := tool.Int(args, "limit"); ok && v > 0 {
		limit = v
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return tool.ErrorResult(toolUseID, "file not found: "+filePath)
		}
		return tool.ErrorResult(toolUseID, "failed to stat file: "+err.Error())
	}
	if info.IsDir() {
		return tool.ErrorResult(toolUseID, "path is a directory: "+filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return tool.ErrorResult(toolUseID, "failed to open file: "+err.Error())
	}
	defer file.Close()

	header := make([]byte, 512)
	n, _ := file.Read(header)
	for _, b := range header[:n] {
		if b == 0 {
			return tool.OKResult(toolUseID, fmt.Sprintf("Binary file detected: %s (%d bytes)", filePath, info.Size()))
		}
	}
	file.Seek(0, 0)

	var out []byte
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	readCount := 0
	truncated := false

	for scanner.Scan() {
		lineNo++
		if offset > 0 && lineNo < offset {
			continue
		}
		if readCount >= limit {
			truncated = true
			break
		}
		text := scanner.Text()
		if len(text) > maxLineLength {
			text = text[:maxLineLength] + "..."
		}
		out = append(out, []byte(fmt.Sprintf("%6d\t%s\n", lineNo, text))...)
		readCount++
	}
	if err := scanner.Err(); err != nil {
		return tool.ErrorResult(toolUseID, "error reading file: "+err.Error())
	}
	if readCount == 0 {
		return tool.OKResult(toolUseID, "(file is empty)")
	}
	if truncated {
		out = append(out, []byte(fmt.Sprintf("... (truncated at %d lines)\n", limit))...)
	}
	return tool.OKResult(toolUseID, string(out))
}

func init() {
	tool.Register(&FileRead{})
}
