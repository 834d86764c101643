package builtin

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/tool"
)

const maxGlobResults = 100

var ignoredDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".svn":         true,
	".hg":          true,
	"vendor":       true,
	"__pycache__":  true,
	".cache":       true,
	"dist":         true,
	"build":        true,
}

// Glob finds files under a directory matching a doublestar pattern.
type Glob struct{}

func (t *Glob) Name() string { return "glob" }

func (t *Glob) Definition() tool.Definition {
	return tool.Definition{
		Name:        "glob",
		Description: "Find files matching a glob pattern (supports ** for recursive matching)",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern": map[string]any{"type": "string"},
				"path":    map[string]any{"type": "string", "description": "Directory to search, defaults to the working directory"},
			},
			"required": []string{"pattern"},
		},
	}
}

func (t *Glob) RequiresPermission() bool                               { return false }
func (t *Glob) PermissionRequest(args map[string]any) *permission.Request { return nil }

func (t *Glob) Execute(ctx context.Context, toolUseID string, args map[string]any, tc tool.Context) tool.Result {
	pattern, ok := tool.Str(args, "pattern", "glob", "query")
	if !ok {
		return tool.ErrorResult(toolUseID, "pattern is required")
	}

	basePath := tc.Cwd
	if path, ok := tool.Str(args, "path"); ok {
		if filepath.IsAbs(path) {
			basePath = path
		} else {
			basePath = filepath.Join(tc.Cwd, path)
		}
	}

	if _, err := os.Stat(basePath); err != nil {
		return tool.ErrorResult(toolUseID, "path not found: "+basePath)
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}
	var files []fileInfo

	err := filepath.WalkDir(basePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			if ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		relPath, err := filepath.Rel(basePath, path)
		if err != nil {
			return nil
		}
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil || !matched {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, fileInfo{path: relPath, modTime: info.ModTime()})
		return nil
	})
	if err != nil && err != context.Canceled {
		return tool.ErrorResult(toolUseID, "glob error: "+err.Error())
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modTime.After(files[j].modTime) })

	truncated := false
	if len(files) > maxGlobResults {
		files = files[:maxGlobResults]
		truncated = true
	}

	if len(files) == 0 {
		return tool.OKResult(toolUseID, "No files matched "+pattern)
	}

	out := ""
	for _, f := range files {
		out += f.path + "\n"
	}
	if truncated {
		out += "... (truncated, showing first " + itoa(maxGlobResults) + ")\n"
	}
	return tool.OKResult(toolUseID, out)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

func init() {
	tool.Register(&Glob{})
}
