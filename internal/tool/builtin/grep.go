package builtin

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/tool"
)

const (
	maxGrepMatches = 50
	maxGrepFiles   = 200
)

// Grep searches file contents for a regex pattern.
type Grep struct{}

func (t *Grep) Name() string { return "grep" }

func (t *Grep) Definition() tool.Definition {
	return tool.Definition{
		Name:        "grep",
		Description: "Search file contents for a regular expression",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern": map[string]any{"type": "string"},
				"path":    map[string]any{"type": "string"},
				"include": map[string]any{"type": "string", "description": "Glob restricting which filenames are searched"},
			},
			"required": []string{"pattern"},
		},
	}
}

func (t *Grep) RequiresPermission() bool                               { return false }
func (t *Grep) PermissionRequest(args map[string]any) *permission.Request { return nil }

func isBinary(data []byte) bool {
	for _, b := range data {
		if b == 0 {
			return true
		}
	}
	return false
}

func (t *Grep) Execute(ctx context.Context, toolUseID string, args map[string]any, tc tool.Context) tool.Result {
	pattern, ok := tool.Str(args, "pattern", "glob", "query")
	if !ok {
		return tool.ErrorResult(toolUseID, "pattern is required")
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return tool.ErrorResult(toolUseID, "invalid pattern: "+err.Error())
	}

	basePath := tc.Cwd
	if path, ok := tool.Str(args, "path"); ok {
		if filepath.IsAbs(path) {
			basePath = path
		} else {
			basePath = filepath.Join(tc.Cwd, path)
		}
	}
	includePattern, _ := tool.Str(args, "include")

	info, err := os.Stat(basePath)
	if err != nil {
		return tool.ErrorResult(toolUseID, "path not found: "+basePath)
	}

	var out strings.Builder
	matchCount := 0
	filesSearched := 0

	searchFile := func(filePath, relPath string) error {
		file, err := os.Open(filePath)
		if err != nil {
			return nil
		}
		defer file.Close()

		buf := make([]byte, 512)
		n, _ := file.Read(buf)
		if n > 0 && isBinary(buf[:n]) {
			return nil
		}
		file.Seek(0, 0)

		scanner := bufio.NewScanner(file)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if re.MatchString(line) {
				if len(line) > maxLineLength {
					line = line[:maxLineLength] + "..."
				}
				fmt.Fprintf(&out, "%s:%d:%s\n", relPath, lineNo, strings.TrimSpace(line))
				matchCount++
				if matchCount >= maxGrepMatches {
					return filepath.SkipAll
				}
			}
		}
		return nil
	}

	if !info.IsDir() {
		searchFile(basePath, filepath.Base(basePath))
	} else {
		filepath.WalkDir(basePath, func(path string, d os.DirEntry, err error) error {
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
			if includePattern != "" {
				if matched, _ := filepath.Match(includePattern, d.Name()); !matched {
					return nil
				}
			}
			relPath, err := filepath.Rel(basePath, path)
			if err != nil {
				relPath = path
			}
			filesSearched++
			if filesSearched > maxGrepFiles {
				return filepath.SkipAll
			}
			return searchFile(path, relPath)
		})
	}

	if matchCount == 0 {
		return tool.OKResult(toolUseID, "No matches for "+pattern)
	}
	if matchCount >= maxGrepMatches {
		out.WriteString("... (truncated)\n")
	}
	return tool.OKResult(toolUseID, out.String())
}

func init() {
	tool.Register(&Grep{})
}
