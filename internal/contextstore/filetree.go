package contextstore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxFileTreeEntries bounds how many paths the file-tree summary lists
// before it stops walking, so a huge repo doesn't blow out the prompt.
const maxFileTreeEntries = 400

var fileTreeIgnoredDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, "dist": true,
	"build": true, "__pycache__": true, ".cache": true, ".gencore": true,
}

// buildFileTree walks root and renders an indented summary of its
// directory structure, stopping after maxFileTreeEntries entries.
func buildFileTree(root string) string {
	type entry struct {
		relPath string
		isDir   bool
		depth   int
	}
	var entries []entry
	truncated := false

	var walk func(dir, rel string, depth int)
	walk = func(dir, rel string, depth int) {
		if truncated {
			return
		}
		items, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		names := make([]string, 0, len(items))
		isDirOf := make(map[string]bool, len(items))
		for _, it := range items {
			if strings.HasPrefix(it.Name(), ".") && it.Name() != ".gencore" {
				continue
			}
			if it.IsDir() && fileTreeIgnoredDirs[it.Name()] {
				continue
			}
			names = append(names, it.Name())
			isDirOf[it.Name()] = it.IsDir()
		}
		sort.Strings(names)

		for _, name := range names {
			if len(entries) >= maxFileTreeEntries {
				truncated = true
				return
			}
			childRel := name
			if rel != "" {
				childRel = rel + "/" + name
			}
			entries = append(entries, entry{relPath: childRel, isDir: isDirOf[name], depth: depth})
			if isDirOf[name] {
				walk(filepath.Join(dir, name), childRel, depth+1)
			}
		}
	}
	walk(root, "", 0)

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(strings.Repeat("  ", e.depth))
		if e.isDir {
			sb.WriteString(e.relPath + "/\n")
		} else {
			sb.WriteString(e.relPath + "\n")
		}
	}
	if truncated {
		sb.WriteString("... (truncated)\n")
	}
	return strings.TrimSpace(sb.String())
}
