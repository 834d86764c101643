package contextstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Instruction-file names, in discovery priority order (ascending: the
// least specific source is discovered — and therefore appears — first).
const (
	globalFileName  = "GENCORE.md"
	rootFileName    = "GENCORE.md"
	rootFileAltName = "AGENTS.md" // cross-tool convention fallback
	localFileName   = "GENCORE.local.md"
	legacyFileName  = ".gencorerules"
	rulesDirName    = "rules"
	projectDirName  = ".gencore"
)

// maxSubdirDepth bounds how deep subdirectory instruction-file discovery
// descends from the project root.
const maxSubdirDepth = 3

// defaultContextByteBudget caps the total size of the concatenated project
// context string handed to the system prompt.
const defaultContextByteBudget = 100 * 1024

// Source tags where a ContextFile came from.
type Source string

const (
	SourceGlobal      Source = "global"
	SourceRoot        Source = "root"
	SourceLocal       Source = "local"
	SourceSubdir      Source = "subdirectory"
	SourceLegacy      Source = "legacy"
	SourceRule        Source = "rule"
)

// ContextFile is one discovered project-instruction file.
type ContextFile struct {
	Path        string
	Content     string
	Source      Source
	Priority    int
	Globs       []string
	AlwaysApply bool
}

// ruleFrontmatter is the YAML frontmatter schema for files under
// <project>/.gencore/rules/.
type ruleFrontmatter struct {
	Globs       []string `yaml:"globs"`
	AlwaysApply bool     `yaml:"always_apply"`
}

// LoadProjectContext discovers every project-instruction file reachable
// from root, in priority order: global user file, project-root file,
// project-local override, subdirectory instruction files (bounded depth),
// a legacy flat rules file, then a directory of frontmatter rule files.
func LoadProjectContext(root string) []ContextFile {
	var files []ContextFile

	if f, ok := readContextFile(globalPath(), SourceGlobal, 0); ok {
		files = append(files, f)
	}

	if f, ok := readFirstExisting([]string{
		filepath.Join(root, rootFileName),
		filepath.Join(root, rootFileAltName),
	}, SourceRoot, 1); ok {
		files = append(files, f)
	}

	if f, ok := readContextFile(filepath.Join(root, projectDirName, localFileName), SourceLocal, 2); ok {
		files = append(files, f)
	}

	files = append(files, discoverSubdirFiles(root)...)

	if f, ok := readContextFile(filepath.Join(root, legacyFileName), SourceLegacy, 4); ok {
		files = append(files, f)
	}

	files = append(files, discoverRuleFiles(filepath.Join(root, projectDirName, rulesDirName))...)

	sort.SliceStable(files, func(i, j int) bool { return files[i].Priority < files[j].Priority })
	return files
}

func globalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gencore", globalFileName)
}

func readContextFile(path string, source Source, priority int) (ContextFile, bool) {
	if path == "" {
		return ContextFile{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ContextFile{}, false
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return ContextFile{}, false
	}
	return ContextFile{Path: path, Content: content, Source: source, Priority: priority}, true
}

func readFirstExisting(paths []string, source Source, priority int) (ContextFile, bool) {
	for _, p := range paths {
		if f, ok := readContextFile(p, source, priority); ok {
			return f, true
		}
	}
	return ContextFile{}, false
}

// discoverSubdirFiles walks root looking for rootFileName in subdirectories
// up to maxSubdirDepth, so a monorepo's sub-packages can each carry their
// own instructions layered on top of the root file.
func discoverSubdirFiles(root string) []ContextFile {
	var files []ContextFile
	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		if depth > maxSubdirDepth {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			name := e.Name()
			if strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" {
				continue
			}
			sub := filepath.Join(dir, name)
			if f, ok := readContextFile(filepath.Join(sub, rootFileName), SourceSubdir, 3); ok {
				files = append(files, f)
			}
			walk(sub, depth+1)
		}
	}
	walk(root, 1)
	return files
}

// discoverRuleFiles loads every *.md file in dir as a frontmatter rule
// file. A file whose frontmatter fails to parse is kept with its whole
// body treated as plain content and default (always-apply) frontmatter,
// per the documented parse-failure fallback.
func discoverRuleFiles(dir string) []ContextFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var files []ContextFile
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		frontmatter, body := extractFrontmatter(string(data))

		cf := ContextFile{Path: path, Source: SourceRule, Priority: 5, AlwaysApply: true}
		if frontmatter == "" {
			cf.Content = strings.TrimSpace(string(data))
			files = append(files, cf)
			continue
		}

		var fm ruleFrontmatter
		if err := yaml.Unmarshal([]byte(frontmatter), &fm); err != nil {
			cf.Content = strings.TrimSpace(string(data))
			files = append(files, cf)
			continue
		}

		cf.Content = strings.TrimSpace(body)
		cf.Globs = fm.Globs
		cf.AlwaysApply = fm.AlwaysApply || len(fm.Globs) == 0
		files = append(files, cf)
	}
	return files
}

func extractFrontmatter(content string) (frontmatter, body string) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "---") {
		return "", content
	}
	rest := content[3:]
	end := strings.Index(rest, "\n---")
	if end == -1 {
		return "", content
	}
	return strings.TrimSpace(rest[:end]), strings.TrimSpace(rest[end+4:])
}

// FilterForContext returns the subset of files that apply given the set of
// files currently relevant to the turn (e.g. files the model has touched):
// a rule file is kept if it always applies, declares no globs, or has at
// least one glob matching one of currentFiles. Non-rule files always pass
// through unfiltered.
func FilterForContext(files []ContextFile, currentFiles []string) []ContextFile {
	var out []ContextFile
	for _, f := range files {
		if f.Source != SourceRule {
			out = append(out, f)
			continue
		}
		if f.AlwaysApply || len(f.Globs) == 0 {
			out = append(out, f)
			continue
		}
		if matchesAnyGlob(f.Globs, currentFiles) {
			out = append(out, f)
		}
	}
	return out
}

func matchesAnyGlob(globs, files []string) bool {
	for _, g := range globs {
		for _, f := range files {
			if ok, _ := doublestar.Match(g, f); ok {
				return true
			}
		}
	}
	return false
}

// ConcatenateContext joins files into one string with a per-section header,
// stopping and marking truncation once budget bytes is exceeded.
func ConcatenateContext(files []ContextFile, budget int) string {
	if budget <= 0 {
		budget = defaultContextByteBudget
	}
	var sb strings.Builder
	used := 0
	for _, f := range files {
		header := fmt.Sprintf("--- %s (%s) ---\n", f.Path, f.Source)
		section := header + f.Content + "\n\n"
		if used+len(section) > budget {
			remaining := budget - used
			if remaining > len(header) {
				sb.WriteString(header)
				sb.WriteString(f.Content[:clampLen(remaining-len(header), len(f.Content))])
				sb.WriteString("\n... (truncated: context byte budget exceeded)\n")
			} else {
				sb.WriteString("... (truncated: context byte budget exceeded)\n")
			}
			break
		}
		sb.WriteString(section)
		used += len(section)
	}
	return strings.TrimSpace(sb.String())
}

func clampLen(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
