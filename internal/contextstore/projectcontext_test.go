package contextstore

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadProjectContextDiscoversRootAndLocalFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, rootFileName), "# root instructions")
	writeFile(t, filepath.Join(root, projectDirName, localFileName), "# local override")

	files := LoadProjectContext(root)

	var sawRoot, sawLocal bool
	for _, f := range files {
		if f.Source == SourceRoot {
			sawRoot = true
		}
		if f.Source == SourceLocal {
			sawLocal = true
		}
	}
	if !sawRoot {
		t.Error("expected root instruction file to be discovered")
	}
	if !sawLocal {
		t.Error("expected local override file to be discovered")
	}
}

func TestLoadProjectContextFallsBackToAltRootName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, rootFileAltName), "# agents file")

	files := LoadProjectContext(root)
	if len(files) != 1 || files[0].Source != SourceRoot {
		t.Fatalf("expected the alt root filename to be picked up, got %+v", files)
	}
}

func TestDiscoverSubdirFilesRespectsDepth(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c", "d")
	writeFile(t, filepath.Join(deep, rootFileName), "# too deep")

	files := discoverSubdirFiles(root)
	for _, f := range files {
		if f.Path == filepath.Join(deep, rootFileName) {
			t.Error("expected a file past maxSubdirDepth to be skipped")
		}
	}
}

func TestRuleFileFrontmatterParsing(t *testing.T) {
	root := t.TempDir()
	rulesDir := filepath.Join(root, projectDirName, rulesDirName)
	writeFile(t, filepath.Join(rulesDir, "go.md"), "---\nglobs:\n  - \"*.go\"\nalways_apply: false\n---\nUse tabs for indentation.")
	writeFile(t, filepath.Join(rulesDir, "always.md"), "---\nalways_apply: true\n---\nAlways read before writing.")

	files := discoverRuleFiles(rulesDir)
	if len(files) != 2 {
		t.Fatalf("expected 2 rule files, got %d", len(files))
	}

	byName := map[string]ContextFile{}
	for _, f := range files {
		byName[filepath.Base(f.Path)] = f
	}

	goRule := byName["go.md"]
	if goRule.AlwaysApply {
		t.Error("expected go.md to not always-apply, it has scoped globs")
	}
	if len(goRule.Globs) != 1 || goRule.Globs[0] != "*.go" {
		t.Errorf("expected globs [*.go], got %v", goRule.Globs)
	}

	alwaysRule := byName["always.md"]
	if !alwaysRule.AlwaysApply {
		t.Error("expected always.md to always-apply")
	}
}

func TestRuleFileFrontmatterParseFailureFallsBackToWholeBody(t *testing.T) {
	root := t.TempDir()
	rulesDir := filepath.Join(root, projectDirName, rulesDirName)
	// Malformed YAML (unterminated list) triggers the fallback path.
	writeFile(t, filepath.Join(rulesDir, "broken.md"), "---\nglobs: [unterminated\n---\nbody text")

	files := discoverRuleFiles(rulesDir)
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if !files[0].AlwaysApply {
		t.Error("expected a parse failure to default to always-apply")
	}
	if files[0].Content == "" {
		t.Error("expected the whole file content to be kept as the body on parse failure")
	}
}

func TestFilterForContextScopesToMatchingGlobs(t *testing.T) {
	files := []ContextFile{
		{Source: SourceRule, Globs: []string{"*.go"}, Content: "go rule"},
		{Source: SourceRule, Globs: []string{"*.py"}, Content: "python rule"},
		{Source: SourceRoot, Content: "root file"},
	}

	filtered := FilterForContext(files, []string{"main.go"})
	if len(filtered) != 2 {
		t.Fatalf("expected 2 files (go rule + root), got %d", len(filtered))
	}
	for _, f := range filtered {
		if f.Content == "python rule" {
			t.Error("python rule should not match main.go")
		}
	}
}

func TestConcatenateContextTruncatesAtBudget(t *testing.T) {
	files := []ContextFile{
		{Path: "a.md", Source: SourceRoot, Content: "short"},
		{Path: "b.md", Source: SourceLocal, Content: "this one is much longer than the remaining budget allows"},
	}

	out := ConcatenateContext(files, 40)
	if len(out) == 0 {
		t.Fatal("expected non-empty output")
	}
	if !contains(out, "truncated") {
		t.Errorf("expected a truncation marker, got: %s", out)
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}
