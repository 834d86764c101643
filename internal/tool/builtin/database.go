package builtin

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/coreagent/gencore/internal/permission"
	"github.com/coreagent/gencore/internal/tool"
)

const maxDatabaseRows = 200

// Database runs a read-only SQL query against a SQLite file, for agents
// that need to inspect a project's local database state. Mutating
// statements are rejected outright rather than gated behind permission —
// a dedicated write path is out of scope.
type Database struct{}

func (t *Database) Name() string { return "database" }

func (t *Database) Definition() tool.Definition {
	return tool.Definition{
		Name:        "database",
		Description: "Run a read-only SQL query against a SQLite database file",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"db_path": map[string]any{"type": "string", "description": "Path to the SQLite file"},
				"query":   map[string]any{"type": "string"},
			},
			"required": []string{"db_path", "query"},
		},
	}
}

func (t *Database) RequiresPermission() bool { return false }

func (t *Database) PermissionRequest(args map[string]any) *permission.Request { return nil }

var writeKeywords = []string{"insert", "update", "delete", "drop", "alter", "create", "replace", "truncate", "attach", "pragma"}

func isReadOnlyQuery(q string) bool {
	first := strings.ToLower(strings.TrimSpace(q))
	if !strings.HasPrefix(first, "select") && !strings.HasPrefix(first, "explain") {
		return false
	}
	for _, kw := range writeKeywords {
		if strings.Contains(first, kw) {
			return false
		}
	}
	return true
}

func (t *Database) Execute(ctx context.Context, toolUseID string, args map[string]any, tc tool.Context) tool.Result {
	dbPath, ok := tool.Str(args, "db_path", "path", "file")
	if !ok {
		return tool.ErrorResult(toolUseID, "db_path is required")
	}
	query, ok := tool.Str(args, "query")
	if !ok {
		return tool.ErrorResult(toolUseID, "query is required")
	}
	if !isReadOnlyQuery(query) {
		return tool.ErrorResult(toolUseID, "only read-only SELECT/EXPLAIN queries are permitted")
	}
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(tc.Cwd, dbPath)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return tool.ErrorResult(toolUseID, "failed to open database: "+err.Error())
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return tool.ErrorResult(toolUseID, "query failed: "+err.Error())
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return tool.ErrorResult(toolUseID, "failed to read columns: "+err.Error())
	}

	var out strings.Builder
	out.WriteString(strings.Join(cols, "\t") + "\n")

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	rowCount := 0
	truncated := false
	for rows.Next() {
		if rowCount >= maxDatabaseRows {
			truncated = true
			break
		}
		if err := rows.Scan(ptrs...); err != nil {
			return tool.ErrorResult(toolUseID, "scan failed: "+err.Error())
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = fmt.Sprintf("%v", v)
		}
		out.WriteString(strings.Join(parts, "\t") + "\n")
		rowCount++
	}
	if err := rows.Err(); err != nil {
		return tool.ErrorResult(toolUseID, "row iteration failed: "+err.Error())
	}
	if truncated {
		out.WriteString(fmt.Sprintf("... (truncated at %d rows)\n", maxDatabaseRows))
	}
	if rowCount == 0 {
		return tool.OKResult(toolUseID, "(no rows)")
	}
	return tool.OKResult(toolUseID, out.String())
}

func init() {
	tool.Register(&Database{})
}
