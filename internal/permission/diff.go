package permission

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// DiffLineKind is the role a line plays in a unified diff.
type DiffLineKind int

const (
	DiffContext DiffLineKind = iota
	DiffAdded
	DiffRemoved
)

// DiffLine is one rendered line of a unified diff.
type DiffLine struct {
	Kind DiffLineKind
	Text string
}

// Diff is the rendered preview attached to an EditMeta permission request.
type Diff struct {
	IsNewFile    bool
	Unified      string
	Lines        []DiffLine
	AddedCount   int
	RemovedCount int
}

// GenerateDiff computes a unified diff between old and new file content
// using the myers algorithm, for display in an Edit/Write permission prompt.
func GenerateDiff(path, oldContent, newContent string) *Diff {
	edits := myers.ComputeEdits(span.URIFromPath(path), oldContent, newContent)
	unified := fmt.Sprint(gotextdiff.ToUnified(path, path, oldContent, edits))

	d := &Diff{
		IsNewFile: oldContent == "",
		Unified:   unified,
	}

	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "@@"):
			continue
		case strings.HasPrefix(line, "+"):
			d.Lines = append(d.Lines, DiffLine{Kind: DiffAdded, Text: line[1:]})
			d.AddedCount++
		case strings.HasPrefix(line, "-"):
			d.Lines = append(d.Lines, DiffLine{Kind: DiffRemoved, Text: line[1:]})
			d.RemovedCount++
		case strings.HasPrefix(line, " "):
			d.Lines = append(d.Lines, DiffLine{Kind: DiffContext, Text: line[1:]})
		}
	}
	return d
}
