// Package contextstore implements the tiered session-history store and the
// project-instruction-file loader that feed the agent loop's system prompt.
// Chunks age from hot to warm to cold and are eventually dropped; the
// project context and file-tree summaries are refreshed on demand and
// cached until the next refresh.
package contextstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/coreagent/gencore/internal/log"
	"go.uber.org/zap"
)

const (
	// defaultHotCap bounds the number of hot chunks before the oldest
	// (by last access) are demoted to warm.
	defaultHotCap = 300
	// defaultWarmDemoteAge is how long a chunk can sit untouched in warm
	// before it becomes a cold-demotion candidate.
	defaultWarmDemoteAge = 24 * time.Hour
	// defaultRetention is how long a cold chunk survives before deletion.
	defaultRetention = 30 * 24 * time.Hour
	// coldCandidateMaxAccess caps the access count a warm chunk may have
	// and still be eligible for cold demotion; a frequently-read chunk
	// stays warm regardless of age.
	coldCandidateMaxAccess = 2
)

// Stats is the snapshot returned by Store.Stats.
type Stats struct {
	Hot          int
	Warm         int
	Cold         int
	TotalTokens  int
	StorageBytes int64
}

// Store is the per-session tiered chunk log plus cached project context.
// Writes are best-effort: a failure never blocks the caller, only logs.
type Store struct {
	mu     sync.Mutex
	chunks []*Chunk
	nextID int

	hotCap        int
	warmDemoteAge time.Duration
	retention     time.Duration

	// SessionID and ColdDir together determine where cold chunks are
	// archived to disk. ColdDir empty disables persistence — chunks are
	// still demoted to TierCold and compressed, just kept in memory.
	SessionID string
	ColdDir   string

	projectRoot  string
	contextFiles []ContextFile
	fileTree     string
}

// NewStore creates an empty Store with the default tier policy.
func NewStore() *Store {
	return &Store{
		hotCap:        defaultHotCap,
		warmDemoteAge: defaultWarmDemoteAge,
		retention:     defaultRetention,
	}
}

// StoreMessage appends a new hot chunk for a conversation message. tokens
// of 0 triggers the len/4 approximation.
func (s *Store) StoreMessage(role, text string, tokens int) {
	if tokens == 0 {
		tokens = approxTokens(text)
	}
	s.append(&Chunk{Kind: ChunkMessage, Role: role, Text: text, Tokens: tokens})
}

// StoreToolCall appends a new hot chunk recording one tool invocation.
func (s *Store) StoreToolCall(name, args, output string, isError bool, tokens int) {
	text := fmt.Sprintf("%s(%s) -> %s", name, args, output)
	if tokens == 0 {
		tokens = approxTokens(text)
	}
	s.append(&Chunk{Kind: ChunkToolCall, ToolName: name, Text: text, IsError: isError, Tokens: tokens})
}

func (s *Store) append(c *Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.nextID++
	c.ID = fmt.Sprintf("chunk-%d", s.nextID)
	c.CreatedAt = now
	c.LastAccessed = now
	c.Tier = TierHot
	s.chunks = append(s.chunks, c)
	s.evictHotOverflowLocked()
}

// evictHotOverflowLocked demotes the least-recently-accessed hot chunks to
// warm once the hot tier exceeds its cap. Caller must hold s.mu.
func (s *Store) evictHotOverflowLocked() {
	var hot []*Chunk
	for _, c := range s.chunks {
		if c.Tier == TierHot {
			hot = append(hot, c)
		}
	}
	if len(hot) <= s.hotCap {
		return
	}
	sort.Slice(hot, func(i, j int) bool { return hot[i].LastAccessed.Before(hot[j].LastAccessed) })
	overflow := len(hot) - s.hotCap
	for i := 0; i < overflow; i++ {
		hot[i].Tier = TierWarm
	}
}

// Recent returns the n most recently created chunks, most recent last.
// This is the store's read accessor, and per the tier policy, reading a
// chunk promotes it back to hot and refreshes its access bookkeeping.
func (s *Store) Recent(n int) []Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if len(s.chunks) > n {
		start = len(s.chunks) - n
	}
	out := make([]Chunk, 0, len(s.chunks)-start)
	now := time.Now()
	for _, c := range s.chunks[start:] {
		c.Tier = TierHot
		c.LastAccessed = now
		c.AccessCount++
		out = append(out, *c)
	}
	s.evictHotOverflowLocked()
	return out
}

// Stats reports the current tier distribution and total token estimate.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	for _, c := range s.chunks {
		switch c.Tier {
		case TierHot:
			st.Hot++
		case TierWarm:
			st.Warm++
		case TierCold:
			st.Cold++
		}
		st.TotalTokens += c.Tokens
		st.StorageBytes += int64(len(c.Text))
	}
	return st
}

// Clear drops every chunk for the current session. Project context and
// file-tree caches are untouched — those are refreshed independently.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
}

// compact walks the tier boundaries once: warm chunks old and cold enough
// are demoted to cold (archived to disk if ColdDir is set, and compressed
// in memory either way); cold chunks past the retention window are dropped.
// An archive write failure leaves the chunk in warm for a retry next cycle
// and is the only way this returns a non-nil error.
func (s *Store) compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	kept := s.chunks[:0:0]
	var firstErr error

	for _, c := range s.chunks {
		switch c.Tier {
		case TierHot:
			kept = append(kept, c)

		case TierWarm:
			stale := now.Sub(c.LastAccessed) > s.warmDemoteAge && c.AccessCount < coldCandidateMaxAccess
			if stale {
				if s.ColdDir != "" {
					if err := s.archiveChunkLocked(c); err != nil {
						if firstErr == nil {
							firstErr = err
						}
						kept = append(kept, c) // stays warm, retry next cycle
						continue
					}
				}
				compressChunk(c)
				c.Tier = TierCold
			}
			kept = append(kept, c)

		case TierCold:
			if now.Sub(c.CreatedAt) > s.retention {
				if s.ColdDir != "" {
					s.deleteArchivedChunkLocked(c)
				}
				continue // dropped
			}
			kept = append(kept, c)
		}
	}

	s.chunks = kept
	return firstErr
}

func (s *Store) archiveChunkLocked(c *Chunk) error {
	if err := os.MkdirAll(s.ColdDir, 0755); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.ColdDir, c.ID+".json"), data, 0644)
}

func (s *Store) deleteArchivedChunkLocked(c *Chunk) {
	_ = os.Remove(filepath.Join(s.ColdDir, c.ID+".json"))
}

// SetProjectRoot (re)initializes the session's working directory. If
// scanTree is true, a file-tree summary is computed immediately alongside
// the project instruction files; otherwise only RefreshProjectContext
// populates the instruction files and FileTreeContext stays empty until a
// later scan.
func (s *Store) SetProjectRoot(path string, scanTree bool) {
	s.mu.Lock()
	s.projectRoot = path
	s.mu.Unlock()

	s.RefreshProjectContext()

	if scanTree {
		tree := buildFileTree(path)
		s.mu.Lock()
		s.fileTree = tree
		s.mu.Unlock()
	}
}

// RefreshProjectContext reloads project instruction files via
// LoadProjectContext, replacing whatever was cached before.
func (s *Store) RefreshProjectContext() {
	s.mu.Lock()
	root := s.projectRoot
	s.mu.Unlock()
	if root == "" {
		return
	}

	files := LoadProjectContext(root)

	s.mu.Lock()
	s.contextFiles = files
	s.mu.Unlock()
}

// ProjectContextString returns the concatenated, budget-capped project
// instruction files for system-prompt injection, or the empty string if
// nothing has been loaded.
func (s *Store) ProjectContextString() string {
	s.mu.Lock()
	files := s.contextFiles
	s.mu.Unlock()
	if len(files) == 0 {
		return ""
	}
	return ConcatenateContext(files, defaultContextByteBudget)
}

// FileTreeContext returns the cached file-tree summary for system-prompt
// injection, or the empty string if SetProjectRoot was never called with
// scanTree true.
func (s *Store) FileTreeContext() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileTree
}

// CompactionHandle controls a background compaction task started by
// StartBackgroundCompaction. Dropping the handle without calling Stop
// leaks the goroutine; callers should always defer Stop.
type CompactionHandle struct {
	stop func()
	once sync.Once
}

// Stop cancels the background task and waits for it to exit.
func (h *CompactionHandle) Stop() {
	h.once.Do(h.stop)
}

// StartBackgroundCompaction spawns a recurring compaction task that wakes
// every period and walks tier boundaries. A compaction failure is logged
// and retried on the next tick; it never blocks or fails the caller.
func (s *Store) StartBackgroundCompaction(period time.Duration) *CompactionHandle {
	done := make(chan struct{})
	quit := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				if err := s.compact(); err != nil {
					log.Logger().Warn("context store compaction failed, will retry next cycle", zap.Error(err))
				}
			}
		}
	}()

	return &CompactionHandle{stop: func() {
		close(quit)
		<-done
	}}
}
