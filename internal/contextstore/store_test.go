package contextstore

import (
	"testing"
	"time"
)

func TestStoreMessageStartsHot(t *testing.T) {
	s := NewStore()
	s.StoreMessage("user", "hello world", 0)

	st := s.Stats()
	if st.Hot != 1 {
		t.Fatalf("expected 1 hot chunk, got %d", st.Hot)
	}
	if st.TotalTokens == 0 {
		t.Error("expected a non-zero token estimate")
	}
}

func TestHotOverflowDemotesOldestToWarm(t *testing.T) {
	s := NewStore()
	s.hotCap = 2

	s.StoreMessage("user", "first", 1)
	time.Sleep(time.Millisecond)
	s.StoreMessage("user", "second", 1)
	time.Sleep(time.Millisecond)
	s.StoreMessage("user", "third", 1)

	st := s.Stats()
	if st.Hot != 2 {
		t.Errorf("expected hot cap of 2 to hold, got %d hot", st.Hot)
	}
	if st.Warm != 1 {
		t.Errorf("expected 1 chunk demoted to warm, got %d", st.Warm)
	}
}

func TestRecentPromotesColdChunkBackToHot(t *testing.T) {
	s := NewStore()
	s.StoreMessage("user", "a message", 1)
	s.chunks[0].Tier = TierCold
	s.chunks[0].LastAccessed = time.Now().Add(-time.Hour)

	chunks := s.Recent(10)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}

	st := s.Stats()
	if st.Hot != 1 || st.Cold != 0 {
		t.Errorf("expected the read to promote the chunk to hot, got hot=%d cold=%d", st.Hot, st.Cold)
	}
}

func TestCompactDemotesStaleWarmChunksToCold(t *testing.T) {
	s := NewStore()
	s.warmDemoteAge = time.Millisecond
	s.StoreMessage("user", "old enough to demote", 1)
	s.chunks[0].Tier = TierWarm
	s.chunks[0].LastAccessed = time.Now().Add(-time.Hour)

	if err := s.compact(); err != nil {
		t.Fatalf("compact: %v", err)
	}

	st := s.Stats()
	if st.Cold != 1 {
		t.Errorf("expected the stale warm chunk to be demoted to cold, got cold=%d", st.Cold)
	}
}

func TestCompactDropsChunksPastRetention(t *testing.T) {
	s := NewStore()
	s.retention = time.Millisecond
	s.StoreMessage("user", "very old", 1)
	s.chunks[0].Tier = TierCold
	s.chunks[0].CreatedAt = time.Now().Add(-24 * time.Hour)

	if err := s.compact(); err != nil {
		t.Fatalf("compact: %v", err)
	}

	if len(s.chunks) != 0 {
		t.Errorf("expected the chunk past retention to be dropped, got %d remaining", len(s.chunks))
	}
}

func TestClearDropsAllChunks(t *testing.T) {
	s := NewStore()
	s.StoreMessage("user", "one", 1)
	s.StoreToolCall("grep", `{"pattern":"x"}`, "no matches", false, 1)

	s.Clear()

	st := s.Stats()
	if st.Hot+st.Warm+st.Cold != 0 {
		t.Errorf("expected Clear to drop every chunk, got %+v", st)
	}
}

func TestBackgroundCompactionStopsCleanly(t *testing.T) {
	s := NewStore()
	handle := s.StartBackgroundCompaction(time.Hour)
	handle.Stop()
	handle.Stop() // must be safe to call twice
}
