package model

import (
	"testing"
	"time"

	"github.com/BugaPunk/WorkflowS-sub001/internal/docstore"
)

// Every entity must expose the embedded envelope through the promoted
// accessor; a field or method named like the accessor would shadow it.
var (
	_ docstore.Doc = (*User)(nil)
	_ docstore.Doc = (*Session)(nil)
	_ docstore.Doc = (*Project)(nil)
	_ docstore.Doc = (*ProjectMember)(nil)
	_ docstore.Doc = (*Sprint)(nil)
	_ docstore.Doc = (*UserStory)(nil)
	_ docstore.Doc = (*Task)(nil)
	_ docstore.Doc = (*Comment)(nil)
	_ docstore.Doc = (*Report)(nil)
	_ docstore.Doc = (*ReportSchedule)(nil)
)

func TestEnvAccessorReachesEmbeddedFields(t *testing.T) {
	u := &User{Username: "alice"}
	u.Env().ID = "u-1"
	if u.ID != "u-1" {
		t.Fatalf("accessor did not reach embedded envelope: %+v", u)
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Minute)}
	if s.Expired(now) {
		t.Fatal("session expired before its deadline")
	}
	if !s.Expired(now.Add(2 * time.Minute)) {
		t.Fatal("session not expired after its deadline")
	}
}
