package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
	"github.com/BugaPunk/WorkflowS-sub001/internal/kv/kvtest"
)

func makePGEngine(t *testing.T) kv.Engine {
	t.Helper()
	dsn := os.Getenv("WORKFLOWS_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("WORKFLOWS_POSTGRES_DSN not set; skipping postgres engine integration test")
	}
	e, err := Open(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() {
		// clear the shared table so reruns start clean
		pairs, _ := e.Scan(context.Background(), nil, kv.ScanOptions{})
		for _, p := range pairs {
			_ = e.Delete(context.Background(), p.Key)
		}
		_ = e.Close()
	})
	return e
}

func TestPostgresEngine_Compliance(t *testing.T) {
	kvtest.Run(t, makePGEngine)
}
