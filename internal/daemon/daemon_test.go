package daemon

import (
	"context"
	"path/filepath"
	"testing"

	"triage/internal/asana"
	"triage/internal/config"
	"triage/internal/logging"
	"triage/internal/source"
	"triage/internal/triage"
)

type fakeClient struct {
	asana.Client
}

func (fakeClient) ProjectByGID(_ context.Context, gid string) (*asana.Project, error) {
	return &asana.Project{GID: gid, Name: "Bugs"}, nil
}

func (fakeClient) TasksByProject(context.Context, *asana.Project, asana.TaskFilter) ([]*asana.Task, error) {
	return nil, nil
}

func newDaemon(t *testing.T, lockPath string) *Daemon {
	t.Helper()
	src := source.NewPolling("100", source.PollingOptions{})
	triager, err := triage.New(context.Background(), fakeClient{}, src, triage.Options{Workers: 1})
	if err != nil {
		t.Fatalf("new triager: %v", err)
	}
	cfg := &config.Config{}
	cfg.Daemon.LockPath = lockPath
	d, err := New(cfg, triager, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	return d
}

func TestStartEnforcesSingleInstance(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "triaged.lock")
	first := newDaemon(t, lockPath)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer first.Stop()

	second := newDaemon(t, lockPath)
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second daemon acquired an already held lock")
	}
}

func TestStopReleasesLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "triaged.lock")
	first := newDaemon(t, lockPath)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	first.Stop()

	second := newDaemon(t, lockPath)
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("start after release: %v", err)
	}
	second.Stop()
}

func TestNewRejectsBadSortInterval(t *testing.T) {
	src := source.NewPolling("100", source.PollingOptions{})
	triager, err := triage.New(context.Background(), fakeClient{}, src, triage.Options{Workers: 1})
	if err != nil {
		t.Fatalf("new triager: %v", err)
	}
	cfg := &config.Config{}
	cfg.Daemon.SortInterval = "soon"
	if _, err := New(cfg, triager, logging.NewNop()); err == nil {
		t.Fatal("expected error for unparseable sort interval")
	}
}
