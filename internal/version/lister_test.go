package version

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/liangyou/nodeswitch/pkg/models"
)

type fakeLocator struct {
	versions []models.Version
	err      error
}

func (f *fakeLocator) ListInstalled(context.Context) ([]models.Version, error) {
	return f.versions, f.err
}

func (f *fakeLocator) FindInstalled(_ context.Context, target models.Version) (models.Version, error) {
	v, ok := Newest(f.versions, target.Matches)
	if !ok {
		return models.Version{}, ErrNotFound
	}
	return v, nil
}

func TestLocalVersionsMarksCurrentAndSorts(t *testing.T) {
	t.Parallel()

	locator := &fakeLocator{versions: []models.Version{
		models.NewVersion(16, 20, 2).WithLocation("/n/.nvm/versions/node/v16.20.2"),
		models.NewVersion(20, 11, 1).WithLocation("/n/.nvm/versions/node/v20.11.1"),
		models.NewVersion(18, 2, 0).WithLocation("/n/.nvm/versions/node/v18.2.0"),
	}}
	cfg := models.Config{NVMDir: "/n/.nvm", Path: "/n/.nvm/versions/node/v18.2.0/bin:/usr/bin"}

	entries, err := NewLister(cfg, locator).LocalVersions(context.Background())
	if err != nil {
		t.Fatalf("LocalVersions err: %v", err)
	}
	if len(entries) != 3 || entries[0].Version.String() != "v20.11.1" || entries[2].Version.String() != "v16.20.2" {
		t.Fatalf("expected descending order, got %#v", entries)
	}
	if !entries[1].IsCurrent || entries[0].IsCurrent || entries[2].IsCurrent {
		t.Fatalf("expected current flag on v18.2.0 only: %#v", entries)
	}
}

func TestLocalVersionsPropagatesError(t *testing.T) {
	t.Parallel()

	lister := NewLister(models.Config{NVMDir: "/n/.nvm"}, &fakeLocator{err: ErrNoRoots})
	if _, err := lister.LocalVersions(context.Background()); !errors.Is(err, ErrNoRoots) {
		t.Fatalf("expected ErrNoRoots, got %v", err)
	}
}

func TestCurrentVersionSystem(t *testing.T) {
	t.Parallel()

	lister := NewLister(models.Config{NVMDir: "/n/.nvm", Path: "/usr/bin"}, &fakeLocator{})
	if got := lister.CurrentVersion(); got != nil {
		t.Fatalf("expected system runtime, got %s", got)
	}
}

func TestFormatLocalVersion(t *testing.T) {
	t.Parallel()

	out := FormatLocalVersion(Entry{
		Version:   models.NewVersion(3, 3, 1).WithLocation("/n/.nvm/versions/io.js/v3.3.1"),
		IsCurrent: true,
	})
	if !strings.HasPrefix(out, "*") || !strings.Contains(out, "io.js") || !strings.Contains(out, "/n/.nvm/versions/io.js/v3.3.1") {
		t.Fatalf("local format missing info: %s", out)
	}

	out = FormatLocalVersion(Entry{Version: models.NewVersion(18)})
	if !strings.Contains(out, "(unknown path)") {
		t.Fatalf("expected unknown path marker: %s", out)
	}
}
