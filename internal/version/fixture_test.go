package version

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/liangyou/nodeswitch/internal/storage"
	"github.com/liangyou/nodeswitch/pkg/models"
)

// nvmFixture 在临时目录中搭建 nvm 的目录结构。
type nvmFixture struct {
	t   *testing.T
	cfg models.Config
}

func newNVMFixture(t *testing.T) *nvmFixture {
	t.Helper()
	nvmDir := filepath.Join(t.TempDir(), ".nvm")
	if err := os.MkdirAll(nvmDir, 0o755); err != nil {
		t.Fatalf("mkdir nvm dir: %v", err)
	}
	return &nvmFixture{
		t:   t,
		cfg: models.Config{NVMDir: nvmDir, Path: "/usr/local/bin:/usr/bin:/bin"}.WithDefaults(),
	}
}

// install 在 rel 根目录下创建版本目录并返回其路径。
func (f *nvmFixture) install(rel, name string) string {
	f.t.Helper()
	dir := filepath.Join(f.cfg.NVMDir, rel, name)
	if err := os.MkdirAll(filepath.Join(dir, "bin"), 0o755); err != nil {
		f.t.Fatalf("mkdir %s: %v", dir, err)
	}
	return dir
}

func (f *nvmFixture) alias(name, content string) {
	f.t.Helper()
	path := filepath.Join(f.cfg.NVMDir, "alias", filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		f.t.Fatalf("mkdir alias dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		f.t.Fatalf("write alias %s: %v", name, err)
	}
}

func (f *nvmFixture) store() *storage.FileStorage {
	f.t.Helper()
	store, err := storage.NewFileStorage(f.cfg, nil)
	if err != nil {
		f.t.Fatalf("NewFileStorage: %v", err)
	}
	return store
}

func (f *nvmFixture) resolver() *Resolver {
	return NewResolver(f.store(), NewLocator(f.cfg, nil), f.cfg, nil)
}
