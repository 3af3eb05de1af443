package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/liangyou/nodeswitch/pkg/models"
)

func TestCheckerValidateSupportedPlatform(t *testing.T) {
	t.Parallel()

	checker := NewChecker(models.Config{NVMDir: t.TempDir()})
	checker.goos = func() string { return "linux" }

	if err := checker.Validate(); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestCheckerUnsupportedOS(t *testing.T) {
	t.Parallel()

	checker := NewChecker(models.Config{NVMDir: t.TempDir()})
	checker.goos = func() string { return "windows" }

	if err := checker.Validate(); err == nil {
		t.Fatal("expected error for unsupported os")
	}
}

func TestCheckerMissingNVMDir(t *testing.T) {
	t.Parallel()

	checker := NewChecker(models.Config{NVMDir: filepath.Join(t.TempDir(), "missing")})
	checker.goos = func() string { return "darwin" }

	if err := checker.Validate(); err == nil {
		t.Fatal("expected error for missing nvm dir")
	}
}

func TestCheckerNVMDirIsFile(t *testing.T) {
	t.Parallel()

	filePath := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(filePath, []byte("content"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	checker := NewChecker(models.Config{NVMDir: filePath})
	checker.goos = func() string { return "linux" }

	if err := checker.Validate(); err == nil {
		t.Fatal("expected error due to invalid directory")
	}
}
