package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/vertextoedge/validfiles/internal/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestNewManager_CreatesDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "store")

	m, err := NewManagerWithBufferSize(root, 0)
	if err != nil {
		t.Fatalf("NewManagerWithBufferSize() error = %v", err)
	}
	if m.RootDir() != root {
		t.Errorf("RootDir() = %q, want %q", m.RootDir(), root)
	}
	if m.bufferSize != 1024*1024 {
		t.Errorf("bufferSize = %d, want default", m.bufferSize)
	}
	if info, err := os.Stat(filepath.Join(root, tempDirName)); err != nil || !info.IsDir() {
		t.Errorf("temp dir not created: %v", err)
	}
}

func TestManager_SaveRoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	content := []byte("this is a test file")

	name, err := m.Save(ctx, "temp_test_file.txt", content)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if name != "temp_test_file.txt" {
		t.Errorf("Save() name = %q, want %q", name, "temp_test_file.txt")
	}

	got, err := os.ReadFile(filepath.Join(m.RootDir(), "temp_test_file.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("stored content = %q, want %q", got, content)
	}

	rc, info, err := m.Open(ctx, "temp_test_file.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	read, _ := io.ReadAll(rc)
	if string(read) != string(content) {
		t.Errorf("Open() content = %q, want %q", read, content)
	}
	if info.Size != int64(len(content)) {
		t.Errorf("Open() size = %d, want %d", info.Size, len(content))
	}
}

func TestManager_SaveOverwritesAndAcceptsEmpty(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Save(ctx, "a.txt", []byte("first")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := m.Save(ctx, "a.txt", nil); err != nil {
		t.Fatalf("Save() empty error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(m.RootDir(), "a.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("content after overwrite = %q, want empty", got)
	}

	// no temp files left behind
	entries, _ := os.ReadDir(filepath.Join(m.RootDir(), tempDirName))
	if len(entries) != 0 {
		t.Errorf("temp dir has %d entries, want 0", len(entries))
	}
}

func TestManager_InvalidNames(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for _, name := range []string{"", ".", "..", "../escape.txt", "dir/file.txt", `dir\file.txt`, tempDirName, "nul\x00byte"} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Save(ctx, name, []byte("x"))
			if !errors.Is(err, domain.ErrInvalidFileName) {
				t.Errorf("Save(%q) error = %v, want ErrInvalidFileName", name, err)
			}
			if !domain.IsStorageError(err) {
				t.Errorf("Save(%q) error should be a StorageError", name)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(filepath.Dir(m.RootDir()), "escape.txt")); err == nil {
		t.Error("file escaped the storage root")
	}
}

func TestManager_Delete(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	path := filepath.Join(m.RootDir(), "temp_test_file.txt")
	if err := os.WriteFile(path, []byte("test file"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := m.Delete(ctx, "temp_test_file.txt"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists after Delete()")
	}

	err := m.Delete(ctx, "temp_test_file.txt")
	if !errors.Is(err, domain.ErrFileNotFound) {
		t.Errorf("second Delete() error = %v, want ErrFileNotFound", err)
	}
}

func TestManager_DeleteDirectoryIsNotFound(t *testing.T) {
	m := newTestManager(t)
	if err := os.Mkdir(filepath.Join(m.RootDir(), "subdir"), 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	err := m.Delete(context.Background(), "subdir")
	if !errors.Is(err, domain.ErrFileNotFound) {
		t.Errorf("Delete(dir) error = %v, want ErrFileNotFound", err)
	}
}

func TestManager_List(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	names := []string{"file1.txt", "file2.txt", "file3.txt"}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(m.RootDir(), name), []byte("test content"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	// directories are not stored files
	if err := os.Mkdir(filepath.Join(m.RootDir(), "subdir"), 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	files, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	got := make([]string, 0, len(files))
	for _, f := range files {
		got = append(got, f.FileName)
		if f.Size != int64(len("test content")) {
			t.Errorf("%s size = %d, want %d", f.FileName, f.Size, len("test content"))
		}
	}
	sort.Strings(got)
	if len(got) != len(names) {
		t.Fatalf("List() returned %v, want %v", got, names)
	}
	for i := range names {
		if got[i] != names[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], names[i])
		}
	}
}

func TestManager_ListEmpty(t *testing.T) {
	m := newTestManager(t)

	files, err := m.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if files == nil || len(files) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", files)
	}
}

func TestManager_OpenMissing(t *testing.T) {
	m := newTestManager(t)

	_, _, err := m.Open(context.Background(), "nope.txt")
	if !errors.Is(err, domain.ErrFileNotFound) {
		t.Errorf("Open() error = %v, want ErrFileNotFound", err)
	}
}

func TestManager_CanceledContext(t *testing.T) {
	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Save(ctx, "a.txt", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Save() error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(filepath.Join(m.RootDir(), "a.txt")); !os.IsNotExist(err) {
		t.Error("Save() wrote a file despite canceled context")
	}
}

func TestManager_CleanOldTempFiles(t *testing.T) {
	m := newTestManager(t)
	tempDir := filepath.Join(m.RootDir(), tempDirName)

	oldFile := filepath.Join(tempDir, "old"+tempFileExt)
	newFile := filepath.Join(tempDir, "new"+tempFileExt)
	other := filepath.Join(tempDir, "keep.txt")
	for _, p := range []string{oldFile, newFile, other} {
		if err := os.WriteFile(p, []byte("partial"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldFile, past, past); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}
	if err := os.Chtimes(other, past, past); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	count, err := m.CleanOldTempFiles(time.Hour)
	if err != nil {
		t.Fatalf("CleanOldTempFiles() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CleanOldTempFiles() = %d, want 1", count)
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("old temp file should be removed")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Error("recent temp file should be kept")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("non-temp file should be kept")
	}
}

func TestManager_GetDiskUsage(t *testing.T) {
	m := newTestManager(t)

	usage, err := m.GetDiskUsage()
	if err != nil {
		t.Fatalf("GetDiskUsage() error = %v", err)
	}
	if usage.Total == 0 {
		t.Error("Total = 0, want > 0")
	}
	if usage.UsedPct < 0 || usage.UsedPct > 100 {
		t.Errorf("UsedPct = %f, want within [0, 100]", usage.UsedPct)
	}
}

func TestManager_Ping(t *testing.T) {
	m := newTestManager(t)

	if err := m.Ping(); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	if err := os.RemoveAll(filepath.Join(m.RootDir(), tempDirName)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(m.RootDir(), tempDirName), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := m.Ping(); err == nil {
		t.Error("Ping() with temp dir replaced by a file should fail")
	}

	if err := os.RemoveAll(m.RootDir()); err != nil {
		t.Fatal(err)
	}
	if err := m.Ping(); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Ping() error = %v, want not exist", err)
	}
}
