package catalog

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"
	"time"

	"github.com/aravindh-murugesan/snapsentry-rotate/internal/policy"
)

var discard = slog.New(slog.DiscardHandler)

func dir() *fstest.MapFile {
	return &fstest.MapFile{Mode: os.ModeDir | 0o755}
}

func names(snaps []policy.Snapshot) []string {
	out := make([]string, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, filepath.Base(s.Path))
	}
	return out
}

func TestList(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want []string
	}{
		{
			name: "Empty Directory",
			fsys: fstest.MapFS{},
			want: nil,
		},
		{
			name: "Sorted By Timestamp Not Name",
			fsys: fstest.MapFS{
				"2024-01-02 00:00": dir(),
				"2023-12-31 23:59": dir(),
				"2024-01-01":       dir(),
			},
			want: []string{"2023-12-31 23:59", "2024-01-01", "2024-01-02 00:00"},
		},
		{
			name: "Skips Files And Foreign Names",
			fsys: fstest.MapFS{
				"2024-01-01 00:00":     dir(),
				"2024-01-02 00:00":     &fstest.MapFile{Data: []byte("not a snapshot")},
				"lost+found":           dir(),
				"rotate.conf":          &fstest.MapFile{Data: []byte("[daily]")},
				"2024-01-03 00:00/etc": &fstest.MapFile{Data: []byte("nested file")},
			},
			want: []string{"2024-01-01 00:00", "2024-01-03 00:00"},
		},
		{
			name: "Names With Surrounding Whitespace",
			fsys: fstest.MapFS{
				" 2024-01-01 00:00 ": dir(),
				"2024-01-02 00:00 ":  dir(),
				"2024-01-03 00:00":   dir(),
			},
			want: []string{"2024-01-03 00:00"},
		},
		{
			name: "Ties Keep Enumeration Order",
			fsys: fstest.MapFS{
				"2024-01-01T00:00": dir(),
				"2024-01-01 00:00": dir(),
				"2023-01-01 00:00": dir(),
			},
			want: []string{"2023-01-01 00:00", "2024-01-01 00:00", "2024-01-01T00:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := List(tt.fsys, "/snaps/daily", discard)
			if err != nil {
				t.Fatalf("List() unexpected error: %v", err)
			}
			if !slices.Equal(names(got), tt.want) {
				t.Errorf("List() = %v, want %v", names(got), tt.want)
			}
		})
	}
}

func TestList_Paths(t *testing.T) {
	fsys := fstest.MapFS{"2024-03-07 14:30": dir()}

	got, err := List(fsys, "/snaps/daily", discard)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List() returned %d snapshots, want 1", len(got))
	}

	if got[0].Path != filepath.Join("/snaps/daily", "2024-03-07 14:30") {
		t.Errorf("Path = %q", got[0].Path)
	}
	want := time.Date(2024, 3, 7, 14, 30, 0, 0, time.UTC)
	if !got[0].When.Equal(want) {
		t.Errorf("When = %s, want %s", got[0].When, want)
	}
}

func TestList_Stable(t *testing.T) {
	fsys := fstest.MapFS{
		"2024-01-01 00:00": dir(),
		"2024-01-01T00:00": dir(),
		"2024-01-01":       dir(),
	}

	first, _ := List(fsys, "/s", discard)
	second, _ := List(fsys, "/s", discard)
	if !slices.Equal(names(first), names(second)) {
		t.Errorf("List() not stable: %v then %v", names(first), names(second))
	}
}

func TestListDir(t *testing.T) {
	root := t.TempDir()

	t.Run("Missing Directory", func(t *testing.T) {
		got, err := ListDir(filepath.Join(root, "does-not-exist"), discard)
		if err != nil {
			t.Fatalf("ListDir() unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ListDir() = %v, want empty", names(got))
		}
	})

	t.Run("Real Directory With Symlink", func(t *testing.T) {
		section := filepath.Join(root, "weekly")
		for _, name := range []string{"2024-01-08 00:00", "2024-01-01 00:00", "not-a-date"} {
			if err := os.MkdirAll(filepath.Join(section, name), 0o755); err != nil {
				t.Fatal(err)
			}
		}
		if err := os.WriteFile(filepath.Join(section, "2024-01-15 00:00"), nil, 0o644); err != nil {
			t.Fatal(err)
		}

		target := filepath.Join(root, "elsewhere")
		if err := os.Mkdir(target, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.Symlink(target, filepath.Join(section, "2024-01-22 00:00")); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}

		got, err := ListDir(section, discard)
		if err != nil {
			t.Fatalf("ListDir() unexpected error: %v", err)
		}

		want := []string{"2024-01-01 00:00", "2024-01-08 00:00", "2024-01-22 00:00"}
		if !slices.Equal(names(got), want) {
			t.Errorf("ListDir() = %v, want %v", names(got), want)
		}
	})
}
