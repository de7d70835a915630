package sweep

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadSiteFile_TrimsAndPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sites.txt")
	content := "  https://tenant/sites/a  \n\n# staging, re-enable later\nhttps://tenant/sites/b\n   \nhttps://tenant/sites/c\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	sites, err := ReadSiteFile(path)
	if err != nil {
		t.Fatalf("ReadSiteFile failed: %v", err)
	}

	want := []string{
		"https://tenant/sites/a",
		"https://tenant/sites/b",
		"https://tenant/sites/c",
	}
	if len(sites) != len(want) {
		t.Fatalf("got %d sites, want %d: %v", len(sites), len(want), sites)
	}
	for i := range want {
		if sites[i] != want[i] {
			t.Errorf("site %d = %q, want %q", i, sites[i], want[i])
		}
	}
}

func TestReadSiteFile_MissingFileFails(t *testing.T) {
	if _, err := ReadSiteFile(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("expected error for missing site list")
	}
}
