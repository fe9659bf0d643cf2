package reconciler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"
)

func TestDownloadFeedFile(t *testing.T) {
	content := "CODE\tNOM\nabc\tDOLIPRANE 1000 MG\n"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(content))
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "guide.tsv")
	if err := DownloadFeedFile(ts.URL, dest); err != nil {
		t.Fatalf("DownloadFeedFile failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Errorf("downloaded content differs:\n%q\n%q", got, content)
	}
}

func TestDownloadFeedFileLatin1(t *testing.T) {
	// "COMPRIMÉ" with É as ISO-8859-1 byte 0xC9.
	latin1 := []byte{'C', 'O', 'M', 'P', 'R', 'I', 'M', 0xC9}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(latin1)
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "guide.tsv")
	if err := DownloadFeedFile(ts.URL, dest); err != nil {
		t.Fatalf("DownloadFeedFile failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !utf8.Valid(got) {
		t.Fatal("output is not valid UTF-8")
	}
	if string(got) != "COMPRIMÉ" {
		t.Errorf("re-encoded content = %q, want COMPRIMÉ", got)
	}
}

func TestDownloadFeedFileBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "guide.tsv")
	if err := DownloadFeedFile(ts.URL, dest); err == nil {
		t.Fatal("expected an error on a non-200 status")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination must not exist after a failed download")
	}
}
