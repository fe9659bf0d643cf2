package reconciler

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/bentalba/taawidaty/logging"
	"golang.org/x/text/encoding/charmap"
)

// DownloadFeedFile fetches a feed file to destPath, re-encoding to
// UTF-8 when the upstream serves Latin-1 (the official exports mix
// both). The download is atomic from the engine's point of view: on
// any error the destination is left untouched.
func DownloadFeedFile(url string, destPath string) error {
	cleanPath := filepath.Clean(destPath)

	client := &http.Client{
		Timeout: 5 * time.Minute,
	}
	response, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d downloading %s", response.StatusCode, url)
	}

	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Some exports arrive in ISO-8859-1, some in UTF-8; sniff first.
	var reader io.Reader
	if utf8.Valid(bodyBytes) {
		reader = bytes.NewReader(bodyBytes)
	} else {
		reader = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	}

	tmpPath := cleanPath + ".download"
	outFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", tmpPath, err)
	}

	writer := bufio.NewWriter(outFile)
	if _, err := io.Copy(writer, reader); err != nil {
		outFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := writer.Flush(); err != nil {
		outFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush %s: %w", tmpPath, err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, cleanPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move %s into place: %w", tmpPath, err)
	}

	logging.Debug("Feed file downloaded", "url", url, "path", cleanPath)
	return nil
}
