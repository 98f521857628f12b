package dataset

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsafePath indicates an archive entry that would extract outside the
// destination directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Downloader fetches and unpacks the MovieLens zip archive.
type Downloader struct {
	client   *http.Client
	logger   *slog.Logger
	attempts int
	delay    time.Duration
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) { d.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) DownloaderOption {
	return func(d *Downloader) { d.logger = l }
}

// WithRetry sets the number of attempts and the initial delay, which doubles
// after each failure.
func WithRetry(attempts int, delay time.Duration) DownloaderOption {
	return func(d *Downloader) {
		if attempts > 0 {
			d.attempts = attempts
		}
		d.delay = delay
	}
}

// NewDownloader creates a Downloader.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client:   &http.Client{Timeout: 10 * time.Minute},
		logger:   slog.Default(),
		attempts: 4,
		delay:    2 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fetch downloads the archive at url and extracts it into destDir, returning
// a source for the unpacked files. An existing dataset under destDir is
// reused without downloading.
func (d *Downloader) Fetch(ctx context.Context, url, destDir string) (CSVSource, error) {
	if src, err := Locate(destDir); err == nil {
		d.logger.Info("dataset already present", "dir", src.Dir())
		return src, nil
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return CSVSource{}, fmt.Errorf("create dataset directory: %w", err)
	}

	archive, err := os.CreateTemp(destDir, "download-*.zip")
	if err != nil {
		return CSVSource{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = archive.Close()
		_ = os.Remove(archive.Name())
	}()

	d.logger.Info("downloading dataset", "url", url)
	start := time.Now()

	delay := d.delay
	for i := 0; i < d.attempts; i++ {
		if i > 0 {
			d.logger.Warn("dataset download failed, retrying", "attempt", i+1, "delay", delay, "error", err)
			select {
			case <-ctx.Done():
				return CSVSource{}, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if err = d.download(ctx, url, archive); err == nil {
			break
		}
	}
	if err != nil {
		return CSVSource{}, err
	}

	if err := Extract(archive.Name(), destDir); err != nil {
		return CSVSource{}, err
	}
	d.logger.Info("dataset downloaded", "dir", destDir, "duration", time.Since(start))
	return Locate(destDir)
}

func (d *Downloader) download(ctx context.Context, url string, dst *os.File) error {
	if err := dst.Truncate(0); err != nil {
		return fmt.Errorf("truncate archive: %w", err)
	}
	if _, err := dst.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind archive: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// Extract unpacks a zip archive into destDir.
func Extract(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if errors.Is(err, zip.ErrInsecurePath) {
		_ = zr.Close()
		return fmt.Errorf("%w: %w", ErrUnsafePath, err)
	}
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close() //nolint:errcheck

	root, err := filepath.Abs(destDir)
	if err != nil {
		return err
	}

	for _, f := range zr.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close() //nolint:errcheck

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
