// Package ffmpeg locates the ffmpeg and ffprobe binaries used for media
// plumbing. Explicit paths win, then PATH, then a per-user cached download.
package ffmpeg

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	EnvFFmpegPath  = "KARA_FFMPEG_PATH"
	EnvFFprobePath = "KARA_FFPROBE_PATH"

	releaseVersion = "6.1"
	releaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// Locator resolves binary paths. The zero value is not usable; see
// DefaultLocator.
type Locator struct {
	Getenv   func(string) string
	LookPath func(string) (string, error)
	CacheDir string
	// nil disables the download fallback
	Client *http.Client
	GOOS   string
	GOARCH string
}

func DefaultLocator() *Locator {
	cacheDir, err := os.UserCacheDir()
	if err != nil || cacheDir == "" {
		cacheDir = os.TempDir()
	}
	return &Locator{
		Getenv:   os.Getenv,
		LookPath: exec.LookPath,
		CacheDir: filepath.Join(cacheDir, "kara", "ffmpeg"),
		Client:   &http.Client{Timeout: 5 * time.Minute},
		GOOS:     runtime.GOOS,
		GOARCH:   runtime.GOARCH,
	}
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensured    BinaryPaths
)

// Ensure resolves the binaries once per process.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensured, ensureErr = DefaultLocator().Locate()
	})
	return ensured, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func (l *Locator) Locate() (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  l.Getenv(EnvFFmpegPath),
		FFprobe: l.Getenv(EnvFFprobePath),
	}
	if paths.FFmpeg == "" {
		if found, err := l.LookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := l.LookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}
	if paths.FFmpeg != "" && paths.FFprobe != "" {
		return paths, nil
	}

	installDir := filepath.Join(l.CacheDir, releaseVersion, l.GOOS, l.GOARCH)
	cached := BinaryPaths{
		FFmpeg:  filepath.Join(installDir, "ffmpeg"+l.exeSuffix()),
		FFprobe: filepath.Join(installDir, "ffprobe"+l.exeSuffix()),
	}
	if binariesExist(cached) {
		return cached, nil
	}

	if l.Client == nil {
		return BinaryPaths{}, errors.New(
			"ffmpeg not found: install ffmpeg or set " + EnvFFmpegPath + " and " + EnvFFprobePath,
		)
	}

	assetName, err := assetForPlatform(l.GOOS, l.GOARCH)
	if err != nil {
		return BinaryPaths{}, err
	}
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("failed to create ffmpeg cache dir: %w", err)
	}
	if err := l.download(assetName, installDir); err != nil {
		return BinaryPaths{}, err
	}
	if !binariesExist(cached) {
		return BinaryPaths{}, errors.New("ffmpeg binaries not found after extraction")
	}

	if l.GOOS != "windows" {
		for _, p := range []string{cached.FFmpeg, cached.FFprobe} {
			if err := os.Chmod(p, 0o755); err != nil {
				return BinaryPaths{}, fmt.Errorf("failed to chmod %s: %w", filepath.Base(p), err)
			}
		}
	}
	return cached, nil
}

func (l *Locator) exeSuffix() string {
	if l.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

func assetForPlatform(goos, goarch string) (string, error) {
	var platform string
	switch {
	case goos == "linux" && goarch == "amd64":
		platform = "linux-64"
	case goos == "linux" && goarch == "arm64":
		platform = "linux-arm-64"
	case goos == "darwin" && goarch == "amd64":
		platform = "macos-64"
	case goos == "windows" && goarch == "amd64":
		platform = "win-64"
	default:
		return "", fmt.Errorf("unsupported platform for bundled ffmpeg: %s/%s", goos, goarch)
	}
	return "ffmpeg-" + releaseVersion + "-" + platform + ".zip", nil
}

func (l *Locator) download(assetName, installDir string) error {
	url := fmt.Sprintf("%s/v%s/%s", releaseBaseURL, releaseVersion, assetName)
	resp, err := l.Client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "kara-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temp archive: %w", err)
	}
	archivePath := tmp.Name()
	defer func() { _ = os.Remove(archivePath) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}

	if err := extractArchive(archivePath, installDir, l.exeSuffix()); err != nil {
		return fmt.Errorf("failed to extract %s: %w", assetName, err)
	}
	return nil
}

// pulls ffmpeg and ffprobe out of the archive, wherever they sit in it
func extractArchive(archivePath, installDir, suffix string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open ffmpeg archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	found := map[string]bool{}
	for _, file := range zr.File {
		name := strings.TrimSuffix(strings.ToLower(filepath.Base(file.Name)), ".exe")
		if name != "ffmpeg" && name != "ffprobe" {
			continue
		}
		if err := extractZipFile(file, filepath.Join(installDir, name+suffix)); err != nil {
			return err
		}
		found[name] = true
	}

	if !found["ffmpeg"] || !found["ffprobe"] {
		return errors.New("ffmpeg archive missing required binaries")
	}
	return nil
}

func extractZipFile(file *zip.File, dest string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry: %w", err)
	}
	defer func() { _ = reader.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(dest), err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(dest), err)
	}
	return nil
}

func binariesExist(p BinaryPaths) bool {
	return fileExists(p.FFmpeg) && fileExists(p.FFprobe)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
