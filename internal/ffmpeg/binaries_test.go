package ffmpeg

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testLocator(env map[string]string, onPath map[string]string, cacheDir string) *Locator {
	return &Locator{
		Getenv: func(k string) string { return env[k] },
		LookPath: func(name string) (string, error) {
			if p, ok := onPath[name]; ok {
				return p, nil
			}
			return "", errors.New("not found")
		},
		CacheDir: cacheDir,
		GOOS:     "linux",
		GOARCH:   "amd64",
	}
}

func TestLocate(t *testing.T) {
	cacheDir := t.TempDir()

	tests := []struct {
		name    string
		env     map[string]string
		onPath  map[string]string
		want    BinaryPaths
		wantErr bool
	}{
		{
			name: "environment wins",
			env:  map[string]string{EnvFFmpegPath: "/opt/ff/ffmpeg", EnvFFprobePath: "/opt/ff/ffprobe"},
			onPath: map[string]string{
				"ffmpeg":  "/usr/bin/ffmpeg",
				"ffprobe": "/usr/bin/ffprobe",
			},
			want: BinaryPaths{FFmpeg: "/opt/ff/ffmpeg", FFprobe: "/opt/ff/ffprobe"},
		},
		{
			name:   "mixed environment and PATH",
			env:    map[string]string{EnvFFmpegPath: "/opt/ff/ffmpeg"},
			onPath: map[string]string{"ffprobe": "/usr/bin/ffprobe"},
			want:   BinaryPaths{FFmpeg: "/opt/ff/ffmpeg", FFprobe: "/usr/bin/ffprobe"},
		},
		{
			name:    "nothing found without download",
			onPath:  map[string]string{"ffmpeg": "/usr/bin/ffmpeg"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := testLocator(tt.env, tt.onPath, cacheDir).Locate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestLocateUsesCache(t *testing.T) {
	cacheDir := t.TempDir()
	installDir := filepath.Join(cacheDir, releaseVersion, "linux", "amd64")
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		if err := os.WriteFile(filepath.Join(installDir, name), []byte("bin"), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	got, err := testLocator(nil, nil, cacheDir).Locate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FFmpeg != filepath.Join(installDir, "ffmpeg") {
		t.Errorf("expected cached ffmpeg, got %s", got.FFmpeg)
	}
}

func TestAssetForPlatform(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"linux", "amd64", "ffmpeg-6.1-linux-64.zip", false},
		{"linux", "arm64", "ffmpeg-6.1-linux-arm-64.zip", false},
		{"darwin", "amd64", "ffmpeg-6.1-macos-64.zip", false},
		{"windows", "amd64", "ffmpeg-6.1-win-64.zip", false},
		{"plan9", "386", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := assetForPlatform(tt.goos, tt.goarch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("assetForPlatform() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtractArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bundle.zip")

	f, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, name := range []string{"bundle/FFMPEG", "bundle/ffprobe", "README"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = w.Write([]byte("content of " + name))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	out := filepath.Join(dir, "out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := extractArchive(archive, out, ""); err != nil {
		t.Fatalf("extractArchive failed: %v", err)
	}
	if !binariesExist(BinaryPaths{
		FFmpeg:  filepath.Join(out, "ffmpeg"),
		FFprobe: filepath.Join(out, "ffprobe"),
	}) {
		t.Error("expected both binaries to be extracted")
	}
}
