package download

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvrzn/grabbot/config"
)

// Format is the user's choice of output: audio-only or muxed video.
type Format string

const (
	FormatAudio Format = "mp3"
	FormatVideo Format = "mp4"
)

// ParseFormat maps a callback payload to a Format.
func ParseFormat(data string) (Format, bool) {
	switch Format(data) {
	case FormatAudio:
		return FormatAudio, true
	case FormatVideo:
		return FormatVideo, true
	}
	return "", false
}

// Fetcher produces a media file inside the given scratch directory.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, format Format, dir string) (string, error)
}

// Service shells out to yt-dlp. ExecFunc is swapped in tests.
type Service struct {
	cfg      *config.Config
	ExecFunc func(ctx context.Context, args []string) ([]byte, error)
}

func NewService(cfg *config.Config) *Service {
	s := &Service{cfg: cfg}
	s.ExecFunc = s.runFetcher
	return s
}

// Fetch downloads the media at rawURL into dir and returns the path of the
// produced file. All files are written inside dir; any underlying failure is
// returned as a *FetchError.
func (s *Service) Fetch(ctx context.Context, rawURL string, format Format, dir string) (string, error) {
	logrus.WithFields(logrus.Fields{
		"url":    rawURL,
		"format": format,
	}).Info("Starting download")

	output, err := s.ExecFunc(ctx, s.buildArgs(rawURL, format, dir))
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	path, err := resolveOutput(dir, format, declaredFilename(output))
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"url":  rawURL,
		"path": path,
	}).Info("Download completed")
	return path, nil
}

func (s *Service) buildArgs(rawURL string, format Format, dir string) []string {
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"--restrict-filenames",
		"--max-filesize", fmt.Sprintf("%dM", s.cfg.MaxFileSizeMB),
		"--no-simulate",
		"--print", "filename",
		"-o", filepath.Join(dir, "%(title).70s.%(ext)s"),
	}

	if s.cfg.FFmpegPath != "" {
		args = append(args, "--ffmpeg-location", s.cfg.FFmpegPath)
	}

	switch format {
	case FormatAudio:
		args = append(args,
			"-f", "bestaudio/best",
			"--extract-audio",
			"--audio-format", "mp3",
			"--audio-quality", s.cfg.AudioBitrate,
		)
	default:
		args = append(args,
			"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]",
			"--merge-output-format", "mp4",
		)
	}

	return append(args, rawURL)
}

func (s *Service) runFetcher(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.cfg.YTDLPPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "yt-dlp failed: %s", strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

// declaredFilename extracts the output path yt-dlp printed. The last stdout
// line is the expanded output template, before any post-processing renames it.
func declaredFilename(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// resolveOutput locates the file actually produced, handling the cases where
// post-processing renamed the declared output. For video the declared name is
// preferred, substituting .mp4 for a .webm that the merge step rewrote. For
// audio the scratch directory is scanned for the first .mp3; os.ReadDir sorts
// entries by name, which keeps the pick deterministic when several files
// match. Failing that, the declared name with its extension substituted is
// tried.
func resolveOutput(dir string, format Format, declared string) (string, error) {
	if format == FormatVideo {
		if declared != "" && fileExists(declared) {
			return declared, nil
		}
		if alt := swapExt(declared, ".webm", ".mp4"); alt != "" && fileExists(alt) {
			return alt, nil
		}
		return "", errors.Errorf("no video output found for %q", declared)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap(err, "reading scratch directory")
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".mp3") {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	for _, src := range []string{".webm", ".m4a"} {
		if alt := swapExt(declared, src, ".mp3"); alt != "" && fileExists(alt) {
			return alt, nil
		}
	}
	return "", errors.Errorf("no audio output found for %q", declared)
}

func swapExt(path, from, to string) string {
	if path == "" || !strings.HasSuffix(path, from) {
		return ""
	}
	return strings.TrimSuffix(path, from) + to
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GateSize checks the on-disk size of the produced file against the delivery
// limit. The comparison is strict: a file of exactly limitMB mebibytes still
// passes.
func GateSize(path string, limitMB int64) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrap(err, "stat result file")
	}
	if info.Size() > limitMB*bytesPerMB {
		return info.Size(), &SizeExceededError{Size: info.Size(), LimitMB: limitMB}
	}
	return info.Size(), nil
}
