package transcript

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	defaultYtDlpPath     = "yt-dlp"
	defaultPlayerClient  = "android"
	watchURLPrefix       = "https://www.youtube.com/watch?v="
	ytdlpArtifactPattern = "*.vtt"
)

// rate-limit markers seen in yt-dlp output when the origin throttles the IP.
// A bare "429" would also match progress percentages and byte counts, so only
// the explicit phrasings count.
var ytdlpRateLimitMarkers = []string{
	"HTTP Error 429",
	"Too Many Requests",
}

var ytdlpNotAvailableMarkers = []string{
	"Video unavailable",
	"This video is not available",
	"no subtitles",
	"There are no subtitles",
	"members-only",
	"Private video",
}

// YtDlpStrategy shells out to yt-dlp as a last resort. The tool side-steps
// the caption endpoints entirely by impersonating a specific player client
// and writing the subtitle artifact to disk, which we then parse.
type YtDlpStrategy struct {
	path         string
	playerClient string
	workDir      string

	// runCommand is swapped in tests to avoid spawning real processes.
	runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewYtDlpStrategy builds the subprocess fallback. Empty path selects
// "yt-dlp" from PATH; empty playerClient selects the android player, which
// in practice dodges throttling the web client hits.
func NewYtDlpStrategy(path, playerClient, workDir string) *YtDlpStrategy {
	if path == "" {
		path = defaultYtDlpPath
	}
	if playerClient == "" {
		playerClient = defaultPlayerClient
	}
	if workDir == "" {
		workDir = os.TempDir()
	}
	s := &YtDlpStrategy{path: path, playerClient: playerClient, workDir: workDir}
	s.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		cmd := exec.CommandContext(ctx, name, args...)
		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out
		err := cmd.Run()
		return out.Bytes(), err
	}
	return s
}

func (s *YtDlpStrategy) ID() string          { return "ytdlp" }
func (s *YtDlpStrategy) Priority() int       { return 2 }
func (s *YtDlpStrategy) HostKey() string     { return "ytdlp" }
func (s *YtDlpStrategy) Languages() []string { return nil }

// Execute invokes yt-dlp with --skip-download and reads back the VTT
// artifact it writes. Non-zero exit or a missing artifact is transient
// unless the process output carries a rate-limit marker.
func (s *YtDlpStrategy) Execute(ctx context.Context, req Request) Outcome {
	dir, err := os.MkdirTemp(s.workDir, "markdownd-sub-")
	if err != nil {
		return Transient(fmt.Sprintf("creating work dir: %v", err))
	}
	defer os.RemoveAll(dir)

	lang := preferredLanguage(req.Languages)
	outTemplate := filepath.Join(dir, req.VideoID)

	args := []string{
		"--write-sub",
		"--write-auto-sub",
		"--sub-lang", lang,
		"--sub-format", "vtt",
		"--skip-download",
		"--extractor-args", "youtube:player_client=" + s.playerClient,
		"-o", outTemplate,
		watchURLPrefix + req.VideoID,
	}

	output, runErr := s.runCommand(ctx, s.path, args...)
	if ctx.Err() == context.DeadlineExceeded {
		return Transient("deadline exceeded")
	}

	if outcome, classified := classifyYtDlpOutput(string(output)); classified && runErr != nil {
		return outcome
	}

	artifacts, _ := filepath.Glob(outTemplate + ytdlpArtifactPattern)
	if len(artifacts) == 0 {
		if outcome, classified := classifyYtDlpOutput(string(output)); classified {
			return outcome
		}
		detail := "subtitle artifact not produced"
		if runErr != nil {
			detail = fmt.Sprintf("%s: %s", detail, truncate(lastLine(string(output)), 200))
		}
		return Transient(detail)
	}

	content, err := os.ReadFile(artifacts[0])
	if err != nil {
		return Transient(fmt.Sprintf("reading subtitle artifact: %v", err))
	}

	text, cues := ParseVTT(string(content))
	if text == "" {
		return Transient("subtitle artifact was empty")
	}

	return Success(text, "", cues, map[string]string{
		"source":        "ytdlp",
		"language":      artifactLanguage(artifacts[0]),
		"player_client": s.playerClient,
	})
}

// classifyYtDlpOutput maps recognizable process output to an outcome. The
// second return is false when nothing matched.
func classifyYtDlpOutput(output string) (Outcome, bool) {
	for _, marker := range ytdlpRateLimitMarkers {
		if strings.Contains(output, marker) {
			return RateLimited(0), true
		}
	}
	for _, marker := range ytdlpNotAvailableMarkers {
		if strings.Contains(output, marker) {
			return NotAvailable(truncate(lastLine(output), 200)), true
		}
	}
	return Outcome{}, false
}

// artifactLanguage pulls the language tag out of a "<id>.<lang>.vtt" name.
func artifactLanguage(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".vtt")
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[i+1:]
	}
	return ""
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
