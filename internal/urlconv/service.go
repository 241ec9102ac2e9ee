// Package urlconv turns a URL into markdown: YouTube URLs go through the
// transcript extraction pipeline, everything else is fetched and run through
// the HTML converter.
package urlconv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"markdownd/internal/browser"
	"markdownd/internal/config"
	"markdownd/internal/converter"
	"markdownd/internal/fetcher"
	"markdownd/internal/monitoring"
	"markdownd/internal/transcript"
)

// TranscriptExtractor is satisfied by transcript.Orchestrator.
type TranscriptExtractor interface {
	Extract(ctx context.Context, req transcript.Request) (*transcript.Result, error)
}

// PageFetcher is satisfied by fetcher.Fetcher.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, opts fetcher.Options) (*fetcher.Result, error)
}

type Service struct {
	extractor TranscriptExtractor
	fetcher   PageFetcher
	cookies   *browser.CookieLoader
	html      *converter.HTMLConverter
	titles    *titleClient

	languages      []string
	requestTimeout time.Duration
	fetchOpts      fetcher.Options

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// New assembles the service from configuration. metrics may be nil when the
// caller does not export any.
func New(cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := cfg.Transcript.BaseURL
	if baseURL == "" {
		baseURL = transcript.DefaultBaseURL
	}
	userAgent := cfg.Network.UserAgent
	strategyTimeout := time.Duration(cfg.Network.Timeout) * time.Second

	strategies := []transcript.Strategy{
		transcript.NewListFetchStrategy(baseURL, userAgent, strategyTimeout),
		transcript.NewDirectFetchStrategy(baseURL, userAgent, strategyTimeout),
		transcript.NewYtDlpStrategy(cfg.Transcript.YtDlpPath, cfg.Transcript.PlayerClient, ""),
	}
	cooldown := transcript.NewCooldown(
		time.Duration(cfg.Transcript.CooldownBase)*time.Second,
		time.Duration(cfg.Transcript.CooldownCap)*time.Second,
		time.Duration(cfg.Transcript.CooldownReset)*time.Second,
	)
	validator := transcript.NewValidator(cfg.Transcript.MinTextLength, cfg.Transcript.BlockedFingerprints)

	var cookies *browser.CookieLoader
	if cfg.Network.CookieBrowser != "" {
		cookies = browser.NewCookieLoader(browser.Kind(cfg.Network.CookieBrowser))
	}

	return &Service{
		extractor:      transcript.NewOrchestrator(strategies, cooldown, validator, logger),
		fetcher:        fetcher.New(strategyTimeout),
		cookies:        cookies,
		html:           &converter.HTMLConverter{},
		titles:         newTitleClient(userAgent),
		languages:      cfg.Transcript.Languages,
		requestTimeout: time.Duration(cfg.Transcript.RequestTimeout) * time.Second,
		fetchOpts: fetcher.Options{
			Mode:         fetcher.Mode(cfg.Network.RenderJS),
			Timeout:      strategyTimeout,
			UserAgent:    cfg.Network.UserAgent,
			BrowserAgent: cfg.Network.BrowserAgent,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// Convert produces markdown for url. The returned error keeps its concrete
// type (*transcript.ExhaustedError, *converter.Error) so callers can report
// the failure kind.
func (s *Service) Convert(ctx context.Context, url string) (*converter.Result, error) {
	if videoID, ok := transcript.ParseVideoID(url); ok {
		return s.convertVideo(ctx, url, videoID)
	}
	return s.convertPage(ctx, url)
}

func (s *Service) convertVideo(ctx context.Context, url, videoID string) (*converter.Result, error) {
	req := transcript.Request{
		VideoID:   videoID,
		Languages: s.languages,
		Deadline:  time.Now().Add(s.requestTimeout),
	}

	res, err := s.extractor.Extract(ctx, req)
	if err != nil {
		var exhausted *transcript.ExhaustedError
		if errors.As(err, &exhausted) {
			s.countAttempts(exhausted.Attempts)
		}
		s.countError(err)
		s.countTranscript("exhausted")
		return nil, err
	}
	s.countAttempts(res.Attempts)
	s.countTranscript("succeeded")

	title := res.Title
	if title == "" {
		// Caption endpoints rarely carry the video title; oEmbed does.
		// Best effort only, the transcript stands on its own.
		if t, terr := s.titles.videoTitle(ctx, url); terr == nil {
			title = t
		}
	}

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	b.WriteString(res.Text)

	if s.metrics != nil {
		s.metrics.IncConversions("youtube")
	}
	return &converter.Result{Markdown: b.String(), Title: title}, nil
}

func (s *Service) convertPage(ctx context.Context, url string) (*converter.Result, error) {
	opts := s.fetchOpts
	if s.cookies != nil {
		if extracted, err := s.cookies.Load(ctx, url); err == nil {
			opts.Cookies = extracted
		}
	}

	page, err := s.fetcher.Fetch(ctx, url, opts)
	if err != nil {
		s.countError(err)
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	result, err := s.html.Convert(ctx, strings.NewReader(page.HTML), url)
	if err != nil {
		s.countError(err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncConversions("html")
	}
	s.logger.Info("url converted",
		zap.String("url", url),
		zap.Bool("rendered", page.UsedJS),
		zap.Int("chars", len(result.Markdown)))
	return result, nil
}

func (s *Service) countError(err error) {
	if s.metrics != nil {
		s.metrics.IncErrors(ErrorKind(err))
	}
}

func (s *Service) countTranscript(status string) {
	if s.metrics != nil {
		s.metrics.IncTranscriptRequest(status)
	}
}

func (s *Service) countAttempts(attempts []transcript.AttemptRecord) {
	if s.metrics == nil {
		return
	}
	for _, a := range attempts {
		s.metrics.IncTranscriptAttempt(a.Strategy, a.Kind.String())
	}
}
