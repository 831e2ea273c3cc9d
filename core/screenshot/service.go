package screenshot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/charts"
	"github.com/dataforgoodfr/shiftdataportal-sub001/core/utils"
)

var (
	ErrDisallowedPath = errors.New("screenshot path not allowed")
	ErrTargetMissing  = errors.New("screenshot target element not found")
)

// Selector matches the element cropped into the PNG.
const Selector = "." + charts.ScreenshotClass

// Launcher starts a browser. Every launched browser is closed by the
// service, on success and on failure.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

type Browser interface {
	// Capture navigates to target, waits for the network to settle and
	// returns the PNG of the first element matching selector.
	Capture(ctx context.Context, target, selector string) ([]byte, error)
	Close() error
}

type Service struct {
	clientURI string
	timeout   time.Duration
	launcher  Launcher
	logger    *utils.Logger

	launches atomic.Uint64
	failures atomic.Uint64
}

func NewService(clientURI string, timeout time.Duration, launcher Launcher, logger *utils.Logger) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		clientURI: strings.TrimRight(clientURI, "/"),
		timeout:   timeout,
		launcher:  launcher,
		logger:    logger,
	}
}

// Capture renders the client page at p with query and returns the PNG of
// its screenshot element.
func (s *Service) Capture(ctx context.Context, p string, query url.Values) ([]byte, error) {
	clean, err := CheckPath(p)
	if err != nil {
		return nil, err
	}
	target := s.TargetURL(clean, query)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.launches.Add(1)
	browser, err := s.launcher.Launch(ctx)
	if err != nil {
		s.failures.Add(1)
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			s.logger.Warnf("screenshot: close browser: %v", cerr)
		}
	}()
	png, err := browser.Capture(ctx, target, Selector)
	if err != nil {
		s.failures.Add(1)
		return nil, fmt.Errorf("capture %s: %w", clean, err)
	}
	return png, nil
}

// TargetURL is the client page rendered for a path and query.
func (s *Service) TargetURL(p string, query url.Values) string {
	target := s.clientURI + p
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target
}

type Stats struct {
	Launches uint64 `json:"launches"`
	Failures uint64 `json:"failures"`
}

func (s *Service) Stats() Stats {
	return Stats{Launches: s.launches.Load(), Failures: s.failures.Load()}
}

// CheckPath cleans p and rejects static asset paths that have no chart.
func CheckPath(p string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(p))
	lower := strings.ToLower(clean)
	switch {
	case lower == "/favicon.ico", strings.HasSuffix(lower, ".ico"), lower == "/robots.txt":
		return "", fmt.Errorf("%w: %s", ErrDisallowedPath, clean)
	}
	return clean, nil
}
