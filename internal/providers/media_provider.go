package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"storyplayer/internal/structures"
	"syscall"
	"time"
)

var (
	ErrMediaTooLarge    = errors.New("media exceeds size limit")
	ErrMediaHostRefused = errors.New("media host not allowed")
)

// MediaWarmer resolves story media ahead of playback and keeps the bytes in
// the media cache.
type MediaWarmer struct {
	client  *http.Client
	cache   CacheProviderInterface
	logger  Logger
	maxSize int64
}

func NewMediaWarmer(conf *structures.Config, cache CacheProviderInterface, logger Logger) *MediaWarmer {
	timeout := conf.Preload.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxSize := conf.Preload.MaxMediaSize
	if maxSize <= 0 {
		maxSize = 32 << 20
	}
	dialer := &net.Dialer{Timeout: timeout}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !conf.Preload.AllowPrivateHosts {
		// every dial, redirects included, is checked against the resolved
		// address; a proxy would hide it
		dialer.Control = refusePrivateAddress
		transport.Proxy = nil
	}
	transport.DialContext = dialer.DialContext

	return &MediaWarmer{
		client:  &http.Client{Timeout: timeout, Transport: transport},
		cache:   cache,
		logger:  logger,
		maxSize: maxSize,
	}
}

func (w *MediaWarmer) Warm(ctx context.Context, url string) error {
	if _, ok := w.cache.Get(url); ok {
		return nil
	}
	body, err := w.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if !w.cache.Set(url, body) {
		w.logger.Debugf(TypePlayback, "Media %s (%d bytes) not cached", url, len(body))
	}
	return nil
}

// Fetch loads media directly, bypassing the cache. Only http and https URLs
// are fetched.
func (w *MediaWarmer) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := checkMediaURL(url); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build media request: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch media %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, w.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read media %s: %w", url, err)
	}
	if int64(len(body)) > w.maxSize {
		return nil, fmt.Errorf("%w: %s", ErrMediaTooLarge, url)
	}
	return body, nil
}

// Cached returns media previously stored by Warm.
func (w *MediaWarmer) Cached(url string) ([]byte, bool) {
	return w.cache.Get(url)
}

func checkMediaURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse media url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrMediaHostRefused, raw)
	}
	return nil
}

// refusePrivateAddress rejects connections to loopback, private, link-local,
// multicast and unspecified addresses.
func refusePrivateAddress(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMediaHostRefused, address)
	}
	if !publicAddress(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrMediaHostRefused, ap.Addr())
	}
	return nil
}

func publicAddress(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsValid() &&
		addr.IsGlobalUnicast() &&
		!addr.IsPrivate() &&
		!addr.IsLoopback() &&
		!addr.IsLinkLocalUnicast()
}
