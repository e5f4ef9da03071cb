package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/rs/zerolog/log"

	"cma_viewer/internal/adapters/observability"
)

// Prefix is the path under which requests are relayed upstream.
const Prefix = "/api"

const defaultUserAgent = "Proxy-Server"

// Forwarder relays /api/* to the upstream report API with the bearer token
// injected. The upstream body is decoded and fully buffered before anything
// is written to the client.
type Forwarder struct {
	base  *url.URL
	token string
	hc    *http.Client
}

func NewForwarder(upstreamBase, token string, hc *http.Client) (*Forwarder, error) {
	u, err := url.ParseRequestURI(upstreamBase)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream base %q", upstreamBase)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return &Forwarder{base: u, token: token, hc: hc}, nil
}

// Target maps an incoming /api path and raw query onto the upstream URL.
func (f *Forwarder) Target(path, rawQuery string) string {
	rest := strings.TrimPrefix(path, Prefix)
	if rest != "" && !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	t := *f.base
	t.Path = f.base.Path + rest
	t.RawPath = ""
	t.RawQuery = rawQuery
	return t.String()
}

func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	target := f.Target(r.URL.Path, r.URL.RawQuery)
	log.Debug().Str("method", r.Method).Str("original", r.URL.RequestURI()).Str("target", target).Msg("proxy_request")

	var body io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = r.Body
	}
	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
	if err != nil {
		writeError(w, "Proxy error", err)
		return
	}
	ua := r.UserAgent()
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", ua)
	// asking explicitly keeps net/http from decoding gzip on its own
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := f.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("upstream", "proxy", 0, time.Since(start))
		log.Error().Err(err).Str("target", target).Msg("proxy upstream failed")
		writeError(w, "Proxy error", err)
		return
	}
	defer resp.Body.Close()
	observability.ObserveExternal("upstream", "proxy", resp.StatusCode, time.Since(start))

	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	buf, decoded, err := readBody(resp.Body, encoding)
	if err != nil {
		log.Error().Err(err).Str("target", target).Str("encoding", encoding).Msg("proxy response decode failed")
		writeError(w, "Response processing error", err)
		return
	}

	h := w.Header()
	for k, vs := range resp.Header {
		if skipHeader(k) {
			continue
		}
		h.Del(k)
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	if !decoded && encoding != "" {
		h.Set("Content-Encoding", resp.Header.Get("Content-Encoding"))
	}
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	h.Set("Content-Length", strconv.Itoa(len(buf)))

	w.WriteHeader(resp.StatusCode)
	if r.Method != http.MethodHead {
		if _, err := w.Write(buf); err != nil {
			log.Warn().Err(err).Str("target", target).Msg("proxy write failed")
		}
	}
	observability.ObserveProxied(encoding, len(buf))
	log.Info().
		Str("method", r.Method).
		Str("target", target).
		Int("status", resp.StatusCode).
		Str("encoding", encoding).
		Int("bytes", len(buf)).
		Msg("proxy_response")
}

// readBody drains src, decoding the encodings the proxy understands.
// Unknown encodings are passed through untouched and reported as not decoded.
func readBody(src io.Reader, encoding string) ([]byte, bool, error) {
	var (
		rd      io.Reader
		decoded = true
	)
	switch encoding {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(src)
		if err != nil {
			return nil, false, err
		}
		defer zr.Close()
		rd = zr
	case "deflate":
		zr, err := zlib.NewReader(src)
		if err != nil {
			return nil, false, err
		}
		defer zr.Close()
		rd = zr
	case "br":
		rd = brotli.NewReader(src)
	default:
		rd, decoded = src, false
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rd); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), decoded, nil
}

func skipHeader(k string) bool {
	switch http.CanonicalHeaderKey(k) {
	case "Transfer-Encoding", "Content-Encoding", "Content-Length":
		return true
	}
	return strings.HasPrefix(strings.ToLower(k), "access-control-")
}

func writeError(w http.ResponseWriter, title string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	if e := json.NewEncoder(w).Encode(map[string]string{"error": title, "message": err.Error()}); e != nil {
		log.Error().Err(e).Msg("write proxy error response failed")
	}
}
