// Package fetch 为内容层提供不受 CORS 限制的 HTTP 请求
package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/proxy"
)

var (
	// ErrBodyTooLarge 响应体超过上限
	ErrBodyTooLarge = errors.New("response body too large")
	// ErrUnsupportedScheme 只允许 http/https
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
)

// Options 客户端配置
type Options struct {
	Timeout     time.Duration
	MaxBodySize int64
	ProxyURL    string
	UserAgent   string
}

// Request 内容层发起的请求
type Request struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Body    []byte            `json:"body"`
}

// Response 返回给内容层的响应，Body 已解压
type Response struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"body"`
	URL        string            `json:"url"`
}

// Client HTTP 客户端
type Client struct {
	http        *http.Client
	maxBodySize int64
	userAgent   string
	logger      *slog.Logger
}

// NewClient 按配置创建客户端
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	transport, err := newTransport(opts.ProxyURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		maxBodySize: opts.MaxBodySize,
		userAgent:   opts.UserAgent,
		logger:      logger,
	}, nil
}

func newTransport(proxyURL string) (*http.Transport, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   15 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: time.Second,
		// 自行处理解压，以便同时支持 br
		DisableCompression: true,
	}
	if proxyURL == "" {
		return transport, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("create socks5 dialer: %w", err)
		}
		ctxDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks5 dialer does not support context")
		}
		transport.DialContext = ctxDialer.DialContext
	default:
		return nil, fmt.Errorf("%w: proxy %q", ErrUnsupportedScheme, u.Scheme)
	}
	return transport, nil
}

// Do 发送请求并读取完整响应
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", req.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get("User-Agent") == "" && c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	httpReq.Header.Set("Accept-Encoding", "gzip, br")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, u.Redacted(), err)
	}
	defer resp.Body.Close()

	data, err := c.readBody(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("🌐 请求完成",
		"method", method,
		"url", u.Redacted(),
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start))

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[strings.ToLower(k)] = resp.Header.Get(k)
	}
	// 已解压，不再透传编码和长度
	delete(headers, "content-encoding")
	delete(headers, "content-length")

	return &Response{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Headers:    headers,
		Body:       data,
		URL:        resp.Request.URL.String(),
	}, nil
}

func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if errors.Is(err, io.EOF) {
			// HEAD、204、304 等响应带编码头但没有正文
			return []byte{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode gzip body: %w", err)
		}
		defer zr.Close()
		r = zr
	case "br":
		r = brotli.NewReader(resp.Body)
	}

	if c.maxBodySize > 0 {
		r = io.LimitReader(r, c.maxBodySize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if c.maxBodySize > 0 && int64(len(data)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, c.maxBodySize)
	}
	return data, nil
}
