package loadtest

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var csrfMeta = regexp.MustCompile(`name="csrf-token" content="([^"]*)"`)

// client is one simulated browser.
type client struct {
	base string
	http *http.Client
}

func newClient(base string, timeout time.Duration) (*client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

type page struct {
	status int
	path   string
	body   string
}

func (c *client) do(req *http.Request) (page, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return page{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return page{}, err
	}
	return page{status: resp.StatusCode, path: resp.Request.URL.Path, body: string(b)}, nil
}

func (c *client) get(ctx context.Context, path string) (page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return page{}, err
	}
	return c.do(req)
}

// submit loads formPath for a CSRF token and posts values to action.
func (c *client) submit(ctx context.Context, formPath, action string, values url.Values) (page, error) {
	form, err := c.get(ctx, formPath)
	if err != nil {
		return page{}, err
	}
	token := csrfToken(form.body)
	if token == "" {
		return page{}, fmt.Errorf("no csrf token on %s (status %d)", formPath, form.status)
	}
	values.Set("csrf_token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+action, strings.NewReader(values.Encode()))
	if err != nil {
		return page{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func csrfToken(body string) string {
	m := csrfMeta.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return html.UnescapeString(m[1])
}

var errUnexpectedPage = errors.New("unexpected page")

// expect fails unless p ended on path with a 2xx status.
func expect(p page, path string) error {
	if p.status >= 300 || p.path != path {
		return fmt.Errorf("%w: status %d at %s, want %s", errUnexpectedPage, p.status, p.path, path)
	}
	return nil
}
