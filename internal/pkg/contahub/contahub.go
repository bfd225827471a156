package contahub

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// The back office rejects requests that don't look like a browser.
const (
	userAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
	acceptHeader = "application/json, text/javascript, */*; q=0.01"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// UseDefaultClient swaps in http.DefaultClient so tests can intercept
// requests through a mocked default transport.
func (c *Client) UseDefaultClient() {
	c.client = http.DefaultClient
}

// Session is the opaque cookie token returned by Login. It is valid for one
// pipeline run only and is never persisted.
type Session string

// AuthError means the vendor rejected the login handshake. Fatal for the
// whole run, never retried.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string {
	return e.Msg
}

// Login posts the hashed credentials and extracts the session cookie.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	digest := sha1.Sum([]byte(password))

	form := url.Values{}
	form.Set("usr_email", email)
	form.Set("usr_password_sha1", hex.EncodeToString(digest[:]))

	loginURL := fmt.Sprintf("%s/login/%s?emp=0", c.baseURL, Nonce())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &AuthError{Msg: fmt.Sprintf("login request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", &AuthError{Msg: fmt.Sprintf("login rejected %d: %s", resp.StatusCode, string(body))}
	}

	cookie := resp.Header.Get("Set-Cookie")
	if cookie == "" {
		return "", &AuthError{Msg: "login response has no session cookie"}
	}

	return Session(cookie), nil
}

// QuerySpec describes one execQuery call against the generic query endpoint.
type QuerySpec struct {
	QueryID        int
	Date           string // YYYY-MM-DD, collapsed to a single-day range
	VendorUnitID   int
	ExtraParams    string // report-specific filter template, e.g. "produto=&grupo="
	LocationFilter string // empty string means unfiltered/unassigned
}

// ExecQuery runs one query and returns the entries of the response "list".
func (c *Client) ExecQuery(ctx context.Context, session Session, spec QuerySpec) ([]json.RawMessage, error) {
	u, _ := url.Parse(fmt.Sprintf("%s/execQuery/%s", c.baseURL, Nonce()))

	q := u.Query()
	if spec.ExtraParams != "" {
		extra, err := url.ParseQuery(spec.ExtraParams)
		if err != nil {
			return nil, fmt.Errorf("bad extra params %q: %w", spec.ExtraParams, err)
		}
		for key, values := range extra {
			for _, v := range values {
				q.Add(key, v)
			}
		}
	}
	q.Set("qry", fmt.Sprint(spec.QueryID))
	q.Set("d0", spec.Date+"T00:00:00-03:00")
	q.Set("d1", spec.Date+"T00:00:00-03:00")
	q.Set("local", spec.LocationFilter)
	q.Set("emp", fmt.Sprint(spec.VendorUnitID))
	q.Set("nfe", "1")
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, session, u.String())
	if err != nil {
		return nil, err
	}

	return rawArray(gjson.GetBytes(body, "list")), nil
}

// Shift is one operating period as returned by the shift lookup.
type Shift struct {
	Trn          int    `json:"trn"`
	BusinessDate string `json:"trn_dtgerencial"`
}

// GetShifts returns every shift the vendor knows for the unit. Callers
// filter by business date themselves.
func (c *Client) GetShifts(ctx context.Context, session Session, vendorUnitID int) ([]Shift, error) {
	u := fmt.Sprintf("%s/getTurnos?emp=%d&t=%s", c.baseURL, vendorUnitID, Nonce())

	body, err := c.get(ctx, session, u)
	if err != nil {
		return nil, err
	}

	var shifts []Shift
	if err := json.Unmarshal(body, &shifts); err != nil {
		return nil, fmt.Errorf("bad getTurnos response: %w", err)
	}

	return shifts, nil
}

// GetShiftSales returns the sales records of one shift, normalized from
// whichever shape the vendor chose to answer with.
func (c *Client) GetShiftSales(ctx context.Context, session Session, trn, vendorUnitID int) ([]json.RawMessage, error) {
	u := fmt.Sprintf("%s/getTurnoVendas?trn=%d&t=%s&emp=%d", c.baseURL, trn, Nonce(), vendorUnitID)

	body, err := c.get(ctx, session, u)
	if err != nil {
		return nil, err
	}

	return ParseList(body), nil
}

func (c *Client) get(ctx context.Context, session Session, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Cookie", string(session))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("contahub error %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
