package bccr

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultURL is the BCCR "tipo de cambio ventanilla" consultation page
const DefaultURL = "https://gee.bccr.fi.cr/IndicadoresEconomicos/Cuadros/frmConsultaTCVentanilla.aspx"

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// the consultation form expects zero-padded day/month/year
const dateFormat = "02/01/2006"

// QueryRequest is the caller's intent for one consultation:
// an inclusive date range, plus optional field-name overrides
type QueryRequest struct {
	Start time.Time
	End   time.Time

	Overrides Overrides
}

// Client drives the two-stage consultation flow against the BCCR page
type Client struct {
	client *http.Client
	url    string
}

// NewClient creates a new consultation client for the given page URL
func NewClient(pageURL string, timeout time.Duration) *Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // Fine to ignore
	}

	jar, _ := cookiejar.New(nil)

	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: tr,
			Jar:       jar,
		},
		url: pageURL,
	}
}

// Query runs one full consultation: fetch the form page, detect the
// form fields, submit the date range, extract the resulting table.
// The client keeps no state between calls beyond the cookie jar
func (c *Client) Query(ctx context.Context, req *QueryRequest) (*Table, error) {
	if req.Start.After(req.End) {
		return nil, fmt.Errorf(
			"%w: %s > %s",
			errInvalidDateRange,
			req.Start.Format("2006-01-02"),
			req.End.Format("2006-01-02"),
		)
	}

	doc, err := c.fetchFormPage(ctx)
	if err != nil {
		return nil, err
	}

	form, err := DetectForm(doc, req.Overrides)
	if err != nil {
		return nil, err
	}

	respDoc, err := c.submit(ctx, form, req)
	if err != nil {
		return nil, err
	}

	return ExtractTable(respDoc)
}

// fetchFormPage issues the initial GET for the consultation page
func (c *Client) fetchFormPage(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create new GET request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch form page", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &SubmissionError{StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to construct query doc: %w", err)
	}

	return doc, nil
}

// submit sends the resolved form populated with the requested date
// range, using the method the form declares
func (c *Client) submit(
	ctx context.Context,
	form *Form,
	query *QueryRequest,
) (*goquery.Document, error) {
	payload := url.Values{}

	for name, values := range form.Hidden {
		for _, v := range values {
			payload.Add(name, v)
		}
	}

	payload.Set(form.Start.Name, query.Start.Format(dateFormat))
	payload.Set(form.End.Name, query.End.Format(dateFormat))

	if form.Submit != nil {
		payload.Set(form.Submit.Name, form.Submit.Value)
	}

	target, err := c.resolveAction(form.Action)
	if err != nil {
		return nil, err
	}

	var req *http.Request

	if form.Method == http.MethodGet {
		target.RawQuery = payload.Encode()

		req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			target.String(),
			http.NoBody,
		)
	} else {
		req, err = http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			target.String(),
			strings.NewReader(payload.Encode()),
		)
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}

	if err != nil {
		return nil, fmt.Errorf("unable to create submit request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "submit query", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &SubmissionError{StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to construct response doc: %w", err)
	}

	return doc, nil
}

// resolveAction resolves the form's action against the page URL
func (c *Client) resolveAction(action string) (*url.URL, error) {
	base, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse page URL: %w", err)
	}

	if strings.TrimSpace(action) == "" {
		return base, nil
	}

	target, err := base.Parse(action)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve form action %q: %w", action, err)
	}

	return target, nil
}
