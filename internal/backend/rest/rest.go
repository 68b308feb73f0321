// Package rest implements the backend ports over the settlement service's
// HTTP API. It owns bearer-token attachment, the multipart receipt upload
// and the normalization of backend error payloads into display messages.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gastos/internal/backend"
	"gastos/internal/core"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// Ensure interface conformance
var _ backend.Service = (*Client)(nil)

// NewClient creates a REST adapter for the given base URL, e.g.
// "http://localhost:8000/api". A trailing slash is tolerated.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    newHTTPClient(),
	}
}

// newHTTPClient builds an HTTP client with connection pooling and timeouts
// suited to a single upstream host.
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", backend.NewError(err.Error())
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", nil, bytes.NewReader(payload), "application/json", "")
	if err != nil {
		return "", err
	}
	if err := c.doJSON(req, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", backend.NewError("login response missing access token")
	}
	return out.AccessToken, nil
}

func (c *Client) ListExpenses(ctx context.Context, token string, filter core.ExpenseFilter) ([]core.Expense, error) {
	query := url.Values{}
	if filter.Start != "" {
		query.Set("start", filter.Start)
	}
	if filter.End != "" {
		query.Set("end", filter.End)
	}
	if filter.PartnerName != "" {
		query.Set("partner_name", filter.PartnerName)
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/expenses", query, nil, "", token)
	if err != nil {
		return nil, err
	}
	var out []core.Expense
	if err := c.doJSON(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateExpense(ctx context.Context, token string, e core.NewExpense) (core.Expense, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", e.ReceiptName)
	if err != nil {
		return core.Expense{}, backend.NewError(err.Error())
	}
	if _, err := io.Copy(fw, e.Receipt); err != nil {
		return core.Expense{}, backend.NewError(err.Error())
	}

	fields := map[string]string{
		"amount":       e.Amount,
		"date_value":   e.Date,
		"partner_name": e.PartnerName,
	}
	for _, opt := range []struct{ name, value string }{
		{"platform", e.Platform},
		{"category", e.Category},
		{"note", e.Note},
	} {
		if opt.value != "" {
			fields[opt.name] = opt.value
		}
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return core.Expense{}, backend.NewError(err.Error())
		}
	}
	if err := mw.Close(); err != nil {
		return core.Expense{}, backend.NewError(err.Error())
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/expenses", nil, &buf, mw.FormDataContentType(), token)
	if err != nil {
		return core.Expense{}, err
	}
	var out core.Expense
	if err := c.doJSON(req, &out); err != nil {
		return core.Expense{}, err
	}
	return out, nil
}

func (c *Client) CloseWeek(ctx context.Context, token string, r core.CloseWeekRequest) (core.Settlement, error) {
	payload := struct {
		WeekEnd       string      `json:"week_end"`
		IfoodAmount   json.Number `json:"ifood_amount"`
		Ninety9Amount json.Number `json:"ninety9_amount"`
		RentFee       json.Number `json:"rent_fee,omitempty"`
		Rule          string      `json:"rule,omitempty"`
	}{
		WeekEnd:       r.WeekEnd,
		IfoodAmount:   decimalNumber(r.IfoodAmount),
		Ninety9Amount: decimalNumber(r.Ninety9Amount),
		RentFee:       decimalNumber(r.RentFee),
		Rule:          r.Rule,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return core.Settlement{}, backend.NewError(err.Error())
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/payouts/close_week", nil, bytes.NewReader(body), "application/json", token)
	if err != nil {
		return core.Settlement{}, err
	}
	var out core.Settlement
	if err := c.doJSON(req, &out); err != nil {
		return core.Settlement{}, err
	}
	return out, nil
}

func (c *Client) GetSettlement(ctx context.Context, token string, id int64) (core.Settlement, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/settlements/"+strconv.FormatInt(id, 10), nil, nil, "", token)
	if err != nil {
		return core.Settlement{}, err
	}
	var out core.Settlement
	if err := c.doJSON(req, &out); err != nil {
		return core.Settlement{}, err
	}
	return out, nil
}

func (c *Client) ListSettlements(ctx context.Context, token string) ([]core.Settlement, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/reports/settlements", nil, nil, "", token)
	if err != nil {
		return nil, err
	}
	var out []core.Settlement
	if err := c.doJSON(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DownloadWeeklyReport(ctx context.Context, token, weekEnd, format string) (io.ReadCloser, string, error) {
	if format != backend.FormatCSV && format != backend.FormatPDF {
		return nil, "", backend.NewError(fmt.Sprintf("unknown report format %q", format))
	}

	query := url.Values{}
	query.Set("week_end", weekEnd)
	req, err := c.newRequest(ctx, http.MethodGet, "/reports/weekly."+format, query, nil, "", token)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", backend.NewError(err.Error())
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return nil, "", backend.NewError(extractDetail(body, resp.Status))
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType, token string) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, backend.NewError(err.Error())
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// doJSON executes the request and decodes a JSON response, converting every
// transport or status failure into the normalized backend error.
func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		slog.WarnContext(req.Context(), "Backend request failed", "method", req.Method, "url", req.URL.Path, "error", err)
		return backend.NewError(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return backend.NewError(err.Error())
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := extractDetail(body, resp.Status)
		slog.WarnContext(req.Context(), "Backend returned error", "method", req.Method, "url", req.URL.Path, "status", resp.StatusCode, "message", msg)
		return backend.NewError(msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return backend.NewError(fmt.Sprintf("decode backend response: %v", err))
	}
	return nil
}

// extractDetail pulls a human-readable message out of the backend error
// convention: {detail: "..."} or {detail: [{msg: "..."}, ...]}. Anything
// else falls back to the transport-level status text.
func extractDetail(body []byte, fallback string) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return fallback
	}

	var asString string
	if err := json.Unmarshal(envelope.Detail, &asString); err == nil && asString != "" {
		return asString
	}

	var asList []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &asList); err == nil && len(asList) > 0 && asList[0].Msg != "" {
		return asList[0].Msg
	}

	return fallback
}

// decimalNumber canonicalizes a user-typed decimal string into a JSON
// number literal. Inputs reach this point already validated.
func decimalNumber(s string) json.Number {
	cents, err := core.ParseDecimalCents(s)
	if err != nil {
		return json.Number("0")
	}
	neg := cents < 0
	if neg {
		cents = -cents
	}
	lit := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if neg {
		lit = "-" + lit
	}
	return json.Number(lit)
}
