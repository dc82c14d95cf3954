// Package engine is the HTTP gateway to the external interview AI service.
// It hides transport details from the orchestrator: every transport failure,
// timeout, or non-success response surfaces as ErrUnavailable so callers can
// branch once on availability instead of inspecting HTTP errors.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"interviewd/internal/metrics"
)

// ErrUnavailable covers any transport error, timeout, or non-2xx response
// from the engine. Callers must not retry; the orchestrator decides fallback
// behavior once.
var ErrUnavailable = errors.New("interview engine unavailable")

// DefaultTimeout bounds every engine call, including transcription uploads.
const DefaultTimeout = 30 * time.Second

// StartResult is the engine's answer to a session start: a remote session
// handle and the opening question.
type StartResult struct {
	SessionID string
	Question  string
}

// Action is what the engine wants to happen after a candidate turn. It is a
// closed sum: AskQuestion or EndInterview. Call sites type-switch over it so
// a new action kind fails loudly instead of being dropped.
type Action interface {
	isAction()
}

// AskQuestion continues the interview with the next question.
type AskQuestion struct {
	Question string
}

// EndInterview finishes the interview. Report is the engine's report payload,
// relayed to the client verbatim.
type EndInterview struct {
	Report json.RawMessage
}

func (AskQuestion) isAction()  {}
func (EndInterview) isAction() {}

// Client talks to the engine over its JSON/multipart HTTP contract.
type Client struct {
	baseURL string
	httpc   *http.Client
	metrics *metrics.Metrics
}

// NewClient builds a gateway for the engine at baseURL. A zero timeout means
// DefaultTimeout. Metrics may be nil.
func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		metrics: m,
	}
}

// Start requests a new remote interview session for the given candidate
// profile. Industry and level may be empty.
func (c *Client) Start(ctx context.Context, industry, level string) (StartResult, error) {
	desc := strings.TrimSpace(strings.Join([]string{orDefault(industry, "general"), level}, " "))
	req := map[string]any{
		"job_description": desc + " role",
		"candidate_info":  map[string]any{"industry": industry, "level": level},
	}

	var resp struct {
		SessionID string `json:"session_id"`
		Question  string `json:"question"`
	}
	if err := c.postJSON(ctx, "/engine/start", req, &resp); err != nil {
		return StartResult{}, err
	}
	if resp.SessionID == "" {
		return StartResult{}, fmt.Errorf("%w: start response missing session_id", ErrUnavailable)
	}

	return StartResult{SessionID: resp.SessionID, Question: resp.Question}, nil
}

// Advance submits a candidate utterance to an engine-backed session and
// returns the engine's next action.
func (c *Client) Advance(ctx context.Context, engineSessionID, text string) (Action, error) {
	req := map[string]any{"session_id": engineSessionID, "text": text}

	var resp struct {
		Action   string          `json:"action"`
		Question string          `json:"question"`
		Report   json.RawMessage `json:"report"`
	}
	if err := c.postJSON(ctx, "/engine/next", req, &resp); err != nil {
		return nil, err
	}

	switch resp.Action {
	case "ask_question":
		return AskQuestion{Question: resp.Question}, nil
	case "end_interview":
		return EndInterview{Report: resp.Report}, nil
	default:
		return nil, fmt.Errorf("unknown engine action %q", resp.Action)
	}
}

// Transcribe submits raw audio bytes for transcription. An empty transcript
// is a valid result meaning nothing intelligible was said.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", "audio.webm")
	if err != nil {
		return "", fmt.Errorf("build transcribe form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("write transcribe form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close transcribe form: %w", err)
	}

	var resp struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, "/transcribe", form.FormDataContentType(), &body, &resp); err != nil {
		return "", err
	}

	return resp.Text, nil
}

// Analyze produces a single reply with no session continuity on the remote
// side. Used only for sessions running without an engine handle.
func (c *Client) Analyze(ctx context.Context, text, industry, level string) (string, error) {
	req := map[string]any{"text": text, "industry": industry, "level": level}

	var resp struct {
		Reply string `json:"reply"`
	}
	if err := c.postJSON(ctx, "/analyze", req, &resp); err != nil {
		return "", err
	}

	return resp.Reply, nil
}

// Question fetches a standalone opening question, the legacy no-engine path.
func (c *Client) Question(ctx context.Context, industry, level string) (string, error) {
	req := map[string]any{"industry": industry, "level": level}

	var resp struct {
		Question string `json:"question"`
	}
	if err := c.postJSON(ctx, "/question", req, &resp); err != nil {
		return "", err
	}

	return resp.Question, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}
	return c.post(ctx, path, "application/json", bytes.NewReader(body), out)
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	start := time.Now()
	err := c.doPost(ctx, path, contentType, body, out)
	if c.metrics != nil {
		c.metrics.ObserveEngineRequest(path, err, time.Since(start))
	}
	return err
}

func (c *Client) doPost(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %d", ErrUnavailable, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrUnavailable, path, err)
	}

	return nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
