// Package ntnl is the client for the Solace NTNL question-answering
// service, used when no local rule answers a turn.
package ntnl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stephbot/internal/application"
	"stephbot/internal/domain"
)

// HistoryMode selects how prior turns are sent with an escalation
// request. The service accepts either shape; older widget revisions
// sent none.
type HistoryMode string

const (
	// HistoryNone sends only the wrapped question.
	HistoryNone HistoryMode = "none"
	// HistoryMessages sends prior turns as a structured list.
	HistoryMessages HistoryMode = "messages"
	// HistoryInline flattens prior turns into the prompt itself.
	HistoryInline HistoryMode = "inline"
)

// answerInstruction keeps spoken replies short.
const answerInstruction = "In no more than 3 sentences, answer the following: %s"

type Client struct {
	baseURL     string
	historyMode HistoryMode
	httpClient  *http.Client
}

func NewClient(baseURL string, mode HistoryMode) *Client {
	if mode == "" {
		mode = HistoryMessages
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		historyMode: mode,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type request struct {
	Query   string           `json:"query"`
	History []domain.Message `json:"history,omitempty"`
}

type response struct {
	Response string `json:"response"`
}

// Answer sends one escalation request. Non-success statuses wrap
// application.ErrAnswerUnavailable; transport and decoding failures
// are returned as plain errors. No retries: the caller substitutes a
// fixed reply for this turn on any failure.
func (c *Client) Answer(ctx context.Context, question string, history []domain.Message) (string, error) {
	var reqBody request
	switch c.historyMode {
	case HistoryInline:
		reqBody.Query = inlinePrompt(question, history)
	case HistoryMessages:
		reqBody.Query = fmt.Sprintf(answerInstruction, question)
		reqBody.History = history
	default:
		reqBody.Query = fmt.Sprintf(answerInstruction, question)
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/answer", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: status %d", application.ErrAnswerUnavailable, resp.StatusCode)
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return strings.TrimSpace(result.Response), nil
}

// inlinePrompt flattens prior turns into alternating sender lines
// followed by the new question.
func inlinePrompt(question string, history []domain.Message) string {
	var b strings.Builder
	for _, m := range history {
		switch m.Role {
		case domain.RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, answerInstruction, question)
	return b.String()
}
