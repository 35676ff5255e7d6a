// Package classify sends lead descriptions to an external text-classification
// endpoint speaking the chat-completions contract and normalizes the answer.
// Classification never fails the run: every failure mode degrades to a
// deterministic default.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/THE-AGENTVE/Leads-Scrapper/internal/config"
	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

// Result is the normalized classification answer.
type Result struct {
	IsRelevant    bool   `json:"isRelevant"`
	CleanCategory string `json:"cleanCategory"`
	Summary       string `json:"summary"`
}

const summaryLimit = 500

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls the classification endpoint. A client without an API key is
// valid and always returns the hard default.
type Client struct {
	cfg  *config.ClassifyConfig
	http *http.Client
	log  *zap.Logger
}

func New(cfg *config.ClassifyConfig, log *zap.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.With(zap.String("stage", "classify")),
	}
}

// Classify returns the classification for one lead. It never returns an
// error: a transport or service failure yields the hard default
// {false, "", ""}; a reachable service answering unparseable text yields
// {true, "Uncategorized", first 500 chars}.
func (c *Client) Classify(ctx context.Context, l *models.Lead) Result {
	if c.cfg.APIKey == "" {
		return Result{}
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(l)},
		},
	})
	if err != nil {
		return Result{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("classification transport failed", zap.String("name", l.Name), zap.Error(err))
		return Result{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("classification service error",
			zap.String("name", l.Name), zap.Int("status", resp.StatusCode))
		return Result{}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}
	}

	content := string(raw)
	var envelope chatResponse
	if json.Unmarshal(raw, &envelope) == nil && len(envelope.Choices) > 0 {
		content = envelope.Choices[0].Message.Content
	}

	return parseContent(content)
}

// parseContent extracts the first balanced brace-delimited JSON object from
// the service's text. Text without a usable object degrades to the soft
// default: the service answered, so the lead is assumed relevant.
func parseContent(content string) Result {
	if obj := extractJSONObject(content); obj != "" {
		var r Result
		if json.Unmarshal([]byte(obj), &r) == nil {
			return r
		}
	}
	return Result{
		IsRelevant:    true,
		CleanCategory: "Uncategorized",
		Summary:       truncate(content, summaryLimit),
	}
}

// extractJSONObject returns the first balanced {...} block, brace-counted
// with string awareness so braces inside values don't end the block early.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// truncate caps s at n bytes without splitting a rune.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func buildPrompt(l *models.Lead) string {
	return fmt.Sprintf(`You are qualifying business leads. Given the business below, answer with strict JSON containing exactly these keys: "isRelevant" (boolean: is this a real, contactable business), "cleanCategory" (string: a concise normalized category), "summary" (string: one-sentence description).

Business:
- Name: %s
- Category: %s
- Description: %s
- Website: %s
- Email: %s

Respond with JSON only.`, l.Name, l.Category, l.Description, l.Website, l.Email)
}

// Apply preserves the original category/description for audit and merges a
// classification result into the lead. Empty result fields are backfilled
// from the originals so downstream consumers always see populated values.
func Apply(l *models.Lead, r Result) {
	l.OriginalCategory = l.Category
	l.OriginalDescription = l.Description

	l.IsRelevant = r.IsRelevant
	l.CleanCategory = models.MergeField(r.CleanCategory, l.OriginalCategory)
	l.Summary = models.MergeField(r.Summary, l.OriginalDescription)
	if r.CleanCategory != "" {
		l.Category = r.CleanCategory
	}
}

// Delay returns the randomized politeness pause between sequential calls.
func (c *Client) Delay() time.Duration {
	if c.cfg.DelayMax <= c.cfg.DelayMin {
		return c.cfg.DelayMin
	}
	return c.cfg.DelayMin + time.Duration(rand.Int63n(int64(c.cfg.DelayMax-c.cfg.DelayMin)))
}
