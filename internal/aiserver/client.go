package aiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// Audio processing is inherently slow; give transcription a much longer
	// budget than ordinary calls.
	defaultVoiceNoteTimeout = 2 * time.Minute
	defaultCallTimeout      = 15 * time.Second
	healthTimeout           = 2 * time.Second
)

// Client communicates with the external AI server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client

	voiceNoteTimeout time.Duration
	callTimeout      time.Duration
}

// New creates a Client targeting the given AI server base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 0,
		},
		voiceNoteTimeout: defaultVoiceNoteTimeout,
		callTimeout:      defaultCallTimeout,
	}
}

// IsRunning returns true if the AI server responds to GET /ai/health with 200.
func (c *Client) IsRunning(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ai/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// voiceNoteRequest is the JSON body for POST /ai/process-voice-note.
type voiceNoteRequest struct {
	AudioBase64 string `json:"audio_base64"`
	MimeType    string `json:"mime_type"`
}

// VoiceNoteResult is the combined transcribe+extract response: the transcript
// plus the best-effort candidate contact name, topic, and intended action.
type VoiceNoteResult struct {
	Transcript  string `json:"transcript"`
	ContactName string `json:"contact_name"`
	Topic       string `json:"topic"`
	Action      string `json:"action"`
	Source      string `json:"source"`
}

// ProcessVoiceNote sends staged audio to the AI server for transcription and
// intent extraction. The call uses the long voice-note timeout. A response
// without a transcript is reported as ErrMalformed; missing extraction fields
// are left empty for the caller to degrade on.
func (c *Client) ProcessVoiceNote(ctx context.Context, audioBase64, mimeType string) (VoiceNoteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.voiceNoteTimeout)
	defer cancel()

	var result VoiceNoteResult
	if err := c.post(ctx, "process-voice-note", "/ai/process-voice-note", voiceNoteRequest{
		AudioBase64: audioBase64,
		MimeType:    mimeType,
	}, &result); err != nil {
		return VoiceNoteResult{}, err
	}

	if result.Transcript == "" {
		return VoiceNoteResult{}, fmt.Errorf("%w: missing transcript", ErrMalformed)
	}
	return result, nil
}

// ProfileSnapshot is a profile's salient fields as pushed to the retrieval index.
type ProfileSnapshot struct {
	ProfileID   string   `json:"profile_id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Company     string   `json:"company"`
	Bio         string   `json:"bio"`
	Skills      []string `json:"skills"`
	LookingFor  []string `json:"looking_for"`
	CanHelpWith []string `json:"can_help_with"`
	Domains     []string `json:"domains"`
	LinkedInURL string   `json:"linkedin_url"`
}

// SyncProfile pushes a profile snapshot to the AI server's retrieval index.
func (c *Client) SyncProfile(ctx context.Context, snap ProfileSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.post(ctx, "sync-profile-rag", "/ai/sync-profile-rag", snap, nil)
}

// Contact is a profile in the AI server's wire shape for ranking and drafting.
type Contact struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Company     string   `json:"company"`
	Bio         string   `json:"bio"`
	Skills      []string `json:"skills"`
	LookingFor  []string `json:"looking_for"`
	CanHelpWith []string `json:"can_help_with"`
	Domains     []string `json:"domains"`
}

// OutreachRequest asks the AI server to draft a personalised message.
type OutreachRequest struct {
	Sender    Contact `json:"sender"`
	Recipient Contact `json:"recipient"`
	Context   string  `json:"context"`
}

// OutreachDraft is the drafted message with its provenance tag.
type OutreachDraft struct {
	Message string `json:"message"`
	Source  string `json:"source"`
}

// DraftOutreach requests a drafted message addressed to the recipient.
func (c *Client) DraftOutreach(ctx context.Context, req OutreachRequest) (OutreachDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var draft OutreachDraft
	if err := c.post(ctx, "draft-outreach", "/ai/draft-outreach", req, &draft); err != nil {
		return OutreachDraft{}, err
	}
	if draft.Message == "" {
		return OutreachDraft{}, fmt.Errorf("%w: empty message", ErrMalformed)
	}
	return draft, nil
}

// rankRequest is the JSON body for POST /ai/rank-contact.
type rankRequest struct {
	QueryLookingFor string  `json:"query_looking_for"`
	QueryDomain     string  `json:"query_domain"`
	QueryHelpType   string  `json:"query_help_type"`
	Urgency         string  `json:"urgency"`
	Contact         Contact `json:"contact"`
}

// RankQuery describes what the user is looking for in their network.
type RankQuery struct {
	LookingFor string
	Domain     string
	HelpType   string
	Urgency    string
}

// RankResult scores how well one contact matches a query.
type RankResult struct {
	ContactID     string  `json:"contact_id"`
	MatchScore    float64 `json:"match_score"`
	MatchReason   string  `json:"match_reason"`
	OutreachAngle string  `json:"outreach_angle"`
	Source        string  `json:"source"`
}

// RankContact scores a single candidate against the query.
func (c *Client) RankContact(ctx context.Context, q RankQuery, candidate Contact) (RankResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var result RankResult
	if err := c.post(ctx, "rank-contact", "/ai/rank-contact", rankRequest{
		QueryLookingFor: q.LookingFor,
		QueryDomain:     q.Domain,
		QueryHelpType:   q.HelpType,
		Urgency:         q.Urgency,
		Contact:         candidate,
	}, &result); err != nil {
		return RankResult{}, err
	}
	return result, nil
}

// post marshals body, issues the request and decodes the response into out
// (skipped when out is nil). Transport failures and non-2xx statuses come
// back as UpstreamError; undecodable payloads as ErrMalformed.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return upstreamErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrMalformed, op, err)
	}
	return nil
}
