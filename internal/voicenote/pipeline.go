package voicenote

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yanhann10/mingle/internal/aiserver"
	"github.com/yanhann10/mingle/internal/profile"
)

// Stage names as they appear in the tool-call trace, in execution order.
const (
	StageTranscription = "transcription"
	StageExtraction    = "extraction"
	StageResolution    = "resolution"
	StageDraft         = "draft"
)

// Provenance tags for trace entries.
const (
	SourceOnDevice = "on-device"
	SourceCloud    = "cloud"
)

// ToolCall is one stage of the pipeline trace, annotated with where it ran.
type ToolCall struct {
	Tool    string         `json:"tool"`
	Source  string         `json:"source"`
	Payload map[string]any `json:"payload"`
}

// Result is the aggregate outcome of one voice-note pipeline run. Contact and
// draft fields are empty when resolution missed or drafting was not reached.
type Result struct {
	Transcript     string     `json:"transcript"`
	ContactName    string     `json:"contact_name,omitempty"`
	ContactEmail   string     `json:"contact_email,omitempty"`
	ContactRole    string     `json:"contact_role,omitempty"`
	ContactCompany string     `json:"contact_company,omitempty"`
	Action         string     `json:"action,omitempty"`
	EmailSubject   string     `json:"email_subject,omitempty"`
	EmailBody      string     `json:"email_body,omitempty"`
	ToolCalls      []ToolCall `json:"tool_calls"`
	Source         string     `json:"source"`
}

// PipelineError marks a run that reached a terminal failure state, recording
// which stage it failed in.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("voice note pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Transcriber is the slice of the AI server client that transcribes audio and
// extracts intent in one call.
type Transcriber interface {
	ProcessVoiceNote(ctx context.Context, audioBase64, mimeType string) (aiserver.VoiceNoteResult, error)
}

// Drafter is the slice of the AI server client that drafts outreach messages.
type Drafter interface {
	DraftOutreach(ctx context.Context, req aiserver.OutreachRequest) (aiserver.OutreachDraft, error)
}

// ContactResolver maps an extracted name to a stored profile; nil means no match.
type ContactResolver interface {
	Resolve(candidate string) (*profile.Profile, error)
}

// Pipeline drives one voice note through transcription, intent extraction,
// contact resolution, and email drafting. Only the transcription call is
// fatal: without a transcript the remaining stages are meaningless. Every
// later stage degrades gracefully to a partial result.
type Pipeline struct {
	transcriber Transcriber
	drafter     Drafter
	resolver    ContactResolver
	logger      *slog.Logger
}

// NewPipeline creates a Pipeline wired to its collaborators.
func NewPipeline(transcriber Transcriber, drafter Drafter, resolver ContactResolver) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		drafter:     drafter,
		resolver:    resolver,
		logger:      slog.Default(),
	}
}

// Run processes one staged upload to completion. The caller keeps ownership
// of the upload and its cleanup; Run only reads it.
func (p *Pipeline) Run(ctx context.Context, up *Upload) (*Result, error) {
	audioB64, err := up.EncodeBase64()
	if err != nil {
		return nil, &PipelineError{Stage: StageTranscription, Err: err}
	}

	// Transcribe + extract in one upstream call. This is the single stage
	// whose failure terminates the run.
	extraction, err := p.transcriber.ProcessVoiceNote(ctx, audioB64, up.MimeType)
	if err != nil {
		return nil, &PipelineError{Stage: StageTranscription, Err: err}
	}

	source := extraction.Source
	if source == "" {
		source = SourceCloud
	}

	result := &Result{
		Transcript: extraction.Transcript,
		Action:     extraction.Action,
		Source:     source,
	}
	result.ToolCalls = append(result.ToolCalls, ToolCall{
		Tool:   StageTranscription,
		Source: source,
		Payload: map[string]any{
			"mime_type":  up.MimeType,
			"size_bytes": up.Size,
		},
	})
	// Extraction fields may be empty; that is a partial result, not a failure.
	result.ToolCalls = append(result.ToolCalls, ToolCall{
		Tool:   StageExtraction,
		Source: source,
		Payload: map[string]any{
			"contact_name": extraction.ContactName,
			"topic":        extraction.Topic,
			"action":       extraction.Action,
		},
	})

	contact, err := p.resolver.Resolve(extraction.ContactName)
	if err != nil {
		return nil, &PipelineError{Stage: StageResolution, Err: err}
	}
	resolutionPayload := map[string]any{
		"candidate": extraction.ContactName,
		"found":     contact != nil,
	}
	if contact != nil {
		resolutionPayload["profile_id"] = contact.ID
		result.ContactName = contact.Name
		result.ContactEmail = contact.Email()
		result.ContactRole = contact.Role
		result.ContactCompany = contact.Company
	}
	result.ToolCalls = append(result.ToolCalls, ToolCall{
		Tool:    StageResolution,
		Source:  SourceOnDevice,
		Payload: resolutionPayload,
	})

	// Without a resolved contact there is nobody to draft for; the run still
	// completes with whatever was extracted.
	if contact == nil {
		return result, nil
	}

	subject, body, draftSource := p.draft(ctx, contact, extraction)
	result.EmailSubject = subject
	result.EmailBody = body
	result.ToolCalls = append(result.ToolCalls, ToolCall{
		Tool:   StageDraft,
		Source: draftSource,
		Payload: map[string]any{
			"subject": subject,
		},
	})

	return result, nil
}

// draft asks the AI server for a personalised body and falls back to the
// deterministic template when the upstream call fails. The subject line is
// always templated from the extracted topic.
func (p *Pipeline) draft(ctx context.Context, contact *profile.Profile, extraction aiserver.VoiceNoteResult) (subject, body, source string) {
	topic := extraction.Topic
	if topic == "" {
		topic = defaultTopic
	}
	action := extraction.Action
	if action == "" {
		action = defaultAction
	}

	subject, body = FollowUpTemplate(contact.Name, topic, action)

	draft, err := p.drafter.DraftOutreach(ctx, aiserver.OutreachRequest{
		Recipient: aiserver.Contact{
			ID:          contact.ID,
			Name:        contact.Name,
			Role:        contact.Role,
			Company:     contact.Company,
			Bio:         contact.Bio,
			Skills:      contact.Skills,
			LookingFor:  contact.LookingFor,
			CanHelpWith: contact.CanHelpWith,
			Domains:     contact.Domains,
		},
		Context: fmt.Sprintf("We met and talked about %s. I want to %s.", topic, action),
	})
	if err != nil {
		p.logger.Warn("draft generation failed, using template", "contact", contact.Name, "error", err)
		return subject, body, SourceOnDevice
	}

	source = draft.Source
	if source == "" {
		source = SourceCloud
	}
	return subject, draft.Message, source
}
