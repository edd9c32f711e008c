package voicenote

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yanhann10/mingle/internal/aiserver"
	"github.com/yanhann10/mingle/internal/profile"
)

type mockAI struct {
	extraction aiserver.VoiceNoteResult
	extractErr error
	draft      aiserver.OutreachDraft
	draftErr   error

	draftCalls int
}

func (m *mockAI) ProcessVoiceNote(ctx context.Context, audioBase64, mimeType string) (aiserver.VoiceNoteResult, error) {
	return m.extraction, m.extractErr
}

func (m *mockAI) DraftOutreach(ctx context.Context, req aiserver.OutreachRequest) (aiserver.OutreachDraft, error) {
	m.draftCalls++
	return m.draft, m.draftErr
}

type mockResolver struct {
	profile *profile.Profile
	err     error
}

func (m *mockResolver) Resolve(candidate string) (*profile.Profile, error) {
	return m.profile, m.err
}

func stagedUpload(t *testing.T, content string) *Upload {
	t.Helper()
	path := filepath.Join(t.TempDir(), "note.audio")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing staged file: %v", err)
	}
	return &Upload{Path: path, MimeType: "audio/webm", Size: int64(len(content))}
}

func mayaProfile() *profile.Profile {
	return &profile.Profile{
		ID:        "p1",
		Name:      "Maya Patel",
		Role:      "Design Lead",
		Company:   "Figma Co",
		CreatedAt: time.Now().UTC(),
	}
}

func TestRunFullPipeline(t *testing.T) {
	ai := &mockAI{
		extraction: aiserver.VoiceNoteResult{
			Transcript:  "Really enjoyed meeting Maya and talking about design systems. Send an email to schedule a follow-up meeting.",
			ContactName: "Maya",
			Topic:       "design systems",
			Action:      "schedule a follow-up meeting",
			Source:      "hybrid",
		},
		draft: aiserver.OutreachDraft{Message: "Hi Maya, great to meet you!", Source: "cloud"},
	}
	p := NewPipeline(ai, ai, &mockResolver{profile: mayaProfile()})

	result, err := p.Run(context.Background(), stagedUpload(t, "audio-bytes"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ContactName != "Maya Patel" {
		t.Errorf("ContactName = %q, want Maya Patel", result.ContactName)
	}
	if result.ContactEmail != "maya.patel@figmaco.com" {
		t.Errorf("ContactEmail = %q", result.ContactEmail)
	}
	if result.ContactRole != "Design Lead" || result.ContactCompany != "Figma Co" {
		t.Errorf("contact fields = %q / %q", result.ContactRole, result.ContactCompany)
	}
	if result.EmailBody == "" {
		t.Error("EmailBody is empty, want non-empty draft")
	}
	if result.EmailSubject != "Great meeting you - design systems" {
		t.Errorf("EmailSubject = %q", result.EmailSubject)
	}

	// The trace contains exactly the four stages, in execution order.
	want := []string{StageTranscription, StageExtraction, StageResolution, StageDraft}
	if len(result.ToolCalls) != len(want) {
		t.Fatalf("trace has %d entries, want %d: %+v", len(result.ToolCalls), len(want), result.ToolCalls)
	}
	for i, stage := range want {
		if result.ToolCalls[i].Tool != stage {
			t.Errorf("ToolCalls[%d].Tool = %q, want %q", i, result.ToolCalls[i].Tool, stage)
		}
	}
	if result.ToolCalls[2].Source != SourceOnDevice {
		t.Errorf("resolution source = %q, want on-device", result.ToolCalls[2].Source)
	}
	if result.ToolCalls[3].Source != "cloud" {
		t.Errorf("draft source = %q, want cloud", result.ToolCalls[3].Source)
	}
}

func TestRunTranscriptionFailureIsFatal(t *testing.T) {
	ai := &mockAI{extractErr: &aiserver.UpstreamError{Op: "process-voice-note", Timeout: true, Err: context.DeadlineExceeded}}
	p := NewPipeline(ai, ai, &mockResolver{})

	_, err := p.Run(context.Background(), stagedUpload(t, "audio"))

	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want PipelineError", err)
	}
	if perr.Stage != StageTranscription {
		t.Errorf("Stage = %q, want transcription", perr.Stage)
	}
	var ue *aiserver.UpstreamError
	if !errors.As(err, &ue) || !ue.Timeout {
		t.Errorf("wrapped error = %v, want timeout UpstreamError", perr.Err)
	}
}

func TestRunMissingExtractionFieldsDegrades(t *testing.T) {
	ai := &mockAI{
		extraction: aiserver.VoiceNoteResult{Transcript: "mumbled words"},
	}
	p := NewPipeline(ai, ai, &mockResolver{})

	result, err := p.Run(context.Background(), stagedUpload(t, "audio"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Transcript != "mumbled words" {
		t.Errorf("Transcript = %q", result.Transcript)
	}
	if result.ContactName != "" || result.EmailBody != "" {
		t.Errorf("expected empty contact/draft fields: %+v", result)
	}
	// No contact resolved: draft stage skipped, resolution still traced.
	want := []string{StageTranscription, StageExtraction, StageResolution}
	if len(result.ToolCalls) != len(want) {
		t.Fatalf("trace has %d entries, want %d", len(result.ToolCalls), len(want))
	}
	if found := result.ToolCalls[2].Payload["found"]; found != false {
		t.Errorf("resolution payload found = %v, want false", found)
	}
	if ai.draftCalls != 0 {
		t.Errorf("draft called %d times, want 0", ai.draftCalls)
	}
}

func TestRunUnresolvedContactSkipsDraft(t *testing.T) {
	ai := &mockAI{
		extraction: aiserver.VoiceNoteResult{
			Transcript:  "Met someone new today.",
			ContactName: "Zanzibar",
			Action:      "say hi",
		},
	}
	p := NewPipeline(ai, ai, &mockResolver{profile: nil})

	result, err := p.Run(context.Background(), stagedUpload(t, "audio"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.EmailSubject != "" || result.EmailBody != "" {
		t.Errorf("draft fields set without a contact: %+v", result)
	}
	if result.Action != "say hi" {
		t.Errorf("Action = %q, want extraction preserved", result.Action)
	}
	if ai.draftCalls != 0 {
		t.Errorf("draft called %d times, want 0", ai.draftCalls)
	}
}

func TestRunDraftFailureFallsBackToTemplate(t *testing.T) {
	ai := &mockAI{
		extraction: aiserver.VoiceNoteResult{
			Transcript:  "Really enjoyed meeting Maya.",
			ContactName: "Maya",
			Topic:       "design systems",
			Action:      "schedule a follow-up meeting",
		},
		draftErr: &aiserver.UpstreamError{Op: "draft-outreach", Err: errors.New("connection refused")},
	}
	p := NewPipeline(ai, ai, &mockResolver{profile: mayaProfile()})

	result, err := p.Run(context.Background(), stagedUpload(t, "audio"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.EmailBody == "" {
		t.Fatal("EmailBody empty, want template fallback")
	}
	if !strings.Contains(result.EmailBody, "Maya Patel") {
		t.Errorf("fallback body does not address the contact: %q", result.EmailBody)
	}
	if !strings.Contains(result.EmailBody, "design systems") {
		t.Errorf("fallback body missing topic: %q", result.EmailBody)
	}
	last := result.ToolCalls[len(result.ToolCalls)-1]
	if last.Tool != StageDraft || last.Source != SourceOnDevice {
		t.Errorf("draft trace = %+v, want on-device fallback", last)
	}
}

func TestRunResolverStoreErrorIsFatal(t *testing.T) {
	ai := &mockAI{
		extraction: aiserver.VoiceNoteResult{Transcript: "hello", ContactName: "Maya"},
	}
	p := NewPipeline(ai, ai, &mockResolver{err: errors.New("db locked")})

	_, err := p.Run(context.Background(), stagedUpload(t, "audio"))
	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want PipelineError", err)
	}
	if perr.Stage != StageResolution {
		t.Errorf("Stage = %q, want resolution", perr.Stage)
	}
}

func TestRunDefaultsSourceToCloud(t *testing.T) {
	ai := &mockAI{
		extraction: aiserver.VoiceNoteResult{Transcript: "words"},
	}
	p := NewPipeline(ai, ai, &mockResolver{})

	result, err := p.Run(context.Background(), stagedUpload(t, "audio"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Source != SourceCloud {
		t.Errorf("Source = %q, want cloud default", result.Source)
	}
}

func TestFollowUpTemplateDefaults(t *testing.T) {
	subject, body := FollowUpTemplate("Maya Patel", "", "")
	if subject != "Great meeting you - our recent conversation" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "schedule a follow-up meeting") {
		t.Errorf("body missing default action: %q", body)
	}
}
