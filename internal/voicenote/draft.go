package voicenote

import "fmt"

const (
	defaultTopic  = "our recent conversation"
	defaultAction = "schedule a follow-up meeting"
)

// FollowUpTemplate builds the deterministic follow-up email used when the AI
// server cannot produce a draft. Empty topic and action fall back to generic
// phrasing, so the result is always sendable.
func FollowUpTemplate(contactName, topic, action string) (subject, body string) {
	if topic == "" {
		topic = defaultTopic
	}
	if action == "" {
		action = defaultAction
	}
	subject = fmt.Sprintf("Great meeting you - %s", topic)
	body = fmt.Sprintf(`Hi %s,

It was wonderful meeting you and discussing %s! I really enjoyed our conversation.

I'd love to %s. Would you be available sometime next week?

Looking forward to staying in touch.

Best regards`, contactName, topic, action)
	return subject, body
}
