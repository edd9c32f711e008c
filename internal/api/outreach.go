package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yanhann10/mingle/internal/aiserver"
	"github.com/yanhann10/mingle/internal/storage"
)

type outreachRequest struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Context     string `json:"context"`
}

func handleDraftOutreach(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

		var req outreachRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON body: %s", err)
			return
		}
		if req.SenderID == "" || req.RecipientID == "" {
			httpError(w, http.StatusBadRequest, codeInvalidRequest, "sender_id and recipient_id are required")
			return
		}

		sender, err := deps.Profiles.Get(req.SenderID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, codeNotFound, "sender profile %s not found", req.SenderID)
				return
			}
			httpError(w, http.StatusInternalServerError, codeAPIError, "get sender: %s", err)
			return
		}
		recipient, err := deps.Profiles.Get(req.RecipientID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, codeNotFound, "recipient profile %s not found", req.RecipientID)
				return
			}
			httpError(w, http.StatusInternalServerError, codeAPIError, "get recipient: %s", err)
			return
		}

		draft, err := deps.Drafter.DraftOutreach(r.Context(), aiserver.OutreachRequest{
			Sender:    contactFromProfile(sender),
			Recipient: contactFromProfile(recipient),
			Context:   req.Context,
		})
		if err != nil {
			status, code := classifyPipelineError(err)
			httpError(w, status, code, "draft outreach: %s", err)
			return
		}

		writeJSON(w, http.StatusOK, draft)
	}
}
