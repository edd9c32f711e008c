package api

import (
	"errors"
	"net/http"

	"github.com/yanhann10/mingle/internal/aiserver"
	"github.com/yanhann10/mingle/internal/voicenote"
)

// Voice notes arrive as raw multipart audio, so the cap is far above
// the JSON body limit.
const maxVoiceNoteBody = 25 << 20

func handleProcessVoiceNote(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxVoiceNoteBody)

		up, err := deps.Ingest.StageRequest(r)
		if err != nil {
			var maxErr *http.MaxBytesError
			switch {
			case errors.Is(err, voicenote.ErrMissingAudio):
				httpError(w, http.StatusBadRequest, codeInvalidRequest, "no audio file in request; expected multipart field %q", "audio")
			case errors.Is(err, voicenote.ErrUnsupportedMedia):
				httpError(w, http.StatusBadRequest, codeInvalidRequest, "unsupported media type; expected an audio upload")
			case errors.As(err, &maxErr):
				httpError(w, http.StatusRequestEntityTooLarge, codeInvalidRequest, "audio upload exceeds the %d byte limit", maxErr.Limit)
			default:
				httpError(w, http.StatusInternalServerError, codeAPIError, "stage voice note: %s", err)
			}
			return
		}
		defer up.Discard()

		result, err := deps.Pipeline.Run(r.Context(), up)
		if err != nil {
			status, code := classifyPipelineError(err)
			httpError(w, status, code, "voice note processing failed: %s", err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// classifyPipelineError maps a fatal pipeline failure to an HTTP status.
// Upstream timeouts get 504, other upstream failures 502, and anything
// that is not an AI server problem falls through to 500.
func classifyPipelineError(err error) (int, string) {
	var uerr *aiserver.UpstreamError
	if errors.As(err, &uerr) {
		if uerr.Timeout {
			return http.StatusGatewayTimeout, codeUpstreamTimeout
		}
		return http.StatusBadGateway, codeUpstreamUnavailable
	}
	if errors.Is(err, aiserver.ErrMalformed) {
		return http.StatusBadGateway, codeUpstreamUnavailable
	}
	return http.StatusInternalServerError, codeAPIError
}
