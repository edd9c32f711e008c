package voicenote

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrMissingAudio is returned when a request carries no audio field.
var ErrMissingAudio = errors.New("no audio file provided")

// ErrUnsupportedMedia is returned when the declared content type is not audio.
var ErrUnsupportedMedia = errors.New("unsupported content type")

// Fallback when the browser omits a content type on the upload part.
const defaultMimeType = "audio/webm"

// Upload is one staged voice-note payload. It owns a temporary file for the
// duration of a single request; Discard must run on every exit path.
type Upload struct {
	Path     string
	MimeType string
	Size     int64
}

// Ingest stages uploaded audio under a scoped temporary directory.
type Ingest struct {
	dir string
}

// NewIngest creates an Ingest staging files under dir.
func NewIngest(dir string) *Ingest {
	return &Ingest{dir: dir}
}

// StageRequest extracts the "audio" multipart field, validates the declared
// MIME type, and writes the bytes to a uniquely named file under the staging
// directory. Each request gets its own file, so concurrent uploads never
// share state.
func (in *Ingest) StageRequest(r *http.Request) (*Upload, error) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ErrMissingAudio
		}
		return nil, fmt.Errorf("reading multipart form: %w", err)
	}
	defer file.Close()

	mimeType := declaredMimeType(header)
	if !strings.HasPrefix(mimeType, "audio/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mimeType)
	}

	if err := os.MkdirAll(in.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	path := filepath.Join(in.dir, uuid.New().String()+".audio")
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating staged file: %w", err)
	}

	n, err := io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("staging audio: %w", err)
	}

	return &Upload{Path: path, MimeType: mimeType, Size: n}, nil
}

func declaredMimeType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		return defaultMimeType
	}
	// Drop parameters such as "; codecs=opus".
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(strings.ToLower(ct))
}

// EncodeBase64 reads the staged bytes back in the transport encoding the AI
// server expects.
func (u *Upload) EncodeBase64() (string, error) {
	data, err := os.ReadFile(u.Path)
	if err != nil {
		return "", fmt.Errorf("reading staged audio: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Discard removes the staged file. Safe to call more than once.
func (u *Upload) Discard() {
	if u.Path == "" {
		return
	}
	os.Remove(u.Path)
	u.Path = ""
}
