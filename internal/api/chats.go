package api

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/MikeSquared-Agency/leadlens/internal/ingest"
)

const uploadField = "file"

// upload handles POST /api/v1/chats/upload. The CSV is either the raw body or
// the "file" part of a multipart form.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}

	body, err := uploadBody(r)
	if err != nil {
		uploadError(w, err)
		return
	}
	defer body.Close()

	sum, err := s.proc.Ingest(r.Context(), body)
	if err != nil {
		uploadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func uploadBody(r *http.Request) (io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}
	file, _, err := r.FormFile(uploadField)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func uploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
	case errors.Is(err, ingest.ErrMalformed):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, http.ErrMissingFile):
		writeError(w, http.StatusBadRequest, `multipart field "file" is required`)
	default:
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
	}
}

// clear handles DELETE /api/v1/chats.
func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	if err := s.proc.Clear(r.Context()); err != nil {
		s.logger.Error("failed to clear snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear chats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
