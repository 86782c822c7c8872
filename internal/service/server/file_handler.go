package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/vertextoedge/validfiles/internal/domain"
)

// uploadField is the multipart form field carrying the file
const uploadField = "file"

// maxStatusBody bounds the validity status request body
const maxStatusBody = 64 * 1024

// uploadEnvelope is the allowance for multipart boundaries, part headers and
// any extra form fields on top of the file size limit
const uploadEnvelope = 1 << 20

// FileHandler handles file and validity requests
type FileHandler struct {
	files         FileService
	maxUploadSize int64
	logger        *zap.Logger
}

// NewFileHandler creates a new FileHandler
func NewFileHandler(files FileService, maxUploadSize int64, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		files:         files,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

type uploadResponse struct {
	FileName string `json:"file_name"`
}

type fileListResponse struct {
	Files []domain.StoredFile `json:"files"`
	Total int                 `json:"total"`
}

type validListResponse struct {
	Files []domain.ValidityEntry `json:"files"`
	Total int                    `json:"total"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleUpload handles multipart uploads: POST /files
func (h *FileHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	bodyLimit := h.maxUploadSize + uploadEnvelope
	if r.ContentLength > bodyLimit {
		writeError(w, h.logger, "upload rejected", domain.ErrFileTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)

	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "Expected multipart/form-data body", http.StatusBadRequest)
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if isTooLarge(err) {
				writeError(w, h.logger, "upload rejected", err)
				return
			}
			http.Error(w, "Malformed multipart body", http.StatusBadRequest)
			return
		}

		if part.FormName() != uploadField || part.FileName() == "" {
			part.Close()
			continue
		}

		stored, err := h.files.Upload(r.Context(), part.FileName(), newSizeLimitedReader(part, h.maxUploadSize))
		part.Close()
		if err != nil {
			writeError(w, h.logger, "upload failed", err)
			return
		}

		h.logger.Info("file uploaded", zap.String("file_name", stored))
		writeJSON(w, http.StatusCreated, uploadResponse{FileName: stored})
		return
	}

	http.Error(w, fmt.Sprintf("Missing %q file field", uploadField), http.StatusBadRequest)
}

// HandleList handles stored file listing: GET /files
func (h *FileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.ListFiles(r.Context())
	if err != nil {
		writeError(w, h.logger, "failed to list files", err)
		return
	}
	writeJSON(w, http.StatusOK, fileListResponse{Files: files, Total: len(files)})
}

// HandleDownload streams a stored file: GET /files/{name}
func (h *FileHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	rc, info, err := h.files.Open(r.Context(), name)
	if err != nil {
		writeError(w, h.logger, "failed to open file", err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(info.FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": info.FileName}))

	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, info.FileName, info.ModifiedAt, rs)
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("failed to stream file", zap.String("file_name", name), zap.Error(err))
	}
}

// HandleDelete removes a stored file: DELETE /files/{name}
func (h *FileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := h.files.Delete(r.Context(), name); err != nil {
		writeError(w, h.logger, "failed to delete file", err)
		return
	}

	h.logger.Info("file deleted", zap.String("file_name", name))
	w.WriteHeader(http.StatusNoContent)
}

// HandleListValid returns the validity index: GET /files/valid
func (h *FileHandler) HandleListValid(w http.ResponseWriter, r *http.Request) {
	entries, err := h.files.ListValidFiles(r.Context())
	if err != nil {
		writeError(w, h.logger, "failed to list valid files", err)
		return
	}
	writeJSON(w, http.StatusOK, validListResponse{Files: entries, Total: len(entries)})
}

// HandleSetValidity records a status: PUT /files/valid/{name}
func (h *FileHandler) HandleSetValidity(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		http.Error(w, "File name required", http.StatusBadRequest)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStatusBody)).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		http.Error(w, "Status required", http.StatusBadRequest)
		return
	}

	if err := h.files.SetValidity(r.Context(), name, req.Status); err != nil {
		writeError(w, h.logger, "failed to set validity", err)
		return
	}

	writeJSON(w, http.StatusOK, domain.ValidityEntry{FileName: name, Status: &req.Status})
}

// HandleClearValidity removes a status: DELETE /files/valid/{name}
func (h *FileHandler) HandleClearValidity(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	removed, err := h.files.ClearValidity(r.Context(), name)
	if err != nil {
		writeError(w, h.logger, "failed to clear validity", err)
		return
	}
	if !removed {
		http.Error(w, "No validity status recorded", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// isTooLarge reports whether err came from exceeding the body limit
func isTooLarge(err error) bool {
	var maxBytes *http.MaxBytesError
	return errors.As(err, &maxBytes)
}

// sizeLimitedReader fails with domain.ErrFileTooLarge once more than the
// allowed number of bytes have been read
type sizeLimitedReader struct {
	r         io.Reader
	remaining int64
}

func newSizeLimitedReader(r io.Reader, limit int64) *sizeLimitedReader {
	return &sizeLimitedReader{r: r, remaining: limit}
}

func (l *sizeLimitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, domain.ErrFileTooLarge
	}
	// One byte past the limit is enough to tell EOF from overflow
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, domain.ErrFileTooLarge
	}
	return n, err
}
