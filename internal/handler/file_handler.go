package handler

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	appErrors "github.com/vishaldhakad2025/GharZo-sub002/pkg/errors"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/response"
	"github.com/vishaldhakad2025/GharZo-sub002/pkg/storage"
)

// FileHandler redeems signed file tokens issued elsewhere in the API, such
// as complaint photo URLs. The token itself carries authorization, so the
// route is public.
type FileHandler struct {
	signer *storage.SignedURLSigner
	store  *storage.LocalStorage
}

// NewFileHandler constructs a file handler.
func NewFileHandler(signer *storage.SignedURLSigner, store *storage.LocalStorage) *FileHandler {
	return &FileHandler{signer: signer, store: store}
}

// Download godoc
// @Summary Download a file via a signed token
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed file token"
// @Success 200 {file} binary
// @Router /public/files/{token} [get]
func (h *FileHandler) Download(c *gin.Context) {
	_, relPath, _, err := h.signer.Parse(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired file token"))
		return
	}

	file, err := h.store.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat file"))
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(relPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
