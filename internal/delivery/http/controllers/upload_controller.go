package controllers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	h "eventscout/internal/delivery/http/helpers"
	"eventscout/internal/domain"
)

// maxUploadMemory caps how much of a multipart body is buffered in memory
// while parsing; the rest spills to disk.
const maxUploadMemory = 8 << 20

type uploadFunc func(ctx context.Context, name, contentType string, size int64, content []byte, opts *domain.UploadOptions) (*domain.UploadResult, error)

type UploadController struct {
	Logger  *slog.Logger
	Service domain.UploadService
}

func NewUploadController(logger *slog.Logger, svc domain.UploadService) *UploadController {
	return &UploadController{
		Logger:  logger,
		Service: svc,
	}
}

// UploadImage godoc
// @Summary Upload an image
// @Description Accepts a multipart form with a "file" part. Size and MIME type are validated before any upload happens; on backend failure the result falls back to an ephemeral local handle.
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Param folder formData string false "Destination folder"
// @Success 201 {object} helpers.APIResponse "data contains the upload result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /upload/image [post]
func (c *UploadController) UploadImage(w http.ResponseWriter, r *http.Request) {
	c.upload(w, r, c.Service.UploadImage)
}

func (c *UploadController) UploadFile(w http.ResponseWriter, r *http.Request) {
	c.upload(w, r, c.Service.UploadFile)
}

func (c *UploadController) upload(w http.ResponseWriter, r *http.Request, fn uploadFunc) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing file part")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "failed to read file: "+err.Error())
		return
	}

	var opts *domain.UploadOptions
	if folder := r.FormValue("folder"); folder != "" {
		opts = &domain.UploadOptions{Folder: folder}
	}

	result, err := fn(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, content, opts)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, result)
}

func (c *UploadController) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteFile(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}
