package http

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/maintenance-tracker/internal/http/middleware"
	"github.com/nurpe/maintenance-tracker/internal/model"
	"github.com/nurpe/maintenance-tracker/internal/service"
	"github.com/nurpe/maintenance-tracker/internal/storage"
	"github.com/nurpe/maintenance-tracker/internal/syncstore"
)

var allowedDocumentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type budgetDocumentResponse struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	Download string `json:"download"`
}

type budgetResponse struct {
	ID          string                   `json:"id"`
	Description string                   `json:"description"`
	UserID      string                   `json:"user_id"`
	CreatedAt   time.Time                `json:"created_at"`
	Documents   []budgetDocumentResponse `json:"documents"`
}

type attachmentFailureResponse struct {
	FileName string `json:"file_name"`
	Step     string `json:"step"`
	Error    string `json:"error"`
}

func renderBudget(b model.Budget) budgetResponse {
	docs := make([]budgetDocumentResponse, 0, len(b.Documents))
	for _, d := range b.Documents {
		docs = append(docs, budgetDocumentResponse{
			ID:       d.ID,
			FileName: d.FileName,
			FileType: d.FileType,
			FileSize: d.FileSize,
			Download: fmt.Sprintf("/budgets/%s/documents/%s", b.ID, d.ID),
		})
	}
	return budgetResponse{
		ID:          b.ID,
		Description: b.Description,
		UserID:      b.UserID,
		CreatedAt:   b.CreatedAt,
		Documents:   docs,
	}
}

func renderBudgets(items []model.Budget) []budgetResponse {
	out := make([]budgetResponse, 0, len(items))
	for _, b := range items {
		out = append(out, renderBudget(b))
	}
	return out
}

func (h *Handler) listBudgets(c *gin.Context) {
	c.JSON(http.StatusOK, renderBudgets(h.store.Budgets.List()))
}

func (h *Handler) listPendingBudgets(c *gin.Context) {
	c.JSON(http.StatusOK, renderBudgets(h.store.Budgets.Pending()))
}

func (h *Handler) createBudget(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	attachments, cleanup, err := h.readAttachments(c)
	if err != nil {
		h.uploadError(c, err)
		return
	}
	defer cleanup()

	draft := model.BudgetDraft{
		Description: strings.TrimSpace(c.PostForm("description")),
		UserID:      principal.UserID,
	}
	budget, err := h.store.Budgets.Create(c.Request.Context(), draft, attachments)
	if err != nil {
		h.budgetError(c, budget, err)
		return
	}
	c.JSON(http.StatusCreated, renderBudget(budget))
}

func (h *Handler) addBudgetDocuments(c *gin.Context) {
	attachments, cleanup, err := h.readAttachments(c)
	if err != nil {
		h.uploadError(c, err)
		return
	}
	defer cleanup()

	budget, err := h.store.Budgets.AddDocuments(c.Request.Context(), c.Param("id"), attachments)
	if err != nil {
		h.budgetError(c, budget, err)
		return
	}
	c.JSON(http.StatusOK, renderBudget(budget))
}

func (h *Handler) deleteBudget(c *gin.Context) {
	if err := h.store.Budgets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) downloadBudgetDocument(c *gin.Context) {
	url, doc, err := h.store.Budgets.DownloadURL(c.Request.Context(), c.Param("id"), c.Param("documentID"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	if c.Query("redirect") == "false" {
		c.JSON(http.StatusOK, gin.H{"url": url, "file_name": doc.FileName})
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *Handler) serveBlob(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	data, contentType, err := h.blobs.Open(key, c.Query("token"))
	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	case err != nil:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// budgetError answers 207 when the budget row exists but some attachments
// failed, listing the files that must be sent again.
func (h *Handler) budgetError(c *gin.Context, budget model.Budget, err error) {
	var partial *syncstore.PartialWriteError
	if !errors.As(err, &partial) {
		h.handleError(c, err)
		return
	}
	failed := make([]attachmentFailureResponse, 0, len(partial.Failed))
	for _, f := range partial.Failed {
		failed = append(failed, attachmentFailureResponse{FileName: f.Name, Step: string(f.Step), Error: f.Err.Error()})
	}
	h.log.Warn().Err(err).Str("budget_id", partial.BudgetID).Msg("budget attachments incomplete")
	c.JSON(http.StatusMultiStatus, gin.H{
		"budget": renderBudget(budget),
		"failed": failed,
		"retry":  fmt.Sprintf("/budgets/%s/documents", partial.BudgetID),
	})
}

func (h *Handler) uploadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)})
		return
	}
	h.handleError(c, err)
}

// readAttachments opens every file of the "files" form field. The returned
// cleanup closes them once the write has finished.
func (h *Handler) readAttachments(c *gin.Context) ([]syncstore.Attachment, func(), error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one file is required", service.ErrInvalidInput)
	}

	var opened []multipart.File
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	attachments := make([]syncstore.Attachment, 0, len(headers))
	for _, fh := range headers {
		contentType, err := documentType(fh)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		f, err := fh.Open()
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		opened = append(opened, f)
		attachments = append(attachments, syncstore.Attachment{
			Name:        filepath.Base(fh.Filename),
			ContentType: contentType,
			Size:        fh.Size,
			Body:        f,
		})
	}
	return attachments, cleanup, nil
}

func documentType(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	fallback, ok := allowedDocumentTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s is not a PDF, DOC or DOCX file", service.ErrInvalidInput, fh.Filename)
	}
	if declared := fh.Header.Get("Content-Type"); declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != "application/octet-stream" {
			return mediaType, nil
		}
	}
	return fallback, nil
}
