package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/llun/fitfeed/internal/api/middleware"
	"github.com/llun/fitfeed/internal/domain"
	"github.com/llun/fitfeed/internal/service"
)

// ImportHandler handles file upload and archive import endpoints.
type ImportHandler struct {
	imports *service.ImportService
}

// NewImportHandler creates a new import handler.
// Parameters:
//   - imports: import service instance.
// Returns:
//   - *ImportHandler: initialized handler.
func NewImportHandler(imports *service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// UploadFile handles POST /api/v1/files: a single fit/gpx/tcx upload
// imported synchronously into one activity.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) UploadFile(c *gin.Context) {
	actorID := middleware.GetActorID(c)

	name, data, ok := readUpload(c)
	if !ok {
		return
	}
	visibility := parseVisibility(c.PostForm("visibility"))
	description := c.PostForm("description")

	activity, err := h.imports.ImportFile(c.Request.Context(), actorID, name, data, visibility, description)
	if err != nil {
		writeImportError(c, err)
		return
	}
	c.JSON(http.StatusCreated, activity)
}

// StartImport handles POST /api/v1/imports: an archive upload starting
// an asynchronous import job.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) StartImport(c *gin.Context) {
	actorID := middleware.GetActorID(c)

	_, data, ok := readUpload(c)
	if !ok {
		return
	}
	visibility := parseVisibility(c.PostForm("visibility"))

	job, err := h.imports.StartArchiveImport(c.Request.Context(), actorID, data, visibility)
	if err != nil {
		writeImportError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// GetImport handles GET /api/v1/imports/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) GetImport(c *gin.Context) {
	actorID := middleware.GetActorID(c)

	job, err := h.imports.GetJob(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		writeImportError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type patchImportRequest struct {
	Action string `json:"action" binding:"required"`
}

// PatchImport handles PATCH /api/v1/imports/:id with an action of
// "retry" or "cancel".
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) PatchImport(c *gin.Context) {
	actorID := middleware.GetActorID(c)

	var req patchImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	var job *domain.ArchiveImportJob
	var err error
	switch req.Action {
	case "retry":
		job, err = h.imports.Retry(c.Request.Context(), actorID, c.Param("id"))
	case "cancel":
		job, err = h.imports.Cancel(c.Request.Context(), actorID, c.Param("id"))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + req.Action})
		return
	}
	if err != nil {
		writeImportError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// readUpload extracts the multipart "file" field. On failure it writes
// the error response and returns ok=false.
func readUpload(c *gin.Context) (name string, data []byte, ok bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return "", nil, false
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return "", nil, false
	}
	defer f.Close()
	data, err = io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}

func parseVisibility(raw string) domain.Visibility {
	switch domain.Visibility(raw) {
	case domain.VisibilityPublic:
		return domain.VisibilityPublic
	case domain.VisibilityUnlisted:
		return domain.VisibilityUnlisted
	default:
		return domain.VisibilityPrivate
	}
}

// writeImportError maps domain errors onto HTTP statuses. Conflicts
// include the current job snapshot so the client can reconcile.
func writeImportError(c *gin.Context, err error) {
	var quotaErr *domain.QuotaExceededError
	var conflictErr *domain.ConflictError
	var invalidErr *domain.InvalidFileError

	switch {
	case errors.As(err, &quotaErr):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": quotaErr.Error(),
			"used":  quotaErr.Used,
			"limit": quotaErr.Limit,
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error": conflictErr.Error(),
			"job":   conflictErr.Job,
		})
	case errors.As(err, &invalidErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": invalidErr.Error()})
	case errors.Is(err, domain.ErrUnsupportedFileType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
