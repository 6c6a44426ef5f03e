package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/resume-intake/intake"
	"github.com/moyoez/resume-intake/tool"
	"github.com/moyoez/resume-intake/types"
)

// IntakeController exposes the upload view over HTTP.
type IntakeController struct {
	intake   *intake.Controller
	accepted []string
	baseCtx  context.Context
}

// NewIntakeController creates the controller. Uploads started through it live as long as ctx.
func NewIntakeController(ctx context.Context, ic *intake.Controller, accepted []string) *IntakeController {
	if ctx == nil {
		ctx = context.Background()
	}
	return &IntakeController{intake: ic, accepted: accepted, baseCtx: ctx}
}

type dragRequest struct {
	Dragging *bool `json:"dragging" binding:"required"`
}

func (ic *IntakeController) pendingBody() gin.H {
	return tool.FastReturnSuccessWithData(gin.H{
		"files":    ic.intake.PendingInfo(),
		"dragging": ic.intake.Dragging(),
	})
}

// HandlePendingList GET /api/intake/v1/pending
func (ic *IntakeController) HandlePendingList(c *gin.Context) {
	c.JSON(http.StatusOK, ic.pendingBody())
}

// HandlePendingAdd POST /api/intake/v1/pending
// Multipart "files" parts are appended in order. ?drop=true also clears the drag flag.
func (ic *IntakeController) HandlePendingAdd(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnErrorf("Invalid multipart body: %v", err))
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing required parameter: files"))
		return
	}

	files := make([]types.PendingFile, 0, len(headers))
	unlisted := []string{}
	for _, h := range headers {
		f, err := tool.PendingFileFromMultipart(h)
		if err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
			return
		}
		if !tool.HasAcceptedExtension(f.Name, ic.accepted) {
			unlisted = append(unlisted, f.Name)
		}
		files = append(files, f)
	}

	if c.Query("drop") == "true" {
		ic.intake.Drop(files...)
	} else {
		ic.intake.AddFiles(files...)
	}
	body := ic.pendingBody()
	body["unlisted"] = unlisted
	c.JSON(http.StatusOK, body)
}

// HandlePendingRemove DELETE /api/intake/v1/pending/:index
func (ic *IntakeController) HandlePendingRemove(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid index"))
		return
	}
	ic.intake.RemoveFile(index)
	c.JSON(http.StatusOK, ic.pendingBody())
}

// HandlePendingClear DELETE /api/intake/v1/pending
func (ic *IntakeController) HandlePendingClear(c *gin.Context) {
	ic.intake.ClearAll()
	c.JSON(http.StatusOK, ic.pendingBody())
}

// HandleDrag PUT /api/intake/v1/drag
func (ic *IntakeController) HandleDrag(c *gin.Context) {
	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}
	ic.intake.SetDragging(*req.Dragging)
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{"dragging": *req.Dragging}))
}

// HandleSubmit POST /api/intake/v1/submit
func (ic *IntakeController) HandleSubmit(c *gin.Context) {
	session, err := ic.intake.Submit(ic.baseCtx)
	switch {
	case errors.Is(err, intake.ErrNoPendingFiles):
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
	case errors.Is(err, intake.ErrSessionActive):
		c.JSON(http.StatusConflict, tool.FastReturnErrorWithData(err.Error(), map[string]any{"session": session}))
	case err != nil:
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
	default:
		c.JSON(http.StatusAccepted, tool.FastReturnSuccessWithData(session))
	}
}

// HandleSession GET /api/intake/v1/session[?id=]
func (ic *IntakeController) HandleSession(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ic.intake.Session()))
		return
	}
	session, ok := ic.intake.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Session not found"))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(session))
}
