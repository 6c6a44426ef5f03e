package controllers

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/resume-intake/dashboard"
	"github.com/moyoez/resume-intake/intake"
	"github.com/moyoez/resume-intake/projector"
	"github.com/moyoez/resume-intake/share"
	"github.com/moyoez/resume-intake/tool"
	"github.com/moyoez/resume-intake/transfer"
	"github.com/moyoez/resume-intake/types"
)

// CandidatesController is the table view. It keeps the sort state between requests.
type CandidatesController struct {
	store    *share.CandidateStore
	uploader intake.Uploader
	pageSize int

	mu   sync.Mutex
	view dashboard.View
}

func NewCandidatesController(store *share.CandidateStore, uploader intake.Uploader, pageSize int) *CandidatesController {
	if pageSize <= 0 {
		pageSize = dashboard.DefaultPageSize
	}
	return &CandidatesController{
		store:    store,
		uploader: uploader,
		pageSize: pageSize,
		view:     dashboard.NewView(),
	}
}

func (cc *CandidatesController) currentView() dashboard.View {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.view
}

func (cc *CandidatesController) page(c *gin.Context, v dashboard.View) types.CandidatePage {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "pageSize", cc.pageSize)
	return dashboard.BuildPage(cc.store.Load(), c.Query("q"), v, page, size)
}

// HandleList GET /api/candidates/v1?q=&page=&pageSize=
func (cc *CandidatesController) HandleList(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(cc.page(c, cc.currentView())))
}

// HandleSort POST /api/candidates/v1/sort/:field
// Same field flips the direction, another field sorts ascending.
func (cc *CandidatesController) HandleSort(c *gin.Context) {
	field, err := dashboard.ParseSortField(c.Param("field"))
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}
	cc.mu.Lock()
	cc.view.Toggle(field)
	v := cc.view
	cc.mu.Unlock()
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(cc.page(c, v)))
}

// HandleUpload POST /api/candidates/v1/upload
// Single "file" part, sent straight to the parser and ingested like any other upload.
func (cc *CandidatesController) HandleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing required parameter: file"))
		return
	}
	file, err := tool.PendingFileFromMultipart(header)
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}

	resp, err := cc.uploader.Upload(c.Request.Context(), []types.PendingFile{file}, nil)
	if err != nil {
		tool.DefaultLogger.Errorf("[Server] Table upload of %s failed: %v", file.Name, err)
		c.JSON(http.StatusBadGateway, tool.FastReturnError(transfer.Classify(err)))
		return
	}
	records := projector.Project(resp)
	all := cc.store.Ingest(records)
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{
		"message": resp.Message,
		"added":   len(records),
		"total":   len(all),
	}))
}

// HandleExport GET /api/candidates/v1/export
// The stored sequence as a JSON array, suitable for HandleImport.
func (cc *CandidatesController) HandleExport(c *gin.Context) {
	data, err := cc.store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="candidates.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// HandleImport POST /api/candidates/v1/import
// Replaces the stored sequence with an exported JSON array.
func (cc *CandidatesController) HandleImport(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}
	if err := cc.store.Restore(data); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(gin.H{"total": len(cc.store.Load())}))
}

// HandleClear DELETE /api/candidates/v1
func (cc *CandidatesController) HandleClear(c *gin.Context) {
	cc.store.Clear()
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}
