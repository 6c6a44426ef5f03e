package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/resume-intake/notify"
	"github.com/moyoez/resume-intake/tool"
)

// StatusController reports whether this service runs and whether the parser answers.
type StatusController struct {
	parserURL    string
	uploadURL    string
	hub          *notify.Hub
	probeTimeout time.Duration
}

func NewStatusController(parserURL, uploadURL string, hub *notify.Hub) *StatusController {
	return &StatusController{
		parserURL:    parserURL,
		uploadURL:    uploadURL,
		hub:          hub,
		probeTimeout: time.Second,
	}
}

// HandleStatus GET /api/intake/v1/status
func (sc *StatusController) HandleStatus(c *gin.Context) {
	probe, err := tool.ProbeParser(sc.parserURL, sc.probeTimeout)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}
	clients := 0
	if sc.hub != nil {
		clients = sc.hub.Len()
	}
	c.JSON(http.StatusOK, gin.H{
		"running":        true,
		"parser":         probe,
		"upload_url":     sc.uploadURL,
		"notify_clients": clients,
	})
}

// HandleConfigGet GET /api/intake/v1/config
// The effective config after file, env and flag overrides.
func HandleConfigGet(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(tool.GetCurrentConfig()))
}
