package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/moyoez/resume-intake/tool"
)

const (
	defaultQRSize = 200
	maxQRSize     = 512
)

// QRController renders the table address as a QR code for phones on the same network.
type QRController struct {
	port int
}

func NewQRController(port int) *QRController {
	return &QRController{port: port}
}

// HandleQR GET /api/candidates/v1/qr?size=200x200&host=
func (qc *QRController) HandleQR(c *gin.Context) {
	host := c.Query("host")
	if host == "" {
		host = tool.FirstLANIPv4()
	}
	target := tool.BuildDashboardURL(host, qc.port)

	size := parseSize(c.Query("size"))
	if size <= 0 {
		size = defaultQRSize
	}
	size = min(size, maxQRSize)

	png, err := qrcode.Encode(target, qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnErrorf("Failed to encode QR code: %v", err))
		return
	}
	c.Header("X-Dashboard-URL", target)
	c.Data(http.StatusOK, "image/png", png)
}

// parseSize accepts "200x200" or "200".
func parseSize(s string) int {
	s = strings.TrimSpace(s)
	if before, _, ok := strings.Cut(s, "x"); ok {
		s = strings.TrimSpace(before)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
