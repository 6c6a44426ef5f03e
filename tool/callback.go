package tool

import (
	"fmt"
	"maps"

	"github.com/gin-gonic/gin"
)

// Reply bodies for the local API: failures carry "error", successes carry "status".

func FastReturnError(msg string) gin.H {
	return gin.H{
		"error": msg,
	}
}

func FastReturnErrorf(format string, args ...any) gin.H {
	return FastReturnError(fmt.Sprintf(format, args...))
}

func FastReturnErrorWithData(msg string, data map[string]any) gin.H {
	resp := FastReturnError(msg)
	maps.Copy(resp, data)
	return resp
}

func FastReturnSuccess() gin.H {
	return gin.H{
		"status": "ok",
	}
}

func FastReturnSuccessWithData(data any) gin.H {
	return gin.H{
		"status": "ok",
		"data":   data,
	}
}
