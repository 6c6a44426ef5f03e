package notify

import (
	"github.com/moyoez/resume-intake/tool"
	"github.com/moyoez/resume-intake/types"
)

// LogSink writes terminal events at info level and progress at debug level.
type LogSink struct{}

func (LogSink) Broadcast(n *types.Notification) {
	if n == nil {
		return
	}
	switch n.Type {
	case types.NotifyTypeUploadProgress, types.NotifyTypePendingChanged:
		tool.DefaultLogger.Debugf("[Notify] %s: %s", n.Type, n.Message)
	case types.NotifyTypeUploadFailed:
		tool.DefaultLogger.Warnf("[Notify] %s: %s", n.Title, n.Message)
	default:
		tool.DefaultLogger.Infof("[Notify] %s: %s", n.Title, n.Message)
	}
}

// Fanout forwards every notification to each hub in order. nil entries are skipped.
type Fanout []types.NotifyHub

func (f Fanout) Broadcast(n *types.Notification) {
	for _, h := range f {
		if h != nil {
			h.Broadcast(n)
		}
	}
}
