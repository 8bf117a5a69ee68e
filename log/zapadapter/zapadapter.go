// Package zapadapter adapts a *zap.Logger to hdrcap/log.Logger, for hosts
// that already carry go.uber.org/zap (as LanternOps-breeze's agent does)
// and want the capture core's diagnostics folded into the same structured
// log stream instead of the package default's bare stderr lines.
package zapadapter

import "go.uber.org/zap"

// Adapter wraps a *zap.Logger to satisfy hdrcap/log.Logger.
type Adapter struct {
	z *zap.SugaredLogger
}

// New wraps z. A nil z falls back to zap.NewNop(), matching the
// nil-safety convention LanternOps-breeze's BaseCollector uses for its
// own logger field.
func New(z *zap.Logger) Adapter {
	if z == nil {
		z = zap.NewNop()
	}
	return Adapter{z: z.Sugar()}
}

func (a Adapter) Debugf(format string, args ...interface{}) { a.z.Debugf(format, args...) }
func (a Adapter) Warnf(format string, args ...interface{})  { a.z.Warnf(format, args...) }
func (a Adapter) Errorf(format string, args ...interface{}) { a.z.Errorf(format, args...) }
