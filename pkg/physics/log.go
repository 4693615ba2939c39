// pkg/physics/log.go
package physics

import "github.com/opd-ai/go-collide/pkg/logging"

var logger = logging.NewLogger()

// SetLogger replaces the package logger used for usage warnings. Worlds
// created afterwards without their own logger use it too.
func SetLogger(l *logging.Logger) {
	if l == nil {
		l = logging.Discard()
	}
	logger = l
}
