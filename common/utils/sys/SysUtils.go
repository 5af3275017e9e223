package sys

import (
	"gofoc/common/logger"
	"runtime/debug"

	"github.com/petermattis/goid"
)

func GetGID() uint64 {
	id := goid.Get()
	return uint64(id)
}

// CatchPanic logs a recovered panic with the goroutine id and stack.
// The tick loop is wrapped with it so a bad configuration surfaces in the
// run log instead of killing the host process silently.
func CatchPanic() {
	if err := recover(); err != nil {
		logger.Error("panic:", GetGID(), err, string(debug.Stack()))
	}
}
