package binary

import "runtime"

const (
	// ToolName is the canonical name of the wrapped tool.
	ToolName = "treefmt"

	// lockFileName is the marker whose existence means an install is running.
	lockFileName = ".treefmt.lock"
	// stagingPrefix names per-process staging files: .treefmt.tmp.<pid>.
	stagingPrefix = ".treefmt.tmp."
)

// ExecutableName returns the file name of the treefmt binary on goos.
func ExecutableName(goos string) string {
	if goos == "windows" {
		return ToolName + ".exe"
	}
	return ToolName
}

// Logger provides structured logging for installation progress.
// *github.com/charmbracelet/log.Logger satisfies it.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// noopLogger is a Logger implementation that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(msg interface{}, keyvals ...interface{}) {}
func (noopLogger) Info(msg interface{}, keyvals ...interface{})  {}
func (noopLogger) Warn(msg interface{}, keyvals ...interface{})  {}
func (noopLogger) Error(msg interface{}, keyvals ...interface{}) {}

func loggerOrNoop(l Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return l
}

// hostExecutableName is the binary file name for the running OS.
var hostExecutableName = ExecutableName(runtime.GOOS)
