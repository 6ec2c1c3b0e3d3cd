package logging

import (
	"fmt"
	"runtime/debug"
)

// PanicReport is what gets logged when a task panics.
type PanicReport struct {
	Where string
	Value string
	Stack string
}

// Recover is deferred around a unit of work. A panic is logged with its
// stack and reported to onPanic (if set) instead of crashing the process.
//
//	defer logging.Recover(log, "looper task", nil)
func Recover(l *Logger, where string, onPanic func(PanicReport)) {
	r := recover()
	if r == nil {
		return
	}
	report := PanicReport{
		Where: where,
		Value: fmt.Sprintf("%v", r),
		Stack: string(debug.Stack()),
	}
	if l != nil {
		l.Error("recovered panic", "where", report.Where, "panic", report.Value, "stack", report.Stack)
	}
	if onPanic != nil {
		onPanic(report)
	}
}
