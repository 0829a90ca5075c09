package errtree

import (
	"fmt"
	"runtime"
)

// Frame records one source location a node passed through.
type Frame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// String returns the frame in "function (file:line)" form.
func (f Frame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.Function, f.File, f.Line)
}

// Caller returns the frame of the caller's stack, skipping skip additional
// frames (0 reports the direct caller of Caller).
func Caller(skip int) Frame {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Frame{Function: "unknown"}
	}
	fn := "unknown"
	if f := runtime.FuncForPC(pc); f != nil {
		fn = f.Name()
	}
	return Frame{Function: fn, File: file, Line: line}
}

// frameList is a persistent, prepend-only list of frames. Recording a frame
// allocates a new head sharing the old tail; an existing list is never
// rewritten, so concurrent holders of the same tail never observe each
// other's prepends.
type frameList struct {
	frame Frame
	next  *frameList
}

// push returns a new head with f prepended. The receiver may be nil.
func (l *frameList) push(f Frame) *frameList {
	return &frameList{frame: f, next: l}
}

// slice returns the frames head-first. The result is a fresh slice.
func (l *frameList) slice() []Frame {
	var out []Frame
	for n := l; n != nil; n = n.next {
		out = append(out, n.frame)
	}
	return out
}

// fromFrames rebuilds a list from a head-first slice.
func fromFrames(frames []Frame) *frameList {
	var l *frameList
	for i := len(frames) - 1; i >= 0; i-- {
		l = l.push(frames[i])
	}
	return l
}
