package ffmpeg

import (
	"strconv"
	"strings"
)

// Window maps raw transcoder output lines onto a bounded progress range.
// Emissions are strictly monotonic within [min, max]; lines without a usable
// elapsed-time marker are ignored, so a Window degrades to a no-op consumer
// on unexpected output.
type Window struct {
	min      int
	max      int
	duration float64
	emit     func(percent int)
	last     int
}

// NewWindow builds a window spanning [min, max] for a source of the given
// duration in seconds. emit may be nil.
func NewWindow(min, max int, durationSeconds float64, emit func(percent int)) *Window {
	if max < min {
		max = min
	}
	return &Window{
		min:      min,
		max:      max,
		duration: durationSeconds,
		emit:     emit,
		last:     min,
	}
}

// Line consumes one raw output line.
func (w *Window) Line(line string) {
	if w.emit == nil || w.duration <= 0 {
		return
	}
	elapsed, ok := parseElapsed(line)
	if !ok {
		return
	}

	fraction := elapsed / w.duration
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	percent := w.min + int(fraction*float64(w.max-w.min))
	if percent <= w.last {
		return
	}
	w.last = percent
	w.emit(percent)
}

// parseElapsed extracts the elapsed seconds from an ffmpeg status line of the
// form "... time=HH:MM:SS.cc ...".
func parseElapsed(line string) (float64, bool) {
	idx := strings.Index(line, "time=")
	if idx < 0 {
		return 0, false
	}
	value := line[idx+len("time="):]
	if end := strings.IndexByte(value, ' '); end >= 0 {
		value = value[:end]
	}
	value = strings.TrimSpace(value)
	if value == "" || value == "N/A" {
		return 0, false
	}

	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err1 := strconv.ParseFloat(parts[0], 64)
	minutes, err2 := strconv.ParseFloat(parts[1], 64)
	seconds, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return hours*3600 + minutes*60 + seconds, true
}
