package ffmpeg

import "testing"

func TestWindowMapsElapsedToRange(t *testing.T) {
	var emitted []int
	window := NewWindow(15, 50, 100, func(p int) { emitted = append(emitted, p) })

	window.Line("frame= 10 time=00:00:20.00 bitrate=1k")  // 20% -> 22
	window.Line("frame= 20 time=00:00:50.00 bitrate=1k")  // 50% -> 32
	window.Line("frame= 30 time=00:01:40.00 bitrate=1k")  // 100% -> 50
	window.Line("frame= 40 time=00:03:00.00 bitrate=1k")  // past end, clamped, no new emission

	want := []int{22, 32, 50}
	if len(emitted) != len(want) {
		t.Fatalf("expected emissions %v, got %v", want, emitted)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Fatalf("expected emissions %v, got %v", want, emitted)
		}
	}
}

func TestWindowIsMonotonic(t *testing.T) {
	var emitted []int
	window := NewWindow(0, 100, 100, func(p int) { emitted = append(emitted, p) })

	window.Line("time=00:00:50.00")
	window.Line("time=00:00:10.00") // regression must not emit
	window.Line("time=00:00:50.00") // repeat must not emit
	window.Line("time=00:00:60.00")

	if len(emitted) != 2 || emitted[0] != 50 || emitted[1] != 60 {
		t.Fatalf("expected monotonic emissions [50 60], got %v", emitted)
	}
}

func TestWindowIgnoresUnusableLines(t *testing.T) {
	called := false
	window := NewWindow(0, 100, 100, func(int) { called = true })

	window.Line("Input #0, matroska, from 'in.mkv':")
	window.Line("time=N/A")
	window.Line("time=garbage")
	window.Line("")

	if called {
		t.Fatal("expected no emissions for unusable lines")
	}
}

func TestWindowWithZeroDuration(t *testing.T) {
	called := false
	window := NewWindow(0, 100, 0, func(int) { called = true })
	window.Line("time=00:00:10.00")
	if called {
		t.Fatal("expected no emissions when duration is unknown")
	}
}

func TestWindowNilEmitIsValid(t *testing.T) {
	window := NewWindow(0, 100, 100, nil)
	window.Line("time=00:00:10.00") // must not panic
}

func TestParseElapsed(t *testing.T) {
	cases := []struct {
		line string
		want float64
		ok   bool
	}{
		{"time=00:01:30.50 bitrate=1k", 90.5, true},
		{"frame=1 fps=0 q=-1.0 time=01:00:00.00 speed=1x", 3600, true},
		{"no marker here", 0, false},
		{"time=bad:00:00", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseElapsed(tc.line)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parseElapsed(%q) = %v,%v want %v,%v", tc.line, got, ok, tc.want, tc.ok)
		}
	}
}
