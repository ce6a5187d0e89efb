package debounce

import (
	"testing"
	"time"
)

type size struct{ w, h int }

func TestBurstFiresOnceWithLastValue(t *testing.T) {
	start := time.Unix(0, 0)
	d := New[size](100 * time.Millisecond)

	d.Trigger(start, size{800, 600})
	d.Trigger(start.Add(20*time.Millisecond), size{900, 650})
	d.Trigger(start.Add(50*time.Millisecond), size{1024, 768})

	fired := 0
	var got size
	for ms := 0; ms <= 400; ms += 5 {
		if v, ok := d.Poll(start.Add(time.Duration(ms) * time.Millisecond)); ok {
			fired++
			got = v
		}
	}
	if fired != 1 {
		t.Fatalf("fired %d times, want 1", fired)
	}
	if got != (size{1024, 768}) {
		t.Errorf("fired with %v, want last value", got)
	}
}

func TestQuietPeriodRestarts(t *testing.T) {
	start := time.Unix(0, 0)
	d := New[int](100 * time.Millisecond)

	d.Trigger(start, 1)
	if _, ok := d.Poll(start.Add(90 * time.Millisecond)); ok {
		t.Fatal("fired before quiet period")
	}
	d.Trigger(start.Add(90*time.Millisecond), 2)
	if _, ok := d.Poll(start.Add(150 * time.Millisecond)); ok {
		t.Fatal("fired before restarted quiet period")
	}
	v, ok := d.Poll(start.Add(190 * time.Millisecond))
	if !ok || v != 2 {
		t.Errorf("Poll = %v, %v; want 2, true", v, ok)
	}
	if _, ok := d.Poll(start.Add(time.Second)); ok {
		t.Error("fired twice for one burst")
	}
}

func TestSeparateBurstsFireSeparately(t *testing.T) {
	start := time.Unix(0, 0)
	d := New[int](0) // default quiet

	d.Trigger(start, 1)
	if v, ok := d.Poll(start.Add(DefaultQuiet)); !ok || v != 1 {
		t.Fatalf("first burst: %v, %v", v, ok)
	}
	d.Trigger(start.Add(time.Second), 2)
	if v, ok := d.Poll(start.Add(time.Second + DefaultQuiet)); !ok || v != 2 {
		t.Fatalf("second burst: %v, %v", v, ok)
	}
	if _, ok := d.Poll(start.Add(5 * time.Second)); ok {
		t.Error("fired with nothing pending")
	}
}
