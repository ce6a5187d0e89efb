package math

import (
	"testing"
)

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{10, 20, 30}
	got := a.Lerp(b, 0.5)
	want := Vec3{5, 10, 15}
	if got != want {
		t.Errorf("Vec3.Lerp() = %v, want %v", got, want)
	}
	if a.Lerp(b, 1) != b {
		t.Errorf("Vec3.Lerp(1) = %v, want %v", a.Lerp(b, 1), b)
	}
}

func TestVec3MaxComponent(t *testing.T) {
	if got := (Vec3{2, 1, 4}).MaxComponent(); got != 4 {
		t.Errorf("MaxComponent() = %v, want 4", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}
