package pdf

import "testing"

func TestMatrixIdentity(t *testing.T) {
	x, y := Identity.Transform(3, 4)
	if x != 3 || y != 4 {
		t.Errorf("identity transform changed point: got (%v, %v)", x, y)
	}
}

func TestMatrixTranslate(t *testing.T) {
	m := Translate(10, -5)
	x, y := m.Transform(1, 1)
	if x != 11 || y != -4 {
		t.Errorf("got (%v, %v), want (11, -4)", x, y)
	}
}

func TestMatrixMulOrderMatchesSequentialTransform(t *testing.T) {
	m := Scale(2, 3)
	n := Translate(5, 7)

	x1, y1 := m.Transform(1, 1)
	x1, y1 = n.Transform(x1, y1)

	x2, y2 := Identity.Mul(m).Mul(n).Transform(1, 1)

	if x1 != x2 || y1 != y2 {
		t.Errorf("Mul composition mismatch: sequential (%v,%v) vs composed (%v,%v)", x1, y1, x2, y2)
	}
}

func TestMatrixTransformVectorIgnoresTranslation(t *testing.T) {
	m := Translate(100, 200)
	dx, dy := m.TransformVector(3, 4)
	if dx != 3 || dy != 4 {
		t.Errorf("TransformVector should ignore translation, got (%v, %v)", dx, dy)
	}
}
