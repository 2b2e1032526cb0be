package pdf

import "testing"

func TestNormalizeLigaturesExpandsKnownCodePoints(t *testing.T) {
	in := "oﬁce" // "o" + fi-ligature + "ce"
	want := "ofice"
	if got := NormalizeLigatures(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeLigaturesLeavesPlainTextUnchanged(t *testing.T) {
	in := "plain text with no ligatures"
	if got := NormalizeLigatures(in); got != in {
		t.Errorf("got %q, want unchanged %q", got, in)
	}
}

func TestNormalizeLigaturesMultipleLigatures(t *testing.T) {
	in := "ﬀﬃcer" // ff-ligature + ffi-ligature + "cer"
	want := "fffficer"
	if got := NormalizeLigatures(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
