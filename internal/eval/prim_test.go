package eval_test

import (
	"testing"

	"github.com/valus-lang/valus/internal/eval"
)

func TestNormPrimitives(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#U8.add 2u8 3u8", "5u8"},
		{"#Nat.mul (#Nat.add 2 3) 4", "20"},
		{"(λ f => f 2u8 3u8) #U8.add", "5u8"},
		{"#U8.add ((λ x => x) 2u8) 3u8", "5u8"},
		{"λ x => #U8.add 1u8 2u8", "λ x => 3u8"},
		{"#Nat.lth 2 3", "#true"},
		{"#Bits.cons #true #b01", "#b011"},
		{"#Bytes.index 1 #x0aff", "255u8"},
		{"(λ n => #Nat.add n n) (#Nat.mul 3 3)", "18"},
		{"#U8.max", "255u8"},
		{"#U8.add #U8.max 1u8", "0u8"},
		{"(λ x => #U8.sub x #U8.min) #U8.max", "255u8"},
		{"λ x => x #U8.min", "λ x => x 0u8"},

		// stuck applications stay as they are
		{"λ x => #U8.add x 1u8", "λ x => #U8.add x 1u8"},
		{"#Nat.sub 1 2", "#Nat.sub 1 2"},
		{"#Bool.not #true", "#Bool.not #true"},
		{"#U8.add 1u8", "#U8.add 1u8"},
		{"#U8.add 1u8 2", "#U8.add 1u8 2"},
		{"#U8.add 1u8 ((λ x => x) 2)", "#U8.add 1u8 2"},
		{"#U8.count_zeros 3u8", "#U8.count_zeros 3u8"},
		{"#Bits.insert 0 #true #b01", "#Bits.insert 0 #true #b01"},
	}

	for _, tt := range tests {
		f := loadTerm(t, tt.input, eval.Options{})
		if got := f.norm(t); got != tt.want {
			t.Errorf("norm(%q) = %q, want %q", tt.input, got, tt.want)
		}
		f.checkHeap(t)
	}
}

func TestConstantCountsAsStep(t *testing.T) {
	f := loadTerm(t, "#U8.max 1u8", eval.Options{})
	if got := f.norm(t); got != "255u8 1u8" {
		t.Fatalf("got %q", got)
	}
	if st := f.ev.Stats(); st.Steps != 1 || st.PrimOps != 1 {
		t.Fatalf("Steps = %d, PrimOps = %d, want 1 and 1", st.Steps, st.PrimOps)
	}
}

func TestLiteralInHeadPosition(t *testing.T) {
	f := loadTerm(t, "#U8.add 1u8 2u8 #true", eval.Options{})
	if got := f.norm(t); got != "3u8 #true" {
		t.Fatalf("got %q", got)
	}
	if st := f.ev.Stats(); st.PrimOps != 1 {
		t.Fatalf("PrimOps = %d, want 1", st.PrimOps)
	}
}
