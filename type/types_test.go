package septypes

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRGBHex(t *testing.T) {
	tests := []struct {
		in   RGB
		want string
	}{
		{RGB{255, 0, 0}, "#ff0000"},
		{RGB{0, 0, 0}, "#000000"},
		{RGB{1, 171, 239}, "#01abef"},
	}
	for _, tt := range tests {
		if got := tt.in.Hex(); got != tt.want {
			t.Errorf("%v.Hex() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRGBMarshalsAsArray(t *testing.T) {
	b, err := json.Marshal(RGB{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[1,2,3]" {
		t.Fatalf("got %s", b)
	}
}

func TestPaletteCloneIsDeep(t *testing.T) {
	p := Palette{{RGB: RGB{1, 2, 3}, Percentage: 60, Representatives: []RGB{{1, 2, 3}}}, {Percentage: 40}}
	c := p.Clone()
	c[0].Representatives[0] = RGB{9, 9, 9}
	c[0].Percentage = 1
	if p[0].Representatives[0] != (RGB{1, 2, 3}) || p[0].Percentage != 60 {
		t.Fatal("clone shares state with original")
	}
	if p.Sum() != 100 {
		t.Fatalf("Sum() = %v", p.Sum())
	}
}

func TestInvalidConfigIs(t *testing.T) {
	err := InvalidConfig("maxClusters %d", 0)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("%v is not ErrInvalidConfiguration", err)
	}
}
