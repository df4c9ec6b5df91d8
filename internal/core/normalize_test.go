package core_test

import (
	"reflect"
	"testing"

	"receipt-engine/internal/core"
)

func TestNormalizeLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "unix breaks", in: "a\nb\nc", want: []string{"a", "b", "c"}},
		{name: "windows breaks", in: "a\r\nb\r\nc", want: []string{"a", "b", "c"}},
		{name: "old mac breaks", in: "a\rb", want: []string{"a", "b"}},
		{name: "blank lines dropped", in: "a\n\n\n  \nb", want: []string{"a", "b"}},
		{name: "whitespace trimmed", in: "  a  \n\tb\t", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.NormalizeLines(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
