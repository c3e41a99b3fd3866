package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/receipt-recognizer/internal/engine"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "crlf", in: "MERCADO\r\nTOTAL 10,00\r", want: "MERCADO\nTOTAL 10,00"},
		{name: "tabs and runs of spaces", in: "ITEM\t\tA    2,50", want: "ITEM A 2,50"},
		{name: "blank line collapse", in: "A\n\n\n\n\nB", want: "A\n\nB"},
		{name: "box noise line removed", in: "TOTAL 9,90\n----------\nVOLTE SEMPRE", want: "TOTAL 9,90\n\nVOLTE SEMPRE"},
		{name: "trailing spaces trimmed", in: "CAFE 4,00   \nPAO 2,00  ", want: "CAFE 4,00\nPAO 2,00"},
		{name: "surrounding whitespace", in: "\n\n  TOTAL 1,00  \n\n", want: "TOTAL 1,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "MERCADO BOM PRECO\r\n\r\n\r\nTOTAL\t\tR$  45,90\n_____\n"
	once := engine.Normalize(in)
	assert.Equal(t, once, engine.Normalize(once))
}
