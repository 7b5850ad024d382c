package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenominationParse(t *testing.T) {
	d := Denomination{Decimals: 2}
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "10", want: 1000},
		{in: "10.5", want: 1050},
		{in: "0.01", want: 1},
		{in: "0", want: 0},
		{in: "0.001", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "184467440737095516.15", want: 18446744073709551615},
		{in: "184467440737095516.16", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := d.Parse(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDenominationFormat(t *testing.T) {
	assert.Equal(t, "10.50", Denomination{Decimals: 2}.Format(1050))
	assert.Equal(t, "0.01", Denomination{Decimals: 2}.Format(1))
	assert.Equal(t, "42", Denomination{Decimals: 0}.Format(42))
	assert.Equal(t, "18446744073709551615", Denomination{}.Format(18446744073709551615))
}
