package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteParseRoundTrip(t *testing.T) {
	in := []ProductRow{
		{
			Name:          "Oud Royal",
			SecondaryName: "عود ملكي",
			Description:   "Dark resinous oud",
			PriceCents:    5000,
			DiscountCents: 4500,
			Category:      "Oriental",
			Brand:         "Maison Parfum",
			Audience:      "unisex",
			InStock:       true,
			Active:        true,
		},
		{
			Name:       "Rose Mist",
			PriceCents: 3000,
			Category:   "Floral",
			Audience:   "women",
			InStock:    false,
			Active:     true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProducts(&buf, in))
	require.NotZero(t, buf.Len())

	out, err := ParseProducts(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Oud Royal", out[0].Name)
	assert.Equal(t, "عود ملكي", out[0].SecondaryName)
	assert.Equal(t, int64(5000), out[0].PriceCents)
	assert.Equal(t, int64(4500), out[0].DiscountCents)
	assert.Equal(t, "unisex", out[0].Audience)
	assert.True(t, out[0].InStock)

	assert.Equal(t, int64(3000), out[1].PriceCents)
	assert.False(t, out[1].InStock)
	assert.True(t, out[1].Active)
}

func TestParseSkipsBlankRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProducts(&buf, []ProductRow{
		{Name: "Amber Noir", PriceCents: 2000, Active: true},
		{Name: ""},
		{Name: "Citrus Sky", PriceCents: 1500},
	}))

	out, err := ParseProducts(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Amber Noir", out[0].Name)
	assert.Equal(t, "Citrus Sky", out[1].Name)
}

func TestDecimalToCents(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int64
	}{
		{"50.00", 5000},
		{"$12.05", 1205},
		{"0", 0},
		{"", 0},
		{"9.99", 999},
	} {
		got, err := decimalToCents(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := decimalToCents("abc")
	assert.Error(t, err)
}
