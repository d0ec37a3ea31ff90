package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	tests := map[string]string{
		"Tiểu thuyết":           "tieu-thuyet",
		"Áo khoác Nữ / Mùa đông": "ao-khoac-nu-mua-dong",
		"  Crème   Brûlée  ":    "creme-brulee",
		"Men's T-Shirts (XL)":   "men-s-t-shirts-xl",
		"Đồ gia dụng":           "do-gia-dung",
		"---":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, GenerateSlug(in), in)
	}
}

func TestParsePage(t *testing.T) {
	limit, offset := ParsePage("", "")
	assert.Equal(t, DefaultLimit, limit)
	assert.Equal(t, 0, offset)

	limit, offset = ParsePage("500", "-3")
	assert.Equal(t, MaxLimit, limit)
	assert.Equal(t, 0, offset)

	limit, offset = ParsePage("abc", "40")
	assert.Equal(t, DefaultLimit, limit)
	assert.Equal(t, 40, offset)
}

func TestParseOptionalUUID(t *testing.T) {
	id, err := ParseOptionalUUID("")
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = ParseOptionalUUID("nope")
	assert.Error(t, err)

	id, err = ParseOptionalUUID("7f0b3c6e-64a4-4bb4-9d6e-0f9a0b1c2d3e")
	require.NoError(t, err)
	assert.Equal(t, "7f0b3c6e-64a4-4bb4-9d6e-0f9a0b1c2d3e", id.String())
}
