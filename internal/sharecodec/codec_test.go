package sharecodec

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"lista-zakupow/internal/models"

	"github.com/stretchr/testify/require"
)

func samplePayload() models.SharedPayload {
	return models.SharedPayload{
		Items: []models.ShoppingItem{
			{ID: "a1", RecipeID: "olivier", RecipeName: "Оливье", IngredientName: "Колбаса", Amount: "300 г"},
			{ID: "a2", RecipeID: "olivier", RecipeName: "Оливье", IngredientName: "Горошек", Amount: "1 банка", Checked: true},
		},
		CreatedAt: 1735000000000,
		UpdatedAt: 1735000123000,
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	p := samplePayload()

	token, err := Encode(p)
	require.NoError(t, err)
	require.NotContains(t, token, "+")
	require.NotContains(t, token, "/")
	require.NotContains(t, token, "=")

	decoded, err := Decode(token)
	require.NoError(t, err)
	require.Equal(t, p, decoded)
}

func TestDecode_AcceptsStandardBase64(t *testing.T) {
	p := samplePayload()
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	decoded, err := Decode(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	require.Equal(t, p, decoded)
}

func TestDecode_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"!!!not base64!!!",
		base64.RawURLEncoding.EncodeToString([]byte("{not json")),
		base64.RawURLEncoding.EncodeToString([]byte(`{"createdAt":1,"updatedAt":1}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"items":[],"createdAt":0,"updatedAt":1}`)),
	}
	for _, in := range inputs {
		_, err := Decode(in)
		require.ErrorIs(t, err, ErrMalformed, in)
	}
}

func TestShareURL_RoundTrip(t *testing.T) {
	token, err := Encode(samplePayload())
	require.NoError(t, err)

	u := ShareURL("https://example.com/", "Ab3_xY9z", token)
	require.Contains(t, u, "https://example.com/s/Ab3_xY9z?data=")

	id, data, err := ParseShareURL(u)
	require.NoError(t, err)
	require.Equal(t, "Ab3_xY9z", id)
	require.Equal(t, token, data)

	id, data, err = ParseShareURL(ShareURL("http://localhost:5173", "k1", ""))
	require.NoError(t, err)
	require.Equal(t, "k1", id)
	require.Empty(t, data)
}

func TestParseShareURL_Invalid(t *testing.T) {
	_, _, err := ParseShareURL("https://example.com/lists/abc")
	require.Error(t, err)

	_, _, err = ParseShareURL("https://example.com/s/")
	require.Error(t, err)
}
