package jsoncanonicalizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransformSortsKeysRecursively(t *testing.T) {
	input := []byte(`{
		"b": {"z": 1, "a": [ {"y": true, "x": null} ]},
		"a": "text"
	}`)

	canonical, err := Transform(input)
	require.NoError(t, err)
	require.Equal(t, `{"a":"text","b":{"a":[{"x":null,"y":true}],"z":1}}`, string(canonical))
}

func TestTransformEqualUnderKeyReordering(t *testing.T) {
	v1 := []byte(`{"nonce":"n1","timestamp":"2024-01-18T08:13:09Z","service":"example.com","did":"did:wba:example.com"}`)
	v2 := []byte(`{"did":"did:wba:example.com","service":"example.com","nonce":"n1","timestamp":"2024-01-18T08:13:09Z"}`)

	c1, err := Transform(v1)
	require.NoError(t, err)
	c2, err := Transform(v2)
	require.NoError(t, err)
	require.Equal(t, string(c1), string(c2))
}

func TestTransformNumberFormatting(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"integer", `1`, `1`},
		{"zero", `0`, `0`},
		{"negative zero", `-0`, `0`},
		{"trailing zeros dropped", `10.0`, `10`},
		{"small decimal", `0.002`, `0.002`},
		{"scientific low", `1e-7`, `1e-7`},
		{"scientific high", `1e21`, `1e+21`},
		{"large float", `333333333.33333329`, `333333333.3333333`},
		{"exponent normalized", `1E30`, `1e+30`},
		{"tiny", `0.000000000000000000000000001`, `1e-27`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Transform([]byte(tc.input))
			require.NoError(t, err)
			require.Equal(t, tc.want, string(got))
		})
	}
}

func TestTransformStringEscapes(t *testing.T) {
	got, err := Transform([]byte("{\"a\":\"line\\nbreak\\u0007tab\\there\"}"))
	require.NoError(t, err)
	require.Equal(t, "{\"a\":\"line\\nbreak\\u0007tab\\there\"}", string(got))
}

func TestTransformRejectsInvalidInput(t *testing.T) {
	for _, input := range []string{``, `{"a":}`, `{"a":1} trailing`, `NaN`} {
		_, err := Transform([]byte(input))
		require.Error(t, err, "input %q", input)
	}
}

func TestCanonicalizeStructsAndMaps(t *testing.T) {
	type payload struct {
		Nonce   string `json:"nonce"`
		Service string `json:"service"`
		DID     string `json:"did"`
	}
	fromStruct, err := Canonicalize(payload{Nonce: "n1", Service: "example.com", DID: "did:wba:example.com"})
	require.NoError(t, err)

	fromMap, err := Canonicalize(map[string]any{
		"did":     "did:wba:example.com",
		"nonce":   "n1",
		"service": "example.com",
	})
	require.NoError(t, err)
	require.Equal(t, string(fromStruct), string(fromMap))
}

func TestContentHashStableUnderReordering(t *testing.T) {
	h1, err := ContentHash(map[string]any{"id": "cart-1", "amount": "10.00"})
	require.NoError(t, err)
	h2, err := ContentHash(map[string]any{"amount": "10.00", "id": "cart-1"})
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.NotEmpty(t, h1)

	h3, err := ContentHash(map[string]any{"id": "cart-1", "amount": "10.01"})
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)
}
