package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeColor(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantCSS string
		wantErr error
	}{
		{
			name:    "integer channels",
			data:    `{"red":10,"green":20,"blue":30}`,
			wantCSS: "rgb(10, 20, 30)",
		},
		{
			name:    "out of range values are kept verbatim",
			data:    `{"red":999,"green":-1,"blue":256}`,
			wantCSS: "rgb(999, -1, 256)",
		},
		{
			name:    "fractional values are kept verbatim",
			data:    `{"red":0.5,"green":1e2,"blue":255}`,
			wantCSS: "rgb(0.5, 1e2, 255)",
		},
		{
			name:    "extra sensor fields are ignored",
			data:    `{"red":1,"green":2,"blue":3,"clear":400,"id":"x"}`,
			wantCSS: "rgb(1, 2, 3)",
		},
		{
			name:    "surrounding whitespace",
			data:    " \n{\"red\":1,\"green\":2,\"blue\":3}\n",
			wantCSS: "rgb(1, 2, 3)",
		},
		{
			name:    "not json",
			data:    `hello`,
			wantErr: ErrMalformedColor,
		},
		{
			name:    "truncated object",
			data:    `{"red":1,`,
			wantErr: ErrMalformedColor,
		},
		{
			name:    "array",
			data:    `[1,2,3]`,
			wantErr: ErrMalformedColor,
		},
		{
			name:    "null",
			data:    `null`,
			wantErr: ErrMalformedColor,
		},
		{
			name:    "non-numeric channel",
			data:    `{"red":"bright","green":2,"blue":3}`,
			wantErr: ErrMalformedColor,
		},
		{
			name:    "quoted number channel",
			data:    `{"red":"10","green":"20","blue":"30"}`,
			wantErr: ErrMalformedColor,
		},
		{
			name:    "boolean channel",
			data:    `{"red":true,"green":2,"blue":3}`,
			wantErr: ErrMalformedColor,
		},
		{
			name:    "object channel",
			data:    `{"red":{"v":1},"green":2,"blue":3}`,
			wantErr: ErrMalformedColor,
		},
		{
			name:    "trailing data",
			data:    `{"red":1,"green":2,"blue":3} extra`,
			wantErr: ErrMalformedColor,
		},
		{
			name:    "missing channels",
			data:    `{"red":1}`,
			wantErr: ErrMissingChannel,
		},
		{
			name:    "null channel",
			data:    `{"red":1,"green":null,"blue":3}`,
			wantErr: ErrMissingChannel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := decodeColor([]byte(tt.data))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCSS, msg.CSS())
		})
	}
}

func TestDecodeColorNamesMissingChannels(t *testing.T) {
	_, err := decodeColor([]byte(`{"green":2}`))

	require.ErrorIs(t, err, ErrMissingChannel)
	assert.Contains(t, err.Error(), "red, blue")
}

func TestColorMessageRGB(t *testing.T) {
	tests := []struct {
		name   string
		msg    ColorMessage
		wantOK bool
		want   [3]uint8
	}{
		{"in range", ColorMessage{Red: "10", Green: "20", Blue: "30"}, true, [3]uint8{10, 20, 30}},
		{"bounds", ColorMessage{Red: "0", Green: "255", Blue: "0"}, true, [3]uint8{0, 255, 0}},
		{"too large", ColorMessage{Red: "999", Green: "0", Blue: "0"}, false, [3]uint8{}},
		{"negative", ColorMessage{Red: "0", Green: "-1", Blue: "0"}, false, [3]uint8{}},
		{"fractional", ColorMessage{Red: "0", Green: "0", Blue: "0.5"}, false, [3]uint8{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, ok := tt.msg.RGB()

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, [3]uint8{r, g, b})
		})
	}
}
