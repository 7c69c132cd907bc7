package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]interface{}
		want Version
	}{
		{
			name: "v3 data envelope",
			doc: map[string]interface{}{
				"data": []interface{}{map[string]interface{}{"orderId": "x"}},
			},
			want: VersionV3,
		},
		{
			name: "v3 empty data still v3",
			doc:  map[string]interface{}{"data": []interface{}{}},
			want: VersionV3,
		},
		{
			name: "v2 with state",
			doc:  map[string]interface{}{"orderId": "x", "state": "PAID"},
			want: VersionV2,
		},
		{
			name: "v1 legacy shape",
			doc:  map[string]interface{}{"orderId": "x", "status": "PAID", "totalPrice": 1.0},
			want: VersionV1,
		},
		{
			name: "bare orderId treated as v2",
			doc:  map[string]interface{}{"orderId": "x"},
			want: VersionV2,
		},
		{
			name: "status without totalPrice is not legacy",
			doc:  map[string]interface{}{"orderId": "x", "status": "PAID"},
			want: VersionV2,
		},
		{
			name: "state wins over legacy fields",
			doc:  map[string]interface{}{"orderId": "x", "state": "PAID", "status": "PAID", "totalPrice": 1.0},
			want: VersionV2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectVersion(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectVersionUnknown(t *testing.T) {
	for _, doc := range []map[string]interface{}{
		nil,
		{},
		{"foo": "bar"},
		{"data": "not-a-list"},
	} {
		_, err := DetectVersion(doc)
		assert.ErrorIs(t, err, ErrUnknownVersion)
	}
}
