package inertiavalidationerrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   any
		want    MapError
		name    string
		wantErr bool
	}{
		{
			name:  "MapError passes through",
			input: MapError{"name": "required"},
			want:  MapError{"name": "required"},
		},
		{
			name:  "map of strings",
			input: map[string]string{"name": "required"},
			want:  MapError{"name": "required"},
		},
		{
			name:  "map of any with string values",
			input: map[string]any{"name": "required", "email": "invalid"},
			want:  MapError{"name": "required", "email": "invalid"},
		},
		{
			name:    "map of any with a non-string value",
			input:   map[string]any{"name": 42},
			wantErr: true,
		},
		{
			name:    "non-map value",
			input:   []string{"required"},
			wantErr: true,
		},
		{
			name:    "nil value",
			input:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := FromAny(tt.input)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapError_ValidationErrors(t *testing.T) {
	t.Parallel()

	m := MapError{"name": "required", "email": "invalid"}

	errs := m.ValidationErrors()
	require.Len(t, errs, 2)
	assert.Equal(t, 2, m.Len())

	byField := make(map[string]string, len(errs))
	for _, e := range errs {
		byField[e.Field()] = e.Error()
	}

	assert.Equal(t, map[string]string{"name": "required", "email": "invalid"}, byField)
}
