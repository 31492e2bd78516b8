package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hinglish-snaps/api/dto"
)

func TestStructRegisterMessages(t *testing.T) {
	v := New()

	testCases := []struct {
		name string
		in   dto.RegisterRequestDTO
		want []string
	}{
		{
			name: "valid",
			in:   dto.RegisterRequestDTO{Username: "asha", Email: "asha@example.com", Phone: "9876543210", Password: "secret12"},
		},
		{
			name: "all missing",
			in:   dto.RegisterRequestDTO{},
			want: []string{"Name is required", "Email is required", "Phone is required", "Password is required"},
		},
		{
			name: "bounds",
			in:   dto.RegisterRequestDTO{Username: "as", Email: "not-an-email", Phone: "12345", Password: "123456789012345678901"},
			want: []string{
				"Name must be at least 3 characters",
				"Invalid email address",
				"Phone must be exactly 10 characters",
				"Password can't be greater than 20 characters",
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.in)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.want, ve.Messages)
		})
	}
}

func TestStructGenericMessages(t *testing.T) {
	err := New().Struct(dto.ConvertRequestDTO{})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"url is required", "title is required"}, ve.Messages)
}
