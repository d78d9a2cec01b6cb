package checkout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCustomer(t *testing.T) {
	tests := []struct {
		name      string
		custName  string
		phone     string
		wantField map[string]string
	}{
		{name: "valid", custName: "Rahul", phone: "9876543210"},
		{name: "valid with padding", custName: "  Al ", phone: " 6000000000 "},
		{
			name: "missing both", custName: "  ", phone: "",
			wantField: map[string]string{
				"name":  "Name is required",
				"phone": "Phone number is required",
			},
		},
		{
			name: "short name", custName: "R", phone: "9876543210",
			wantField: map[string]string{"name": "Name must be at least 2 characters"},
		},
		{
			name: "phone starting with 5", custName: "Rahul", phone: "5876543210",
			wantField: map[string]string{"phone": "Please enter a valid 10-digit Indian mobile number"},
		},
		{
			name: "phone too short", custName: "Rahul", phone: "987654321",
			wantField: map[string]string{"phone": "Please enter a valid 10-digit Indian mobile number"},
		},
		{
			name: "phone with country code", custName: "Rahul", phone: "+919876543210",
			wantField: map[string]string{"phone": "Please enter a valid 10-digit Indian mobile number"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCustomer(tt.custName, tt.phone)
			if tt.wantField == nil {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Fields)
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := ValidateCustomer("", "")
	assert.EqualError(t, err, "invalid customer details: name: Name is required; phone: Phone number is required")
}
