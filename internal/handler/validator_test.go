package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/CropCycle_Go/internal/domain"
)

type plotRequest struct {
	Season     domain.Season         `json:"season" validate:"season"`
	Irrigation domain.IrrigationType `json:"irrigation_type" validate:"irrigation"`
	CropID     string                `json:"crop_id" validate:"required,max=10"`
	AreaAcres  float64               `json:"area_acres" validate:"gt=0"`
}

func TestValidator_SeasonAndIrrigation(t *testing.T) {
	v := GetValidator()

	tests := []struct {
		name    string
		req     plotRequest
		wantErr bool
	}{
		{"valid kharif canal", plotRequest{Season: "kharif", Irrigation: "canal", CropID: "rice", AreaAcres: 1}, false},
		{"year round drip", plotRequest{Season: "year_round", Irrigation: "drip", CropID: "banana", AreaAcres: 1}, false},
		{"empty enums allowed", plotRequest{CropID: "rice", AreaAcres: 1}, false},
		{"case insensitive", plotRequest{Season: "RABI", Irrigation: "Flood", CropID: "wheat", AreaAcres: 1}, false},
		{"unknown season", plotRequest{Season: "monsoon", CropID: "rice", AreaAcres: 1}, true},
		{"unknown irrigation", plotRequest{Irrigation: "bucket", CropID: "rice", AreaAcres: 1}, true},
		{"zero area", plotRequest{CropID: "rice"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormatValidationError(t *testing.T) {
	err := GetValidator().ValidateStruct(plotRequest{Season: "monsoon", Irrigation: "bucket", CropID: "a-very-long-crop", AreaAcres: 0})
	require.Error(t, err)

	fields := FormatValidationError(err)
	assert.Equal(t, "Must be one of kharif, rabi, zaid, year_round", fields["season"])
	assert.Equal(t, "Must be one of rainfed, drip, sprinkler, flood, canal", fields["irrigation_type"])
	assert.Equal(t, "Must be at most 10", fields["crop_id"])
	assert.Equal(t, "Must be greater than 0", fields["area_acres"])

	assert.Nil(t, FormatValidationError(nil))
	assert.Equal(t, map[string]string{"error": "Invalid request format"}, FormatValidationError(errors.New("boom")))
}
