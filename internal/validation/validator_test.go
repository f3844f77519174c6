package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/shelfmatch/internal/errors"
	"github.com/listenupapp/shelfmatch/internal/validation"
)

type confirmRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=3,dive,nonblank"`
}

type rowsRequest struct {
	Rows []map[string]string `json:"rows" validate:"dive,dive,keys,schemafield,endkeys"`
}

type preferenceRequest struct {
	Length string `json:"length" validate:"lengthcat"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(confirmRequest{IDs: []string{"1", "2"}}))
	assert.NoError(t, v.Validate(rowsRequest{Rows: []map[string]string{
		{"title": "Dune", "Book_Author": "Frank Herbert"},
	}}))
	assert.NoError(t, v.Validate(preferenceRequest{Length: "Medium"}))
	assert.NoError(t, v.Validate(preferenceRequest{Length: ""}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       any
		wantField string
		wantMsg   string
	}{
		{
			name:      "no ids",
			req:       confirmRequest{},
			wantField: "ids",
			wantMsg:   "is required",
		},
		{
			name:      "too many ids",
			req:       confirmRequest{IDs: []string{"1", "2", "3", "4"}},
			wantField: "ids",
			wantMsg:   "must not contain more than 3 items",
		},
		{
			name:      "blank id",
			req:       confirmRequest{IDs: []string{"1", "  "}},
			wantField: "ids[1]",
			wantMsg:   "is required",
		},
		{
			name:      "unknown column",
			req:       rowsRequest{Rows: []map[string]string{{"title": "Dune"}, {"colour": "red"}}},
			wantField: "rows[1][colour]",
			wantMsg:   "is not a known column",
		},
		{
			name:      "bad length",
			req:       preferenceRequest{Length: "huge"},
			wantField: "length",
			wantMsg:   "must be one of: short medium long epic any",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField], "details: %v", details)
		})
	}
}
