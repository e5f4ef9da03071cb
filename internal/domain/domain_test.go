package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&StatusError{Code: 404}, "HTTP 404: Not Found"},
		{&StatusError{Code: 503, Status: "Maintenance"}, "HTTP 503: Maintenance"},
		{&StatusError{Code: 599}, "HTTP 599: Failed to load data"},
		{fmt.Errorf("get: %w", &StatusError{Code: 401}), "HTTP 401: Unauthorized"},
		{&NetworkError{Err: errors.New("dial tcp: refused")}, "Network error: dial tcp: refused"},
		{errors.New("odd"), "Network error: odd"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FetchErrorMessage(tt.err))
	}
}

func TestStatusError_Transient(t *testing.T) {
	for code, want := range map[int]bool{400: false, 404: false, 408: true, 429: true, 500: true, 503: true} {
		assert.Equal(t, want, (&StatusError{Code: code}).Transient(), "code %d", code)
	}
}

func TestComparable_JSONMergesExtra(t *testing.T) {
	addr, price := "1 A St", 900000.0
	c := Comparable{
		Address: &addr,
		Price:   &price,
		Extra:   map[string]any{"price": "$900,000", "agent": "Ray"},
	}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"address":"1 A St","price":900000,"agent":"Ray"}`, string(b))

	var back Comparable
	require.NoError(t, json.Unmarshal(b, &back))
	require.NotNil(t, back.Price)
	assert.Equal(t, 900000.0, *back.Price)
	assert.Equal(t, "Ray", back.Extra["agent"])
	assert.Nil(t, back.Date)
}
