package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest(t *testing.T) {
	t.Run("address wins over location", func(t *testing.T) {
		req, err := buildRequest(options{street: "5800 Legacy Dr", city: "Plano", state: "TX", zip: "75024", lat: 1, lng: 2, html: true})
		require.NoError(t, err)
		require.NotNil(t, req.Address)
		assert.Nil(t, req.Location)
		assert.Equal(t, "Plano", req.Address.City)
		assert.True(t, req.IncludeHTML)
	})

	t.Run("location", func(t *testing.T) {
		req, err := buildRequest(options{lat: 32.7767, lng: -96.797, months: 12, radius: 5, territory: "north-dallas"})
		require.NoError(t, err)
		require.NotNil(t, req.Location)
		assert.InDelta(t, 32.7767, req.Location.Lat, 1e-9)
		assert.Equal(t, 12, req.LookbackMonths)
		assert.Equal(t, 5.0, req.RadiusMiles)
		assert.Equal(t, "north-dallas", req.TerritoryID)
	})

	t.Run("neither", func(t *testing.T) {
		_, err := buildRequest(options{months: 6})
		assert.Error(t, err)
	})
}
