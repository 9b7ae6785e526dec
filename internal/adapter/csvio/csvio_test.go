package csvio

import (
	"strings"
	"testing"

	"github.com/couchcryptid/location-mapper/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecords(t *testing.T) {
	input := `name,address
Eiffel Tower,"Champ de Mars, 5 Avenue Anatole France, Paris"
Reims Cathedral,"Place du Parvis, Cathedrale, Reims"
`
	records, err := ReadRecords(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "Eiffel Tower", records[0].Name)
	assert.Equal(t, "Champ de Mars, 5 Avenue Anatole France, Paris", records[0].Address)
	assert.Equal(t, "Reims Cathedral", records[1].Name)
}

func TestReadRecords_ColumnOrderIsFree(t *testing.T) {
	input := `address,name
"Champ de Mars, Paris, France",Eiffel Tower
`
	records, err := ReadRecords(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "Eiffel Tower", records[0].Name)
	assert.Equal(t, "Champ de Mars, Paris, France", records[0].Address)
}

func TestReadRecords_ExtraColumnsIgnored(t *testing.T) {
	input := `id,name,category,address
1,Eiffel Tower,monument,"Champ de Mars, Paris, France"
`
	records, err := ReadRecords(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "Eiffel Tower", records[0].Name)
	assert.Equal(t, "Champ de Mars, Paris, France", records[0].Address)
}

func TestReadRecords_MissingColumnIsFatal(t *testing.T) {
	input := `name,location
Eiffel Tower,"Champ de Mars, Paris, France"
`
	_, err := ReadRecords(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address")
}

func TestReadRecords_EmptyInputIsFatal(t *testing.T) {
	_, err := ReadRecords(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing header row")
}

func TestReadRecords_HeaderOnlyYieldsNoRecords(t *testing.T) {
	records, err := ReadRecords(strings.NewReader("name,address\n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadRecords_RaggedRowIsFatal(t *testing.T) {
	input := `name,address
Eiffel Tower
`
	_, err := ReadRecords(strings.NewReader(input))
	require.Error(t, err)
}

func TestWriteSuccesses(t *testing.T) {
	successes := []domain.GeocodeResult{
		{
			Record:      domain.LocationRecord{Name: "Eiffel Tower", Address: "Champ de Mars, Paris, France"},
			Status:      domain.StatusSuccess,
			Coordinates: &domain.Coordinates{Lat: 48.8584, Lon: 2.2945},
			Provider:    "nominatim",
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteSuccesses(&sb, successes))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name,address,latitude,longitude,provider", lines[0])
	assert.Equal(t, `Eiffel Tower,"Champ de Mars, Paris, France",48.8584,2.2945,nominatim`, lines[1])
}

func TestWriteFailures(t *testing.T) {
	failures := []domain.GeocodeResult{
		{
			Record:      domain.LocationRecord{Name: "bogus", Address: "x"},
			Status:      domain.StatusInvalidFormat,
			ErrorDetail: "address has fewer than 3 segments",
		},
		{
			Record: domain.LocationRecord{Name: "ghost", Address: "Nowhere Street, Ghost Town, Atlantis"},
			Status: domain.StatusNoResult,
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteFailures(&sb, failures))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,address,status,error_detail", lines[0])
	assert.Contains(t, lines[1], "invalid_format")
	assert.Contains(t, lines[2], "no_result")
}
