package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rigmatch/internal/request"
)

func ptr[T any](v T) *T { return &v }

func TestWriteCSVEmpty(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, nil))

	assert.Equal(t, strings.Join(Header, ",")+"\n", sb.String())
}

func TestWriteCSV(t *testing.T) {
	created := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)
	records := []request.Record{
		{
			ID:                1,
			Kind:              request.KindDemand,
			Status:            request.StatusActive,
			Location:          "Springfield",
			EquipmentType:     "excavator",
			Description:       "dig foundation",
			Budget:            ptr(500.0),
			WorkDuration:      "3 days",
			ContactPreference: request.ContactMessage,
			CreatedAt:         created,
		},
		{
			ID:                 2,
			Kind:               request.KindSupply,
			Status:             request.StatusMatched,
			Location:           "Springfield Region",
			AvailableEquipment: "Excavator JCB",
			ExperienceYears:    ptr(int64(7)),
			PricePerHour:       ptr(49.5),
			ContactPreference:  request.ContactCall,
			CreatedAt:          created,
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, records))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(Header, ","), lines[0])
	assert.Equal(t,
		"1,demand,active,Springfield,excavator,dig foundation,500,3 days,,,,message,2026-08-30T10:30:00Z",
		lines[1])
	assert.Equal(t,
		"2,supply,matched,Springfield Region,,,,,Excavator JCB,7,49.5,call,2026-08-30T10:30:00Z",
		lines[2])
}

func TestWriteCSVQuotesCommas(t *testing.T) {
	records := []request.Record{
		{
			ID:                 1,
			Kind:               request.KindSupply,
			Status:             request.StatusActive,
			Location:           "Springfield",
			AvailableEquipment: "excavator, crane, bulldozer",
			ContactPreference:  request.ContactCall,
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, records))

	assert.Contains(t, sb.String(), `"excavator, crane, bulldozer"`)
}
