package repositories

import (
	"mrt-od-service/internal/domain"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecordsCSVNormalizesStations(t *testing.T) {
	data := "\ufeff日期,時段,進站,出站,人次\n" +
		"2023-07-01,9,石牌,士林,500\n" +
		"2023-07-01,10,BL板橋,G大坪林站,12\n"

	recs, err := ReadRecordsCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []domain.PassengerRecord{
		{TravelDate: "2023-07-01", Entry: "石牌", Exit: "士林", TimeSlot: 9, Passengers: 500},
		{TravelDate: "2023-07-01", Entry: "板橋", Exit: "大坪林", TimeSlot: 10, Passengers: 12},
	}, recs)
}

func TestReadRecordsCSVEnglishHeadersWithoutDate(t *testing.T) {
	data := "hour,entry,exit,passengers\n8,Shipai,Shilin,3\n"

	recs, err := ReadRecordsCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "", recs[0].TravelDate)
	assert.Equal(t, 8, recs[0].TimeSlot)
}

func TestReadRecordsCSVRejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"missing column": "時段,進站,人次\n9,石牌,1\n",
		"slot range":     "時段,進站,出站,人次\n24,石牌,士林,1\n",
		"negative count": "時段,進站,出站,人次\n9,石牌,士林,-1\n",
		"empty station":  "時段,進站,出站,人次\n9,,士林,1\n",
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadRecordsCSV(strings.NewReader(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadRecordsFromGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "202307.csv"), []byte("時段,進站,出站,人次\n9,石牌,士林,5\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "202308.csv"), []byte("時段,進站,出站,人次\n10,士林,石牌,7\n"), 0o644))

	recs, err := LoadRecordsFromGlob(filepath.Join(dir, "*.csv"))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "石牌", recs[0].Entry)
	assert.Equal(t, "士林", recs[1].Entry)

	_, err = LoadRecordsFromGlob(filepath.Join(dir, "*.parquet"))
	assert.Error(t, err)
}
