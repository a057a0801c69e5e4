package repositories

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mrt-od-service/internal/domain"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Header aliases accepted for each column. The first entry of each list is
// the header used by the Taipei Metro open data export.
var csvColumns = map[string][]string{
	"date":       {"日期", "date", "travel_date"},
	"slot":       {"時段", "hour", "time_slot"},
	"entry":      {"進站", "entry", "entry_station"},
	"exit":       {"出站", "exit", "exit_station"},
	"passengers": {"人次", "passengers", "count"},
}

// ReadRecordsCSV parses one ridership export. Station names are normalized;
// the date column is optional.
func ReadRecordsCSV(r io.Reader) ([]domain.PassengerRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read records csv: header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for col, names := range csvColumns {
			for _, n := range names {
				if strings.EqualFold(h, n) {
					idx[col] = i
				}
			}
		}
	}
	for _, col := range []string{"slot", "entry", "exit", "passengers"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("read records csv: missing column %q", csvColumns[col][0])
		}
	}

	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	out := make([]domain.PassengerRecord, 0, 1024)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read records csv: line %d: %w", line, err)
		}

		slot, err := strconv.Atoi(field(rec, "slot"))
		if err != nil || slot < domain.FirstTimeSlot || slot > domain.LastTimeSlot {
			return nil, fmt.Errorf("read records csv: line %d: invalid time slot %q", line, field(rec, "slot"))
		}

		count, err := strconv.ParseInt(field(rec, "passengers"), 10, 64)
		if err != nil || count < 0 {
			return nil, fmt.Errorf("read records csv: line %d: invalid passenger count %q", line, field(rec, "passengers"))
		}

		entry := domain.NormalizeStationName(field(rec, "entry"))
		exit := domain.NormalizeStationName(field(rec, "exit"))
		if entry == "" || exit == "" {
			return nil, fmt.Errorf("read records csv: line %d: station names cannot be empty", line)
		}

		out = append(out, domain.PassengerRecord{
			TravelDate: field(rec, "date"),
			Entry:      entry,
			Exit:       exit,
			TimeSlot:   slot,
			Passengers: count,
		})
	}

	return out, nil
}

// LoadRecordsFromGlob reads every CSV file matching pattern, in name order.
func LoadRecordsFromGlob(pattern string) ([]domain.PassengerRecord, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("load records: glob %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("load records: no files match %q", pattern)
	}
	sort.Strings(files)

	var all []domain.PassengerRecord
	for _, path := range files {
		recs, err := readRecordsFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}

	return all, nil
}

func readRecordsFile(path string) ([]domain.PassengerRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load records: open %q: %w", path, err)
	}
	defer f.Close()

	recs, err := ReadRecordsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load records %q: %w", path, err)
	}
	return recs, nil
}
