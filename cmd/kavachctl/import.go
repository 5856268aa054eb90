package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"kavach/internal/modules/station"
	"kavach/internal/types"
)

var stationColumns = []string{"name", "district", "address", "lat", "lng", "phone", "email"}

// parseStationsCSV reads rows of name,district,address,lat,lng[,phone,email].
// A first row whose lat column is not numeric is treated as a header.
func parseStationsCSV(r io.Reader) ([]station.CreateCommand, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []station.CreateCommand
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(rec) < 5 {
			return nil, fmt.Errorf("line %d: want at least %d columns (%s), got %d",
				line, 5, strings.Join(stationColumns[:5], ","), len(rec))
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(rec[4]), 64)
		if line == 1 && latErr != nil {
			continue
		}
		if latErr != nil || lngErr != nil {
			return nil, fmt.Errorf("line %d: invalid coordinate %q,%q", line, rec[3], rec[4])
		}
		cmd := station.CreateCommand{
			Name:     strings.TrimSpace(rec[0]),
			District: strings.TrimSpace(rec[1]),
			Address:  strings.TrimSpace(rec[2]),
			Location: types.Point{Lat: lat, Lng: lng},
		}
		if len(rec) > 5 {
			cmd.Phone = strings.TrimSpace(rec[5])
		}
		if len(rec) > 6 {
			cmd.Email = strings.TrimSpace(rec[6])
		}
		out = append(out, cmd)
	}
	return out, nil
}
