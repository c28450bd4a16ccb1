package testutil

import (
	"fmt"
	"strings"
)

// RentalsHeader is the header row of a minimal rentals file
const RentalsHeader = "datetime,season,holiday,workingday,weather,temp,count"

// RentalRow is one line of a fixture rentals file
type RentalRow struct {
	Datetime   string
	Season     int
	WorkingDay int
	Weather    int
	Count      float64
}

// RentalsCSV builds a rentals file in the column layout of the public
// bike-sharing dataset, including columns the dashboard ignores.
func RentalsCSV(rows ...RentalRow) string {
	var b strings.Builder
	b.WriteString(RentalsHeader)
	b.WriteByte('\n')
	for _, r := range rows {
		fmt.Fprintf(&b, "%s,%d,0,%d,%d,9.84,%g\n", r.Datetime, r.Season, r.WorkingDay, r.Weather, r.Count)
	}
	return b.String()
}

// SampleRentals is a small two-year file covering every season, both
// working day states and all four day periods.
func SampleRentals() string {
	return RentalsCSV(
		RentalRow{"2011-01-01 00:00:00", 1, 0, 1, 16},
		RentalRow{"2011-01-01 05:00:00", 1, 0, 2, 10},
		RentalRow{"2011-01-03 08:00:00", 1, 1, 1, 90},
		RentalRow{"2011-04-04 14:00:00", 2, 1, 1, 20},
		RentalRow{"2011-07-09 19:00:00", 3, 0, 3, 40},
		RentalRow{"2012-10-10 12:00:00", 4, 1, 2, 60},
		RentalRow{"2012-01-02 23:00:00", 1, 1, 1, 30},
		RentalRow{"2012-04-07 17:00:00", 2, 0, 1, 50},
	)
}
