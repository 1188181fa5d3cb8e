// Package report renders sea-temperature reports. It is pure: no network or
// storage access.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mkulikov/SST-bot/internal/i18n"
	"github.com/mkulikov/SST-bot/internal/mgm"
)

// Build renders the daily report: one line per subscribed station in provider
// order, or a localized "no data" sentinel when none of the subscriptions
// matched. Stations of the home region the user is not subscribed to are
// appended as a suggestion line regardless of the body.
func Build(fetched []mgm.Station, subscribed []int, region, lang string) string {
	subs := make(map[int]bool, len(subscribed))
	for _, id := range subscribed {
		subs[id] = true
	}

	var lines, others []string
	for _, st := range fetched {
		switch {
		case subs[st.ID]:
			lines = append(lines, fmt.Sprintf("%d %s/%s %s°C",
				st.ID, st.District, st.Region, formatTemp(st.SeaTemp)))
		case st.Region == region:
			others = append(others, strconv.Itoa(st.ID))
		}
	}

	body := i18n.T(lang, "no_data")
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}
	if len(others) > 0 {
		body += "\n" + i18n.T(lang, "another_stations", region, strings.Join(others, " "))
	}
	return body
}

// Directory lists the stations available in the home region, or every station
// when the region has none.
func Directory(fetched []mgm.Station, region, lang string) string {
	var regional, all []string
	for _, st := range fetched {
		line := fmt.Sprintf("%d — %s/%s", st.ID, st.District, st.Region)
		all = append(all, line)
		if st.Region == region {
			regional = append(regional, line)
		}
	}
	if len(regional) > 0 {
		return i18n.T(lang, "stations_available", region, strings.Join(regional, "\n"))
	}
	return i18n.T(lang, "stations_all", strings.Join(all, "\n"))
}

func formatTemp(t *float64) string {
	if t == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*t, 'f', -1, 64)
}
