package poi

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The heuristics in this file parse free-form catalog text. They are
// deliberately small and pure so a stricter parser can replace any of
// them without touching the filter pipeline.

// hoursRangeRe matches a single "8:00 - 22:00" / "08h00-22h00" style
// range anywhere in a free-form opening-hours string
var hoursRangeRe = regexp.MustCompile(`(\d{1,2})[:h](\d{2})\s*[-–]\s*(\d{1,2})[:h](\d{2})`)

// isOpenAt decides whether a site is open at the given time from its
// free-form hours text. Unparseable or unspecified hours count as open:
// hiding a site that is actually open is worse than showing one that
// is closed.
func isOpenAt(hours string, now time.Time) bool {
	text := strings.TrimSpace(strings.ToLower(hours))
	if text == "" {
		return true
	}
	if strings.Contains(text, "24/7") || strings.Contains(text, "24h") || strings.Contains(text, "always") {
		return true
	}
	if strings.Contains(text, "closed") && !hoursRangeRe.MatchString(text) {
		return false
	}

	m := hoursRangeRe.FindStringSubmatch(text)
	if m == nil {
		return true
	}

	openH, _ := strconv.Atoi(m[1])
	openM, _ := strconv.Atoi(m[2])
	closeH, _ := strconv.Atoi(m[3])
	closeM, _ := strconv.Atoi(m[4])
	if openH > 23 || closeH > 24 || openM > 59 || closeM > 59 {
		return true
	}

	minutes := now.Hour()*60 + now.Minute()
	openMin := openH*60 + openM
	closeMin := closeH*60 + closeM

	if openMin == closeMin {
		return true
	}
	if closeMin > openMin {
		return minutes >= openMin && minutes < closeMin
	}
	// Overnight range, e.g. 18:00-02:00
	return minutes >= openMin || minutes < closeMin
}

// freeNameHints mark sites that are free by naming convention
var freeNameHints = []string{"free", "wild", "aire", "gratuit"}

// looksFree guesses that a site is free of charge from its name or a
// free-by-convention category. Biased toward false negatives: a paid
// aire may slip through, an unmarked free spot will not be invented.
func looksFree(site Campsite) bool {
	if site.Type == TypeAire || site.Type == TypeWild {
		return true
	}
	name := strings.ToLower(site.Name)
	for _, hint := range freeNameHints {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}

// acceptsReservations guesses that a site is bookable: it has a contact
// channel, or its category traditionally takes bookings
func acceptsReservations(site Campsite) bool {
	if site.Type == TypeCampsite {
		return true
	}
	return site.Phone != "" || site.Website != ""
}
