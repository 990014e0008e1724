package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const listSeparator = " • "

func FormatRating(average float64) string {
	if average == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", average)
}

func FormatVotes(count int) string {
	if count >= 1000 {
		return fmt.Sprintf("%.1fk", float64(count)/1000)
	}
	return strconv.Itoa(count)
}

// FormatRuntime renders minutes as "Xh Ym".
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatReleaseDate renders a catalog date as "January 2, 2006".
func FormatReleaseDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return "N/A"
	}
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

// FormatMoney renders budgets and revenues, falling back to unknown for
// non-positive amounts.
func FormatMoney(amount int64, unknown string) string {
	switch {
	case amount <= 0:
		return unknown
	case amount >= 1_000_000:
		return fmt.Sprintf("%.1f million", float64(amount)/1e6)
	default:
		return strconv.FormatInt(amount, 10)
	}
}

func FirstGenre(names []string) string {
	if len(names) == 0 {
		return "N/A"
	}
	return names[0]
}

func JoinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, listSeparator)
}

func OrDefault(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func IMDbURL(id string) string {
	if id == "" {
		return ""
	}
	return "https://www.imdb.com/title/" + id
}
