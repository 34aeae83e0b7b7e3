package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dateRegex     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeRegex = regexp.MustCompile(`^(\d+)\s+(hour|hours|day|days|week|weeks)$`)
)

// ParseDueDate parses various due date formats
// Supported formats:
// - dd/mm/yyyy (e.g., "15/12/2024")
// - X days (e.g., "3 days", "1 day")
// - X hours (e.g., "24 hours", "1 hour")
// - X weeks (e.g., "2 weeks", "1 week")
func ParseDueDate(input string) (*time.Time, error) {
	return ParseDueDateAt(input, time.Now())
}

// ParseDueDateAt is ParseDueDate with relative formats computed from now
func ParseDueDateAt(input string, now time.Time) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	// Try dd/mm/yyyy format first
	if dueDate, err := parseDateFormat(input, now.Location()); err == nil {
		return dueDate, nil
	}

	// Try relative time formats
	if dueDate, err := parseRelativeTime(input, now); err == nil {
		return dueDate, nil
	}

	return nil, fmt.Errorf("invalid date format. Use: dd/mm/yyyy, X days, X hours, or X weeks")
}

// parseDateFormat parses dd/mm/yyyy format
func parseDateFormat(input string, loc *time.Location) (*time.Time, error) {
	matches := dateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	// Validate date ranges
	if day < 1 || day > 31 {
		return nil, fmt.Errorf("day must be between 1 and 31")
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return nil, fmt.Errorf("year must be between 2000 and 2100")
	}

	dueDate := time.Date(year, time.Month(month), day, 23, 59, 59, 0, loc)

	// Check if date is valid (handles leap years, etc.)
	if dueDate.Day() != day || dueDate.Month() != time.Month(month) || dueDate.Year() != year {
		return nil, fmt.Errorf("invalid date")
	}

	return &dueDate, nil
}

// parseRelativeTime parses relative time formats like "3 days", "24 hours", etc.
func parseRelativeTime(input string, now time.Time) (*time.Time, error) {
	matches := relativeRegex.FindStringSubmatch(strings.ToLower(input))
	if len(matches) != 3 {
		return nil, fmt.Errorf("invalid relative time format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid number")
	}

	// End of day (23:59:59) for day and week offsets
	endOfDay := func(days int) *time.Time {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		due := today.AddDate(0, 0, days).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		return &due
	}

	switch matches[2] {
	case "hour", "hours":
		if amount < 1 || amount > 8760 { // Max 1 year in hours
			return nil, fmt.Errorf("hours must be between 1 and 8760")
		}
		dueDate := now.Add(time.Duration(amount) * time.Hour)
		return &dueDate, nil

	case "day", "days":
		if amount < 1 || amount > 365 {
			return nil, fmt.Errorf("days must be between 1 and 365")
		}
		return endOfDay(amount), nil

	case "week", "weeks":
		if amount < 1 || amount > 52 {
			return nil, fmt.Errorf("weeks must be between 1 and 52")
		}
		return endOfDay(amount * 7), nil

	default:
		return nil, fmt.Errorf("unsupported time unit")
	}
}

// ParseISODate parses an API date: RFC 3339 (with Z or an offset), a zone-less
// date-time taken as UTC, or a bare YYYY-MM-DD meaning midnight UTC.
func ParseISODate(input string) (time.Time, error) {
	input = strings.TrimSpace(input)

	if t, err := time.Parse(time.RFC3339Nano, input); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, input, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD or RFC 3339", input)
}

// FormatDueDate formats a due date for display relative to now
func FormatDueDate(dueDate *time.Time, now time.Time) string {
	if dueDate == nil {
		return ""
	}

	// Calculate calendar days difference
	local := dueDate.In(now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, now.Location())
	daysDiff := int(dueDay.Sub(today).Hours() / 24)

	// Always show the actual date to avoid confusion
	dateStr := local.Format("02/01/2006")

	switch {
	case daysDiff < 0:
		return fmt.Sprintf("⚠️ OVERDUE (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("🔥 Due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("📅 Due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("📅 Due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("📅 Due %s", dateStr)
	}
}
