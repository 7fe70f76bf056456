package discounts

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pallab-BJIT/mid-term-project/pkg/config"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
	"github.com/pallab-BJIT/mid-term-project/pkg/validation"
)

const day = 24 * time.Hour

// Rules bounds campaign terms.
type Rules struct {
	AllowedCountries []enums.Country
	MaxSpanDays      int
	MaxPastDays      int
	MinPercentage    int
	MaxPercentage    int
}

// RulesFromConfig builds Rules, falling back to the built-in allow-list.
func RulesFromConfig(cfg config.DiscountConfig) Rules {
	allowed := enums.CountriesFromStrings(cfg.AllowedCountries)
	if len(allowed) == 0 {
		allowed = enums.DefaultDiscountCountries
	}
	return Rules{
		AllowedCountries: allowed,
		MaxSpanDays:      cfg.MaxSpanDays,
		MaxPastDays:      cfg.MaxPastDays,
		MinPercentage:    cfg.MinPercentage,
		MaxPercentage:    cfg.MaxPercentage,
	}
}

// DefaultRules mirrors the configuration defaults.
func DefaultRules() Rules {
	return Rules{
		AllowedCountries: enums.DefaultDiscountCountries,
		MaxSpanDays:      5,
		MaxPastDays:      1,
		MinPercentage:    5,
		MaxPercentage:    40,
	}
}

// report holds the outcome of a validation pass. Malformed input is reported
// before window conflicts.
type report struct {
	invalid   validation.Problems
	conflicts validation.Problems
	countries []enums.Country
}

func (r report) err() error {
	if err := r.invalid.Err(); err != nil {
		return err
	}
	return r.conflicts.ErrWithCode(pkgerrors.CodeConflict)
}

func (r *report) checkBookIDs(ids []uuid.UUID, required bool) {
	if len(ids) == 0 {
		if required {
			r.invalid.Add("bookIds", "must contain at least one book")
		}
		return
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			r.invalid.Add("bookIds", "contains an empty id")
			return
		}
		if _, dup := seen[id]; dup {
			r.invalid.Add("bookIds", "cannot contain duplicate book ids")
			return
		}
		seen[id] = struct{}{}
	}
}

func (r *report) checkCountries(raw []string, rules Rules, required bool) {
	if len(raw) == 0 {
		if required {
			r.invalid.Add("countries", "must contain at least one country")
		}
		return
	}
	seen := make(map[enums.Country]struct{}, len(raw))
	for _, value := range raw {
		country, err := enums.ParseCountry(value, rules.AllowedCountries)
		if err != nil {
			r.invalid.Addf("countries", "%q is not an eligible country", value)
			return
		}
		if _, dup := seen[country]; dup {
			continue
		}
		seen[country] = struct{}{}
		r.countries = append(r.countries, country)
	}
}

func (r *report) checkPercentage(pct int, rules Rules) {
	if pct < rules.MinPercentage || pct > rules.MaxPercentage {
		r.invalid.Addf("percentage", "must be between %d and %d", rules.MinPercentage, rules.MaxPercentage)
	}
}

// checkWindow validates the effective start/end pair. startChanged limits the
// past-start check to a start date supplied by this request.
func (r *report) checkWindow(start, end, now time.Time, rules Rules, startChanged bool) {
	if start.IsZero() || end.IsZero() {
		r.invalid.Add("startDate", "start and end dates are required")
		return
	}
	if startChanged && start.Before(now.Add(-time.Duration(rules.MaxPastDays)*day)) {
		r.invalid.Addf("startDate", "cannot be more than %d day(s) in the past", rules.MaxPastDays)
	}
	if end.Before(start) {
		r.conflicts.Add("endDate", "cannot be before startDate")
		return
	}
	if spanDays(start, end) >= rules.MaxSpanDays {
		r.conflicts.Addf("endDate", "campaign window must be shorter than %d days", rules.MaxSpanDays)
	}
}

func spanDays(start, end time.Time) int {
	return int(math.Floor(end.Sub(start).Hours() / 24))
}

func validateCreate(in CreateInput, now time.Time, rules Rules) report {
	var r report
	r.checkBookIDs(in.BookIDs, true)
	r.checkCountries(in.Countries, rules, true)
	r.checkPercentage(in.Percentage, rules)
	r.checkWindow(in.StartDate.UTC(), in.EndDate.UTC(), now, rules, true)
	return r
}

// validateUpdate checks only the supplied fields; the window is checked on the
// merged start/end whenever either date is supplied.
func validateUpdate(in UpdateInput, currentStart, currentEnd, now time.Time, rules Rules) report {
	var r report
	if in.empty() {
		r.invalid.Add("body", "at least one field must be supplied")
		return r
	}
	r.checkBookIDs(in.BookIDs, false)
	r.checkCountries(in.Countries, rules, false)
	if in.Percentage != nil {
		r.checkPercentage(*in.Percentage, rules)
	}
	if in.StartDate != nil || in.EndDate != nil {
		start, end := currentStart, currentEnd
		if in.StartDate != nil {
			start = in.StartDate.UTC()
		}
		if in.EndDate != nil {
			end = in.EndDate.UTC()
		}
		r.checkWindow(start, end, now, rules, in.StartDate != nil)
	}
	return r
}
