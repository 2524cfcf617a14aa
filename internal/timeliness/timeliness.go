// Package timeliness classifies publishers by how often they update their
// data (frequency) and how recent their transactions are (time lag).
package timeliness

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/cases"

	apperrors "dashcsv/internal/errors"
	"dashcsv/internal/files"
	"dashcsv/internal/stats"
	"dashcsv/pkg/contracts/domain"
)

const (
	monthLayout = "2006-01"
	dateLayout  = "2006-01-02"

	// FrequencyLabel and TimelagLabel head the assessment column
	FrequencyLabel = "Frequency"
	TimelagLabel   = "Time lag"
)

// Frequency assessments, best first
var FrequencyAssessments = []string{
	"Monthly",
	"Quarterly",
	"Six-Monthly",
	"Annual",
	"Less than Annual",
}

// Time lag assessments, best first
var TimelagAssessments = []string{
	"One month",
	"A quarter",
	"Six months",
	"One year",
	"More than one year",
}

// StatsReader is the part of the statistics store the assessments read
type StatsReader interface {
	DatedPublishers() ([]string, error)
	DatedValue(id, key string) (files.Value, bool, error)
	AggregatedPublishers() ([]string, error)
	AggregatedValue(id, key string) (files.Value, bool, error)
}

// RegistryReader is the part of the registry the assessments read
type RegistryReader interface {
	Has(id string) bool
	Title(id string) (string, error)
}

// Calculator produces the frequency and time lag tables
type Calculator struct {
	stats    StatsReader
	registry RegistryReader
	now      func() time.Time
}

// NewCalculator creates a calculator. A nil clock means time.Now.
func NewCalculator(st StatsReader, reg RegistryReader, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{stats: st, registry: reg, now: now}
}

// previousMonths returns the twelve months before the current one, most
// recent first
func (c *Calculator) previousMonths() []string {
	now := c.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	months := make([]string, 12)
	for i := range months {
		months[i] = first.AddDate(0, -(i + 1), 0).Format(monthLayout)
	}
	return months
}

// PreviousMonthsReversed returns the twelve months before the current one,
// oldest first, formatted YYYY-MM
func (c *Calculator) PreviousMonthsReversed() []string {
	months := c.previousMonths()
	for i, j := 0, len(months)-1; i < j; i, j = i+1, j-1 {
		months[i], months[j] = months[j], months[i]
	}
	return months
}

// countPresent counts the months that have an entry in perMonth
func countPresent(perMonth map[string]int64, months []string) int {
	n := 0
	for _, m := range months {
		if _, ok := perMonth[m]; ok {
			n++
		}
	}
	return n
}

// windowsWithUpdates splits months into consecutive windows of size and
// counts the windows with at least one update
func windowsWithUpdates(perMonth map[string]int64, months []string, size int) int {
	n := 0
	for i := 0; i+size <= len(months); i += size {
		if countPresent(perMonth, months[i:i+size]) > 0 {
			n++
		}
	}
	return n
}

func frequencyAssessment(perMonth map[string]int64, months []string) string {
	switch {
	case countPresent(perMonth, months) >= 7 && countPresent(perMonth, months[:3]) >= 2:
		return "Monthly"
	case windowsWithUpdates(perMonth, months, 3) >= 3:
		return "Quarterly"
	case windowsWithUpdates(perMonth, months, 6) >= 2:
		return "Six-Monthly"
	case countPresent(perMonth, months) > 0:
		return "Annual"
	default:
		return "Less than Annual"
	}
}

func timelagAssessment(perMonth map[string]int64, months []string) string {
	switch {
	case countPresent(perMonth, months[:3]) >= 2:
		return "One month"
	case countPresent(perMonth, months[:3]) >= 1:
		return "A quarter"
	case countPresent(perMonth, months[:6]) >= 1:
		return "Six months"
	case countPresent(perMonth, months) >= 1:
		return "One year"
	default:
		return "More than one year"
	}
}

// updatesPerMonth walks the (git date, most recent transaction date) history
// in git date order and counts a month every time the transaction date
// moves forward
func updatesPerMonth(id string, history *files.Object) (map[string]int64, error) {
	gitDates := history.Keys()
	sort.Strings(gitDates)

	perMonth := make(map[string]int64)
	var previous time.Time
	for _, gitDate := range gitDates {
		v, _ := history.Get(gitDate)
		s, ok := v.AsString()
		if !ok {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("%s: transaction date at %s is %s", id, gitDate, v.Kind()), nil)
		}
		txDate, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("%s: transaction date at %s", id, gitDate), err)
		}
		if txDate.After(previous) {
			previous = txDate
			if len(gitDate) < len(monthLayout) {
				return nil, apperrors.NewParsingError(fmt.Sprintf("%s: malformed git date %q", id, gitDate), nil)
			}
			perMonth[gitDate[:len(monthLayout)]]++
		}
	}
	return perMonth, nil
}

// PublisherFrequencySorted assesses every registry publisher with a dated
// transaction history. Results are sorted by assessment, then title.
func (c *Calculator) PublisherFrequencySorted() ([]domain.TimelinessRecord, error) {
	ids, err := c.stats.DatedPublishers()
	if err != nil {
		return nil, err
	}
	months := c.previousMonths()

	var records []domain.TimelinessRecord
	for _, id := range ids {
		if !c.registry.Has(id) {
			continue
		}
		v, ok, err := c.stats.DatedValue(id, stats.KeyMostRecentTransactionDate)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		history, isObj := v.AsObject()
		if !isObj {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("%s/%s is %s, expected object", id, stats.KeyMostRecentTransactionDate, v.Kind()), nil)
		}

		perMonth, err := updatesPerMonth(id, history)
		if err != nil {
			return nil, err
		}
		record, err := c.record(id, perMonth, frequencyAssessment(perMonth, months))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	sortRecords(records, FrequencyAssessments)
	return records, nil
}

// PublisherTimelagSorted assesses every registry publisher with aggregated
// statistics by the months its transactions fall in. Results are sorted by
// assessment, then title.
func (c *Calculator) PublisherTimelagSorted() ([]domain.TimelinessRecord, error) {
	ids, err := c.stats.AggregatedPublishers()
	if err != nil {
		return nil, err
	}
	months := c.previousMonths()

	var records []domain.TimelinessRecord
	for _, id := range ids {
		if !c.registry.Has(id) {
			continue
		}
		perMonth, err := c.transactionMonths(id)
		if err != nil {
			return nil, err
		}
		record, err := c.record(id, perMonth, timelagAssessment(perMonth, months))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	sortRecords(records, TimelagAssessments)
	return records, nil
}

func (c *Calculator) transactionMonths(id string) (map[string]int64, error) {
	perMonth := make(map[string]int64)

	v, ok, err := c.stats.AggregatedValue(id, stats.KeyTransactionMonthsWithYear)
	if err != nil || !ok {
		return perMonth, err
	}
	obj, isObj := v.AsObject()
	if !isObj {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("%s/%s is %s, expected object", id, stats.KeyTransactionMonthsWithYear, v.Kind()), nil)
	}

	err = obj.Each(func(month string, count files.Value) error {
		n, err := count.Int()
		if err != nil {
			return apperrors.NewParsingError(fmt.Sprintf("%s/%s/%s", id, stats.KeyTransactionMonthsWithYear, month), err)
		}
		perMonth[month] = n
		return nil
	})
	return perMonth, err
}

func (c *Calculator) record(id string, perMonth map[string]int64, assessment string) (domain.TimelinessRecord, error) {
	title, err := c.registry.Title(id)
	if err != nil {
		return domain.TimelinessRecord{}, err
	}
	return domain.TimelinessRecord{
		Title:       title,
		PublisherID: id,
		PerMonth:    perMonth,
		Assessment:  assessment,
	}, nil
}

func sortRecords(records []domain.TimelinessRecord, ranking []string) {
	rank := make(map[string]int, len(ranking))
	for i, a := range ranking {
		rank[a] = i
	}
	folder := cases.Fold()
	keys := make(map[string]string, len(records))
	for _, r := range records {
		keys[r.PublisherID] = folder.String(r.Title)
	}

	sort.SliceStable(records, func(i, j int) bool {
		ri, rj := rank[records[i].Assessment], rank[records[j].Assessment]
		if ri != rj {
			return ri < rj
		}
		return keys[records[i].PublisherID] < keys[records[j].PublisherID]
	})
}
