// Package forwardlooking measures how many of a publisher's current
// activities carry budgets for the current year and the two following.
package forwardlooking

import (
	"fmt"
	"math"
	"strconv"
	"time"

	apperrors "dashcsv/internal/errors"
	"dashcsv/internal/files"
	"dashcsv/pkg/contracts/domain"
)

const (
	keyCurrent     = "forwardlooking_activities_current"
	keyWithBudgets = "forwardlooking_activities_with_budgets"

	// Placeholder fills cells that cannot be computed
	Placeholder = "-"

	yearsAhead = 3
)

var columnHeaders = []string{
	"Current activities at the start of each year",
	"Current activities with budgets for each year",
	"Percentage of current activities with budgets",
}

// StatsReader reads one aggregated statistic of a publisher
type StatsReader interface {
	AggregatedValue(id, key string) (files.Value, bool, error)
}

// TitleLister lists publishers in title order
type TitleLister interface {
	PublishersByTitle() ([]domain.Publisher, error)
}

// Calculator produces the forward-looking table
type Calculator struct {
	stats  StatsReader
	titles TitleLister
	now    func() time.Time
}

// NewCalculator creates a calculator. A nil clock means time.Now.
func NewCalculator(st StatsReader, titles TitleLister, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{stats: st, titles: titles, now: now}
}

// Years returns the current year and the two following
func (c *Calculator) Years() []int {
	year := c.now().Year()
	years := make([]int, yearsAhead)
	for i := range years {
		years[i] = year + i
	}
	return years
}

// ColumnHeaders returns the three column blocks, each spanning Years
func (c *Calculator) ColumnHeaders() []string {
	out := make([]string, len(columnHeaders))
	copy(out, columnHeaders)
	return out
}

// Table returns one row per publisher in title order
func (c *Calculator) Table() ([]domain.ForwardLookingRow, error) {
	publishers, err := c.titles.PublishersByTitle()
	if err != nil {
		return nil, err
	}
	years := c.Years()

	rows := make([]domain.ForwardLookingRow, 0, len(publishers))
	for _, pub := range publishers {
		row, err := c.row(pub, years)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Calculator) row(pub domain.Publisher, years []int) (domain.ForwardLookingRow, error) {
	row := domain.ForwardLookingRow{
		PublisherID: pub.ID,
		Title:       pub.Title,
		YearColumns: make([]map[int]string, len(columnHeaders)),
	}
	for i := range row.YearColumns {
		row.YearColumns[i] = make(map[int]string, len(years))
	}

	current, hasCurrent, err := c.counts(pub.ID, keyCurrent)
	if err != nil {
		return row, err
	}
	budgets, hasBudgets, err := c.counts(pub.ID, keyWithBudgets)
	if err != nil {
		return row, err
	}

	for _, year := range years {
		if !hasCurrent || !hasBudgets {
			for i := range row.YearColumns {
				row.YearColumns[i][year] = Placeholder
			}
			continue
		}

		key := strconv.Itoa(year)
		cur, bud := current[key], budgets[key]
		row.YearColumns[0][year] = formatCount(cur)
		row.YearColumns[1][year] = formatCount(bud)
		if cur == 0 {
			row.YearColumns[2][year] = Placeholder
		} else {
			row.YearColumns[2][year] = strconv.FormatInt(int64(math.Round(bud/cur*100)), 10)
		}
	}
	return row, nil
}

// counts reads a year -> count object. Missing years read as zero.
func (c *Calculator) counts(id, key string) (map[string]float64, bool, error) {
	v, ok, err := c.stats.AggregatedValue(id, key)
	if err != nil || !ok {
		return nil, false, err
	}
	obj, isObj := v.AsObject()
	if !isObj {
		return nil, false, apperrors.NewParsingError(fmt.Sprintf("%s/%s is %s, expected object", id, key, v.Kind()), nil)
	}

	out := make(map[string]float64, obj.Len())
	err = obj.Each(func(year string, n files.Value) error {
		if n.IsNull() {
			return nil
		}
		f, err := n.Float()
		if err != nil {
			return apperrors.NewParsingError(fmt.Sprintf("%s/%s/%s", id, key, year), err)
		}
		out[year] = f
		return nil
	})
	return out, true, err
}

func formatCount(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
