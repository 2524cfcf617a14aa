// Package comprehensiveness scores how many of the expected fields each
// publisher's activities populate, grouped into summary, core, financials
// and value added tabs.
package comprehensiveness

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	apperrors "dashcsv/internal/errors"
	"dashcsv/internal/files"
	"dashcsv/pkg/contracts/domain"
)

const (
	keyActivities         = "activities"
	keyScores             = "comprehensiveness"
	keyValidatedScores    = "comprehensiveness_with_validation"
	keyDenominators       = "comprehensiveness_denominators"
	keyDefaultDenominator = "comprehensiveness_denominator_default"

	// ValidSuffix marks the score computed over schema-valid data only
	ValidSuffix = "_valid"
)

// StatsReader reads one aggregated statistic of a publisher
type StatsReader interface {
	AggregatedValue(id, key string) (files.Value, bool, error)
}

// TitleLister lists publishers in title order
type TitleLister interface {
	PublishersByTitle() ([]domain.Publisher, error)
}

// Calculator produces the comprehensiveness table. The table is computed
// once and shared by every tab.
type Calculator struct {
	stats  StatsReader
	titles TitleLister

	once  sync.Once
	table []domain.ComprehensivenessRow
	err   error
}

// NewCalculator creates a calculator
func NewCalculator(st StatsReader, titles TitleLister) *Calculator {
	return &Calculator{stats: st, titles: titles}
}

// Tabs returns the tab names in report order
func (c *Calculator) Tabs() []string { return Tabs() }

// ColumnHeaders returns the display headers of tab
func (c *Calculator) ColumnHeaders(tab string) []string { return ColumnHeaders(tab) }

// ColumnSlugs returns the value keys of tab
func (c *Calculator) ColumnSlugs(tab string) []string { return ColumnSlugs(tab) }

// Table returns one row per publisher in title order
func (c *Calculator) Table() ([]domain.ComprehensivenessRow, error) {
	c.once.Do(func() {
		c.table, c.err = c.build()
	})
	return c.table, c.err
}

func (c *Calculator) build() ([]domain.ComprehensivenessRow, error) {
	publishers, err := c.titles.PublishersByTitle()
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ComprehensivenessRow, 0, len(publishers))
	for _, pub := range publishers {
		row := domain.ComprehensivenessRow{
			PublisherID: pub.ID,
			Title:       pub.Title,
			Values:      map[string]string{},
		}

		scored, err := c.hasScores(pub.ID)
		if err != nil {
			return nil, err
		}
		if scored {
			if err := c.score(pub.ID, row.Values); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// hasScores reports whether a publisher has activities and scores
func (c *Calculator) hasScores(id string) (bool, error) {
	v, ok, err := c.stats.AggregatedValue(id, keyScores)
	if err != nil || !ok {
		return false, err
	}
	if _, isObj := v.AsObject(); !isObj {
		return false, nil
	}

	activities, ok, err := c.stats.AggregatedValue(id, keyActivities)
	if err != nil || !ok {
		return false, err
	}
	return activities.Truthy(), nil
}

type scoreInputs struct {
	scores       *files.Object
	validated    *files.Object
	denominators *files.Object
	fallback     float64
}

func (c *Calculator) object(id, key string) (*files.Object, error) {
	v, ok, err := c.stats.AggregatedValue(id, key)
	if err != nil || !ok {
		return nil, err
	}
	obj, isObj := v.AsObject()
	if !isObj {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s/%s is %s, expected object", id, key, v.Kind()), nil)
	}
	return obj, nil
}

func (c *Calculator) inputs(id string) (scoreInputs, error) {
	var in scoreInputs
	var err error

	if in.scores, err = c.object(id, keyScores); err != nil {
		return in, err
	}
	if in.validated, err = c.object(id, keyValidatedScores); err != nil {
		return in, err
	}
	if in.denominators, err = c.object(id, keyDenominators); err != nil {
		return in, err
	}

	v, ok, err := c.stats.AggregatedValue(id, keyDefaultDenominator)
	if err != nil {
		return in, err
	}
	if ok && !v.IsNull() {
		if in.fallback, err = v.Float(); err != nil {
			return in, apperrors.NewParsingError(fmt.Sprintf("%s/%s", id, keyDefaultDenominator), err)
		}
	}
	return in, nil
}

// number reads key from obj, 0 when absent
func number(obj *files.Object, key string) (float64, error) {
	v, ok := obj.Get(key)
	if !ok || v.IsNull() {
		return 0, nil
	}
	return v.Float()
}

func percentage(count, denominator float64) int64 {
	if denominator == 0 {
		return 0
	}
	return int64(math.Round(count / denominator * 100))
}

func (c *Calculator) score(id string, values map[string]string) error {
	in, err := c.inputs(id)
	if err != nil {
		return err
	}

	scores := make(map[string]int64)
	for _, tab := range scoredTabs {
		for _, col := range columns[tab] {
			if col.Weight == 0 {
				continue
			}

			denominator := in.fallback
			if d, ok := in.denominators.Get(col.Slug); ok {
				if denominator, err = d.Float(); err != nil {
					return apperrors.NewParsingError(fmt.Sprintf("%s/%s/%s", id, keyDenominators, col.Slug), err)
				}
			}

			all, err := number(in.scores, col.Slug)
			if err != nil {
				return apperrors.NewParsingError(fmt.Sprintf("%s/%s/%s", id, keyScores, col.Slug), err)
			}
			valid, err := number(in.validated, col.Slug)
			if err != nil {
				return apperrors.NewParsingError(fmt.Sprintf("%s/%s/%s", id, keyValidatedScores, col.Slug), err)
			}

			scores[col.Slug] = percentage(all, denominator)
			scores[col.Slug+ValidSuffix] = percentage(valid, denominator)
		}

		average(tab, scores, "")
		average(tab, scores, ValidSuffix)
	}

	average(TabSummary, scores, "")
	average(TabSummary, scores, ValidSuffix)

	for k, v := range scores {
		values[k] = strconv.FormatInt(v, 10)
	}
	return nil
}

// average stores the weighted mean of tab's columns under the tab's
// zero-weight average slug
func average(tab string, scores map[string]int64, suffix string) {
	var sum, weights int64
	var target string
	for _, col := range columns[tab] {
		if col.Weight == 0 {
			target = col.Slug
			continue
		}
		sum += scores[col.Slug+suffix] * int64(col.Weight)
		weights += int64(col.Weight)
	}
	if target == "" {
		return
	}
	if weights == 0 {
		scores[target+suffix] = 0
		return
	}
	scores[target+suffix] = int64(math.Round(float64(sum) / float64(weights)))
}
