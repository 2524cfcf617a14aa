package exporter

import (
	"time"

	"dashcsv/internal/comprehensiveness"
	"dashcsv/internal/files"
	"dashcsv/internal/forwardlooking"
	"dashcsv/internal/registry"
	"dashcsv/internal/stats"
	"dashcsv/internal/timeliness"
	"dashcsv/pkg/contracts/domain"
)

// StatsSource is the part of the statistics store the reports read
type StatsSource interface {
	ActivityIndex() ([]stats.IndexEntry, error)
	PublisherIDs() ([]string, error)
	Elements(variant stats.ElementsVariant) (*files.Object, error)
	AggregatedActivities(id string) (files.Value, error)
	TransactionsByTypeByYear(id string) (*files.Object, error)
	PublisherStats(id string) (domain.PublisherStats, error)
}

// RegistrySource is the part of the registry store the reports read
type RegistrySource interface {
	Records() []registry.Record
	Title(id string) (string, error)
	IATIID(id string) (files.Value, error)
	TicketCount(id string) int
}

// TitleLister lists publishers in case-folded title order
type TitleLister interface {
	PublishersByTitle() ([]domain.Publisher, error)
}

// TimelinessSource provides the sorted timeliness assessments
type TimelinessSource interface {
	PreviousMonthsReversed() []string
	PublisherFrequencySorted() ([]domain.TimelinessRecord, error)
	PublisherTimelagSorted() ([]domain.TimelinessRecord, error)
}

// ForwardLookingSource provides the forward-looking table
type ForwardLookingSource interface {
	Years() []int
	ColumnHeaders() []string
	Table() ([]domain.ForwardLookingRow, error)
}

// ComprehensivenessSource provides the shared comprehensiveness table
type ComprehensivenessSource interface {
	Tabs() []string
	ColumnHeaders(tab string) []string
	ColumnSlugs(tab string) []string
	Table() ([]domain.ComprehensivenessRow, error)
}

// Sources bundles the stores and derived modules every report reads from.
// All of them are immutable once built.
type Sources struct {
	Stats             StatsSource
	Registry          RegistrySource
	Titles            TitleLister
	Timeliness        TimelinessSource
	ForwardLooking    ForwardLookingSource
	Comprehensiveness ComprehensivenessSource
}

// NewSources wires the derived metric modules over the two stores. The
// title order is computed once over the activity index and shared. now is
// read once here so every date-dependent header and value of a run uses the
// same reference time.
func NewSources(st *stats.Store, reg *registry.Store, now func() time.Time) Sources {
	if now == nil {
		now = time.Now
	}
	asOf := now()
	clock := func() time.Time { return asOf }

	titles := registry.NewTitleIndex(reg, st)
	return Sources{
		Stats:             st,
		Registry:          reg,
		Titles:            titles,
		Timeliness:        timeliness.NewCalculator(st, reg, clock),
		ForwardLooking:    forwardlooking.NewCalculator(st, titles, clock),
		Comprehensiveness: comprehensiveness.NewCalculator(st, titles),
	}
}
