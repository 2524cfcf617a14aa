package stats

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"dashcsv/internal/config"
	apperrors "dashcsv/internal/errors"
	"dashcsv/internal/files"
	"dashcsv/pkg/contracts/domain"
)

// Store names used in MissingKey errors
const (
	StoreInverted   = "inverted-publisher"
	StoreAggregated = "aggregated-publisher"
	StoreDated      = "gitaggregate-publisher-dated"
)

// Keys read from the aggregated-publisher tree
const (
	KeyActivities                = "activities"
	KeyOrganisations             = "organisations"
	KeyActivityFiles             = "activity_files"
	KeyOrganisationFiles         = "organisation_files"
	KeyFileSize                  = "file_size"
	KeyReportingOrgs             = "reporting_orgs"
	KeyHierarchies               = "hierarchies"
	KeyTransactionsByTypeByYear  = "sum_transactions_by_type_by_year"
	KeyTransactionMonthsWithYear = "transaction_months_with_year"
	KeyMostRecentTransactionDate = "most_recent_transaction_date"
)

// ElementsVariant selects one of the inverted element maps
type ElementsVariant string

const (
	// ElementsValid counts elements in schema-valid data only
	ElementsValid ElementsVariant = "elements"
	// ElementsTotal counts elements in valid and invalid data
	ElementsTotal ElementsVariant = "elements_total"
)

// IndexEntry is one publisher of the activity index
type IndexEntry struct {
	PublisherID string
	Activities  files.Value
}

// Store is a read-only view over the stats-calculated tree. It is safe for
// concurrent use.
type Store struct {
	inverted   *files.Dir
	aggregated *files.Dir
	dated      *files.Dir
}

// Open returns a Store over the directories resolved by paths. Files are
// read on first access.
func Open(paths *config.Paths) *Store {
	return New(
		files.OpenDir(paths.InvertedPublisherDir()),
		files.OpenDir(paths.AggregatedPublisherDir()),
		files.OpenDir(paths.GitAggregateDatedDir()),
	)
}

// New builds a Store from already opened directories
func New(inverted, aggregated, dated *files.Dir) *Store {
	return &Store{inverted: inverted, aggregated: aggregated, dated: dated}
}

func (s *Store) invertedObject(key string) (*files.Object, error) {
	v, ok, err := s.inverted.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewMissingKeyError(StoreInverted, key)
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("%s/%s: expected object, got %s", StoreInverted, key, v.Kind()), nil)
	}
	return obj, nil
}

// ActivityIndex returns the activity count of every publisher in the order
// of the inverted activities file
func (s *Store) ActivityIndex() ([]IndexEntry, error) {
	obj, err := s.invertedObject(KeyActivities)
	if err != nil {
		return nil, err
	}

	entries := make([]IndexEntry, 0, obj.Len())
	_ = obj.Each(func(id string, v files.Value) error {
		entries = append(entries, IndexEntry{PublisherID: id, Activities: v})
		return nil
	})
	return entries, nil
}

// PublisherIDs returns the publishers of the activity index in index order
func (s *Store) PublisherIDs() ([]string, error) {
	obj, err := s.invertedObject(KeyActivities)
	if err != nil {
		return nil, err
	}
	return obj.Keys(), nil
}

// Elements returns the element -> publisher -> count map for variant
func (s *Store) Elements(variant ElementsVariant) (*files.Object, error) {
	return s.invertedObject(string(variant))
}

// AggregatedPublishers lists the publishers with aggregated statistics
func (s *Store) AggregatedPublishers() ([]string, error) {
	return s.aggregated.Keys()
}

// AggregatedValue returns one statistic of a publisher. ok is false when
// either the publisher or the key is absent.
func (s *Store) AggregatedValue(id, key string) (files.Value, bool, error) {
	return lookup(s.aggregated, id, key)
}

func (s *Store) requireAggregated(id, key string) (files.Value, error) {
	v, ok, err := s.AggregatedValue(id, key)
	if err != nil {
		return files.Value{}, err
	}
	if !ok {
		return files.Value{}, apperrors.NewMissingKeyError(StoreAggregated+"/"+id, key)
	}
	return v, nil
}

// AggregatedActivities returns the activity count of a publisher
func (s *Store) AggregatedActivities(id string) (files.Value, error) {
	return s.requireAggregated(id, KeyActivities)
}

// TransactionsByTypeByYear returns the type -> currency -> year -> value map
// of a publisher
func (s *Store) TransactionsByTypeByYear(id string) (*files.Object, error) {
	v, err := s.requireAggregated(id, KeyTransactionsByTypeByYear)
	if err != nil {
		return nil, err
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("%s/%s/%s: expected object, got %s", StoreAggregated, id, KeyTransactionsByTypeByYear, v.Kind()), nil)
	}
	return obj, nil
}

// PublisherStats reads the summary bundle of a publisher. Every field is
// required.
func (s *Store) PublisherStats(id string) (domain.PublisherStats, error) {
	var ps domain.PublisherStats

	ints := []struct {
		key string
		dst *int64
	}{
		{KeyOrganisations, &ps.Organisations},
		{KeyActivityFiles, &ps.ActivityFiles},
		{KeyOrganisationFiles, &ps.OrganisationFiles},
		{KeyFileSize, &ps.FileSize},
	}
	for _, f := range ints {
		v, err := s.requireAggregated(id, f.key)
		if err != nil {
			return ps, err
		}
		n, err := v.Int()
		if err != nil {
			return ps, apperrors.NewParsingError(fmt.Sprintf("%s/%s/%s", StoreAggregated, id, f.key), err)
		}
		*f.dst = n
	}

	lists := []struct {
		key string
		dst *[]string
	}{
		{KeyReportingOrgs, &ps.ReportingOrgs},
		{KeyHierarchies, &ps.Hierarchies},
	}
	for _, f := range lists {
		v, err := s.requireAggregated(id, f.key)
		if err != nil {
			return ps, err
		}
		list, err := names(v)
		if err != nil {
			return ps, apperrors.NewParsingError(fmt.Sprintf("%s/%s/%s", StoreAggregated, id, f.key), err)
		}
		*f.dst = list
	}

	return ps, nil
}

// names accepts either a list of names or an object keyed by name, which is
// how the aggregated counts by reporting org and hierarchy are stored
func names(v files.Value) ([]string, error) {
	if obj, ok := v.AsObject(); ok {
		return obj.Keys(), nil
	}
	items, ok := v.AsArray()
	if !ok {
		return nil, fmt.Errorf("expected list or object, got %s", v.Kind())
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Text())
	}
	return out, nil
}

// DatedPublishers lists the publishers with a dated history
func (s *Store) DatedPublishers() ([]string, error) {
	return s.dated.Keys()
}

// DatedValue returns one dated statistic of a publisher
func (s *Store) DatedValue(id, key string) (files.Value, bool, error) {
	return lookup(s.dated, id, key)
}

func lookup(root *files.Dir, id, key string) (files.Value, bool, error) {
	pub, ok, err := root.Sub(id)
	if err != nil || !ok {
		return files.Value{}, false, err
	}
	return pub.Get(key)
}

// LogSummary logs the size of the inputs
func (s *Store) LogSummary(logger *slog.Logger) {
	ids, err := s.PublisherIDs()
	if err != nil {
		logger.Warn("Activity index unavailable", slog.String("error", err.Error()))
		return
	}

	discovery := files.NewDiscovery("")
	var total int64
	for _, dir := range []*files.Dir{s.inverted, s.aggregated, s.dated} {
		if !dir.Exists() {
			continue
		}
		size, err := discovery.TotalSize(dir.Path())
		if err != nil {
			logger.Warn("Failed to measure statistics input",
				slog.String("path", dir.Path()),
				slog.String("error", err.Error()))
			continue
		}
		total += size
	}

	logger.Info("Statistics store opened",
		slog.Int("publishers", len(ids)),
		slog.Int64("input_bytes", total),
		slog.String("input_size", humanize.Bytes(uint64(total))),
		slog.String("inverted_publisher", s.inverted.Path()),
		slog.String("aggregated_publisher", s.aggregated.Path()))
}
