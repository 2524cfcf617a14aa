package registry

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"golang.org/x/text/cases"

	"dashcsv/internal/config"
	apperrors "dashcsv/internal/errors"
	"dashcsv/internal/files"
	"dashcsv/pkg/contracts/domain"
)

// StoreName is used in MissingKey errors
const StoreName = "registry"

// Store is a read-only view over the registry records and the data-ticket
// map. Records keep the order of the registry directory.
type Store struct {
	records []Record
	byID    map[string]int
	tickets *files.Object
}

// New builds a Store from records and an optional tickets object
func New(records []Record, tickets *files.Object) *Store {
	s := &Store{
		records: records,
		byID:    make(map[string]int, len(records)),
		tickets: tickets,
	}
	for i, r := range records {
		s.byID[r.ID] = i
	}
	return s
}

// Open reads every data/ckan_publishers/<id>.json file and the optional
// data/tickets.json
func Open(paths *config.Paths) (*Store, error) {
	found, err := files.NewDiscovery("").FindJSONFiles(paths.CKANPublishersDir())
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list registry records", err)
	}

	records := make([]Record, 0, len(found))
	for _, f := range found {
		v, err := files.DecodeFile(f.Path)
		if err != nil {
			return nil, err
		}
		root, ok := v.AsObject()
		if !ok {
			return nil, apperrors.NewParsingError(fmt.Sprintf("registry record %s is not an object", f.Name), nil)
		}
		result, ok := root.Get("result")
		if !ok {
			return nil, apperrors.NewMissingKeyError("registry record "+f.Key(), "result")
		}
		fields, ok := result.AsObject()
		if !ok {
			return nil, apperrors.NewParsingError(fmt.Sprintf("registry record %s: result is %s", f.Name, result.Kind()), nil)
		}
		records = append(records, NewRecord(f.Key(), fields))
	}

	tickets, err := loadTickets(paths.TicketsFile())
	if err != nil {
		return nil, err
	}

	slog.Debug("Registry loaded",
		slog.Int("records", len(records)),
		slog.Int("ticket_publishers", tickets.Len()))

	return New(records, tickets), nil
}

func loadTickets(path string) (*files.Object, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return files.NewObject(), nil
	}
	v, err := files.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, apperrors.NewParsingError("tickets file is "+v.Kind().String()+", expected object", nil)
	}
	return obj, nil
}

// Records returns every record in store order
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records
func (s *Store) Len() int {
	return len(s.records)
}

// Has reports whether the registry knows the publisher
func (s *Store) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Lookup returns the record of a publisher
func (s *Store) Lookup(id string) (Record, error) {
	i, ok := s.byID[id]
	if !ok {
		return Record{}, apperrors.NewMissingKeyError(StoreName, id)
	}
	return s.records[i], nil
}

// Title returns the registry title of a publisher
func (s *Store) Title(id string) (string, error) {
	r, err := s.Lookup(id)
	if err != nil {
		return "", err
	}
	return r.Title()
}

// IATIID returns the publisher_iati_id field of a publisher
func (s *Store) IATIID(id string) (files.Value, error) {
	r, err := s.Lookup(id)
	if err != nil {
		return files.Value{}, err
	}
	v, ok := r.Field("publisher_iati_id")
	if !ok {
		return files.Value{}, apperrors.NewMissingKeyError(StoreName+"/"+id, "publisher_iati_id")
	}
	return v, nil
}

// TicketCount returns the number of open data tickets of a publisher, 0
// when it has none
func (s *Store) TicketCount(id string) int {
	v, ok := s.tickets.Get(id)
	if !ok {
		return 0
	}
	return v.Len()
}

// OrderedByTitle returns the publishers of ids that the registry knows,
// sorted by case-folded title. Equal titles keep the order of ids.
func (s *Store) OrderedByTitle(ids []string) ([]domain.Publisher, error) {
	folder := cases.Fold()

	type keyed struct {
		pub domain.Publisher
		key string
	}
	list := make([]keyed, 0, len(ids))
	for _, id := range ids {
		r, err := s.Lookup(id)
		if err != nil {
			continue
		}
		title, err := r.Title()
		if err != nil {
			return nil, err
		}
		list = append(list, keyed{
			pub: domain.Publisher{ID: id, Title: title},
			key: folder.String(title),
		})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].key < list[j].key
	})

	out := make([]domain.Publisher, len(list))
	for i, k := range list {
		out[i] = k.pub
	}
	return out, nil
}

// IDSource lists publisher ids in a stable order
type IDSource interface {
	PublisherIDs() ([]string, error)
}

// TitleIndex memoises the title-ordered publisher list of an id source
type TitleIndex struct {
	store *Store
	ids   IDSource

	once sync.Once
	list []domain.Publisher
	err  error
}

// NewTitleIndex orders the publishers of ids by registry title
func NewTitleIndex(store *Store, ids IDSource) *TitleIndex {
	return &TitleIndex{store: store, ids: ids}
}

// PublishersByTitle returns the ordered list, computed on first call
func (t *TitleIndex) PublishersByTitle() ([]domain.Publisher, error) {
	t.once.Do(func() {
		ids, err := t.ids.PublisherIDs()
		if err != nil {
			t.err = err
			return
		}
		t.list, t.err = t.store.OrderedByTitle(ids)
	})
	if t.err != nil {
		return nil, t.err
	}
	out := make([]domain.Publisher, len(t.list))
	copy(out, t.list)
	return out, nil
}
