package files

import (
	"sync"

	apperrors "dashcsv/internal/errors"
)

// Dir is a directory-backed mapping. Every "<key>.json" file and every
// "<key>/" subdirectory is a key; subdirectories are Dirs themselves.
// Entries are loaded on first access and cached, so a Dir may be shared
// between goroutines.
type Dir struct {
	path      string
	discovery *Discovery

	mu      sync.Mutex
	entries map[string]FileInfo
	keys    []string
	listed  bool
	values  map[string]Value
	subdirs map[string]*Dir
}

// OpenDir returns a Dir for path. Nothing is read until the first lookup.
func OpenDir(path string) *Dir {
	return &Dir{
		path:      path,
		discovery: NewDiscovery(""),
		values:    make(map[string]Value),
		subdirs:   make(map[string]*Dir),
	}
}

// Path returns the directory location
func (d *Dir) Path() string {
	return d.path
}

// Exists reports whether the directory is present on disk
func (d *Dir) Exists() bool {
	return d.discovery.DirExists(d.path)
}

func (d *Dir) list() error {
	if d.listed {
		return nil
	}

	found, err := d.discovery.FindJSONEntries(d.path)
	if err != nil {
		return apperrors.NewStorageError("failed to list "+d.path, err)
	}

	d.entries = make(map[string]FileInfo, len(found))
	d.keys = d.keys[:0]
	for _, entry := range found {
		key := entry.Key()
		if existing, dup := d.entries[key]; dup {
			// a subdirectory shadows a file of the same key
			if existing.IsDir || !entry.IsDir {
				continue
			}
		} else {
			d.keys = append(d.keys, key)
		}
		d.entries[key] = entry
	}
	d.listed = true
	return nil
}

// Keys returns the keys of the mapping in sorted order
func (d *Dir) Keys() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.list(); err != nil {
		return nil, err
	}
	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	return keys, nil
}

// Sub returns the subdirectory stored under key
func (d *Dir) Sub(key string) (*Dir, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.list(); err != nil {
		return nil, false, err
	}
	entry, ok := d.entries[key]
	if !ok || !entry.IsDir {
		return nil, false, nil
	}
	return d.subdir(key, entry), true, nil
}

func (d *Dir) subdir(key string, entry FileInfo) *Dir {
	sub, ok := d.subdirs[key]
	if !ok {
		sub = OpenDir(entry.Path)
		d.subdirs[key] = sub
	}
	return sub
}

// Get returns the value stored under key. A file is decoded; a
// subdirectory is loaded as an object of its own keys.
func (d *Dir) Get(key string) (Value, bool, error) {
	d.mu.Lock()
	if err := d.list(); err != nil {
		d.mu.Unlock()
		return Value{}, false, err
	}
	if v, ok := d.values[key]; ok {
		d.mu.Unlock()
		return v, true, nil
	}
	entry, ok := d.entries[key]
	if !ok {
		d.mu.Unlock()
		return Value{}, false, nil
	}
	var sub *Dir
	if entry.IsDir {
		sub = d.subdir(key, entry)
	}
	d.mu.Unlock()

	var (
		v   Value
		err error
	)
	if sub != nil {
		v, err = sub.Load()
	} else {
		v, err = DecodeFile(entry.Path)
	}
	if err != nil {
		return Value{}, false, err
	}

	d.mu.Lock()
	// a concurrent lookup may have won; keep the first value
	if cached, ok := d.values[key]; ok {
		v = cached
	} else {
		d.values[key] = v
	}
	d.mu.Unlock()
	return v, true, nil
}

// Load reads the whole tree below d into one object
func (d *Dir) Load() (Value, error) {
	keys, err := d.Keys()
	if err != nil {
		return Value{}, err
	}

	obj := NewObject()
	for _, key := range keys {
		v, _, err := d.Get(key)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, v)
	}
	return NewObjectValue(obj), nil
}
