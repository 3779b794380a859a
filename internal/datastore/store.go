package datastore

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	// DefaultSnapshotName is the snapshot file inside the data directory.
	DefaultSnapshotName = "store.snapshot.msgpack"
	// DefaultJournalName is the append-only journal inside the data directory.
	DefaultJournalName = "store.journal.msgpack"

	opDelete uint8 = 0
	opWrite  uint8 = 1
)

// Record is a stored value with its bookkeeping.
type Record struct {
	Value     []byte
	Timestamp int64
	Metadata  map[string]string
	Rev       uint64
}

// Entry is a keyed record returned by Dump.
type Entry struct {
	Key string
	Record
}

// Stats describes the store contents and its files.
type Stats struct {
	Namespaces     map[string]int
	TotalKeys      int
	SnapshotBytes  int64
	JournalBytes   int64
	LastCompaction time.Time
	CorruptEntries int
}

type journalEntry struct {
	Op        uint8             `msgpack:"op"`
	Namespace string            `msgpack:"ns"`
	Key       string            `msgpack:"k"`
	Value     []byte            `msgpack:"v,omitempty"`
	Timestamp int64             `msgpack:"t,omitempty"`
	Metadata  map[string]string `msgpack:"m,omitempty"`
	Rev       uint64            `msgpack:"rev"`
}

type snapshotRecord struct {
	Key       string            `msgpack:"k"`
	Value     []byte            `msgpack:"v"`
	Timestamp int64             `msgpack:"t"`
	Metadata  map[string]string `msgpack:"m,omitempty"`
	Rev       uint64            `msgpack:"rev"`
}

type snapshotNamespace struct {
	Name    string           `msgpack:"name"`
	Records []snapshotRecord `msgpack:"records"`
}

type snapshotRevision struct {
	Namespace string `msgpack:"ns"`
	Key       string `msgpack:"k"`
	Rev       uint64 `msgpack:"rev"`
}

type snapshot struct {
	Namespaces []snapshotNamespace `msgpack:"namespaces"`
	Revisions  []snapshotRevision  `msgpack:"revisions,omitempty"`
}

type revKey struct {
	namespace string
	key       string
}

type namespace struct {
	keys    []string
	records map[string]Record
}

// Store is a namespaced key-value store persisted as a msgpack snapshot plus
// an append-only journal. It is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	snapshotPath string
	journalPath  string
	journal      *os.File

	namespaces     map[string]*namespace
	nsOrder        []string
	revisions      map[revKey]uint64
	corruptEntries int
	lastCompaction time.Time
	closed         bool

	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report corrupt files.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFileNames overrides the snapshot and journal file names.
func WithFileNames(snapshotName, journalName string) Option {
	return func(s *Store) {
		if snapshotName != "" {
			s.snapshotPath = filepath.Join(filepath.Dir(s.snapshotPath), snapshotName)
		}
		if journalName != "" {
			s.journalPath = filepath.Join(filepath.Dir(s.journalPath), journalName)
		}
	}
}

// Open loads the store from dir, creating the directory when needed.
func Open(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		snapshotPath: filepath.Join(dir, DefaultSnapshotName),
		journalPath:  filepath.Join(dir, DefaultJournalName),
		namespaces:   make(map[string]*namespace),
		revisions:    make(map[revKey]uint64),
		now:          time.Now,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.loadSnapshot()
	if err := s.replayJournal(); err != nil {
		return nil, err
	}

	journal, err := os.OpenFile(s.journalPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	s.journal = journal
	return s, nil
}

// Close releases the journal file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.journal.Close()
}

// Save stores value under namespace/key and returns the new revision and
// timestamp. With replace false an existing key yields ErrExists.
func (s *Store) Save(ns, key string, value []byte, meta map[string]string, replace bool) (uint64, int64, error) {
	if ns == "" || key == "" {
		return 0, 0, ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, 0, ErrClosed
	}
	if !replace {
		if n, ok := s.namespaces[ns]; ok {
			if _, exists := n.records[key]; exists {
				return 0, 0, ErrExists
			}
		}
	}

	entry := journalEntry{
		Op:        opWrite,
		Namespace: ns,
		Key:       key,
		Value:     slices.Clone(value),
		Timestamp: s.now().Unix(),
		Metadata:  maps.Clone(meta),
		Rev:       s.revisions[revKey{ns, key}] + 1,
	}
	if err := s.appendJournal(entry); err != nil {
		return 0, 0, err
	}
	s.apply(entry)
	return entry.Rev, entry.Timestamp, nil
}

// Read returns a copy of the record stored under namespace/key.
func (s *Store) Read(ns, key string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.namespaces[ns]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec, ok := n.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

// ListKeys returns the keys of a namespace in insertion order.
func (s *Store) ListKeys(ns string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.namespaces[ns]
	if !ok {
		return []string{}
	}
	return slices.Clone(n.keys)
}

// Delete removes namespace/key. The key's revision keeps counting so a later
// Save continues from it.
func (s *Store) Delete(ns, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	n, ok := s.namespaces[ns]
	if !ok {
		return ErrNotFound
	}
	if _, ok := n.records[key]; !ok {
		return ErrNotFound
	}

	entry := journalEntry{
		Op:        opDelete,
		Namespace: ns,
		Key:       key,
		Rev:       s.revisions[revKey{ns, key}] + 1,
	}
	if err := s.appendJournal(entry); err != nil {
		return err
	}
	s.apply(entry)
	return nil
}

// Dump returns up to limit entries of a namespace in insertion order. A limit
// of zero or less returns every entry.
func (s *Store) Dump(ns string, limit int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.namespaces[ns]
	if !ok {
		return []Entry{}
	}
	keys := n.keys
	if limit > 0 && limit < len(keys) {
		keys = keys[:limit]
	}
	out := make([]Entry, 0, len(keys))
	for _, key := range keys {
		out = append(out, Entry{Key: key, Record: cloneRecord(n.records[key])})
	}
	return out
}

// Compact writes the full state to the snapshot and truncates the journal.
func (s *Store) Compact() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Stats{}, ErrClosed
	}

	data, err := msgpack.Marshal(s.snapshotLocked())
	if err != nil {
		return Stats{}, fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := s.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return Stats{}, fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.snapshotPath); err != nil {
		return Stats{}, fmt.Errorf("replace snapshot: %w", err)
	}
	if err := s.journal.Truncate(0); err != nil {
		return Stats{}, fmt.Errorf("truncate journal: %w", err)
	}

	s.lastCompaction = s.now()
	return s.statsLocked(), nil
}

// Stats reports key counts per namespace and the size of the store files.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.statsLocked()
}

func (s *Store) statsLocked() Stats {
	st := Stats{
		Namespaces:     make(map[string]int, len(s.namespaces)),
		LastCompaction: s.lastCompaction,
		CorruptEntries: s.corruptEntries,
		SnapshotBytes:  fileSize(s.snapshotPath),
		JournalBytes:   fileSize(s.journalPath),
	}
	for name, n := range s.namespaces {
		st.Namespaces[name] = len(n.keys)
		st.TotalKeys += len(n.keys)
	}
	return st
}

func (s *Store) snapshotLocked() snapshot {
	snap := snapshot{Namespaces: make([]snapshotNamespace, 0, len(s.nsOrder))}
	for _, name := range s.nsOrder {
		n := s.namespaces[name]
		sn := snapshotNamespace{Name: name, Records: make([]snapshotRecord, 0, len(n.keys))}
		for _, key := range n.keys {
			rec := n.records[key]
			sn.Records = append(sn.Records, snapshotRecord{
				Key:       key,
				Value:     rec.Value,
				Timestamp: rec.Timestamp,
				Metadata:  rec.Metadata,
				Rev:       rec.Rev,
			})
		}
		snap.Namespaces = append(snap.Namespaces, sn)
	}

	// Tombstoned keys keep their revision.
	for rk, rev := range s.revisions {
		if n, ok := s.namespaces[rk.namespace]; ok {
			if _, live := n.records[rk.key]; live {
				continue
			}
		}
		snap.Revisions = append(snap.Revisions, snapshotRevision{Namespace: rk.namespace, Key: rk.key, Rev: rev})
	}
	slices.SortFunc(snap.Revisions, func(a, b snapshotRevision) int {
		return cmp.Or(cmp.Compare(a.Namespace, b.Namespace), cmp.Compare(a.Key, b.Key))
	})
	return snap
}

func (s *Store) loadSnapshot() {
	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("snapshot unreadable, starting empty", zap.String("path", s.snapshotPath), zap.Error(err))
		}
		return
	}

	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("snapshot corrupt, starting empty", zap.String("path", s.snapshotPath), zap.Error(err))
		return
	}

	for _, sn := range snap.Namespaces {
		for _, rec := range sn.Records {
			s.apply(journalEntry{
				Op:        opWrite,
				Namespace: sn.Name,
				Key:       rec.Key,
				Value:     rec.Value,
				Timestamp: rec.Timestamp,
				Metadata:  rec.Metadata,
				Rev:       rec.Rev,
			})
		}
	}
	for _, r := range snap.Revisions {
		s.revisions[revKey{r.Namespace, r.Key}] = r.Rev
	}
}

func (s *Store) replayJournal() error {
	f, err := os.Open(s.journalPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	r := &countingReader{r: bufio.NewReader(f)}
	dec := msgpack.NewDecoder(r)
	var good int64
	for {
		var entry journalEntry
		err := dec.Decode(&entry)
		if errors.Is(err, io.EOF) && r.n == good {
			return nil
		}
		if err != nil {
			// The stream cannot be resynchronised after a malformed entry, so
			// the tail is cut and later appends stay replayable.
			s.corruptEntries++
			s.logger.Warn("journal corrupt, truncating tail",
				zap.String("path", s.journalPath),
				zap.Int64("offset", good),
				zap.Error(err),
			)
			if err := os.Truncate(s.journalPath, good); err != nil {
				return fmt.Errorf("truncate journal: %w", err)
			}
			return nil
		}
		good = r.n
		if !validEntry(entry) {
			s.corruptEntries++
			continue
		}
		s.apply(entry)
	}
}

// countingReader tracks how many bytes the decoder has consumed.
type countingReader struct {
	r *bufio.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

func (c *countingReader) UnreadByte() error {
	if err := c.r.UnreadByte(); err != nil {
		return err
	}
	c.n--
	return nil
}

func validEntry(e journalEntry) bool {
	return (e.Op == opWrite || e.Op == opDelete) && e.Namespace != "" && e.Key != ""
}

func (s *Store) appendJournal(entry journalEntry) error {
	data, err := msgpack.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	if _, err := s.journal.Write(data); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

// apply mutates the in-memory state; callers hold the lock or own the store.
func (s *Store) apply(e journalEntry) {
	rk := revKey{e.Namespace, e.Key}
	switch e.Op {
	case opWrite:
		n, ok := s.namespaces[e.Namespace]
		if !ok {
			n = &namespace{records: make(map[string]Record)}
			s.namespaces[e.Namespace] = n
			s.nsOrder = append(s.nsOrder, e.Namespace)
		}
		if _, exists := n.records[e.Key]; !exists {
			n.keys = append(n.keys, e.Key)
		}
		n.records[e.Key] = Record{
			Value:     e.Value,
			Timestamp: e.Timestamp,
			Metadata:  e.Metadata,
			Rev:       e.Rev,
		}
		s.revisions[rk] = e.Rev
	case opDelete:
		n, ok := s.namespaces[e.Namespace]
		if !ok {
			return
		}
		if _, exists := n.records[e.Key]; !exists {
			return
		}
		delete(n.records, e.Key)
		if i := slices.Index(n.keys, e.Key); i >= 0 {
			n.keys = slices.Delete(n.keys, i, i+1)
		}
		s.revisions[rk] = e.Rev
	}
}

func cloneRecord(rec Record) Record {
	return Record{
		Value:     slices.Clone(rec.Value),
		Timestamp: rec.Timestamp,
		Metadata:  maps.Clone(rec.Metadata),
		Rev:       rec.Rev,
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
