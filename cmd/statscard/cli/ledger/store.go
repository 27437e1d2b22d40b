package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultHeaderSize is the number of free-form comment lines at the top
// of every ledger file.
const DefaultHeaderSize = 7

// PlaceholderHeaderLine fills the header when a ledger file is first
// created. Existing header text is preserved verbatim across rewrites.
const PlaceholderHeaderLine = "This line is a comment block. Write whatever you want here."

// Store persists a ledger. The file implementation below is the real
// one; tests substitute an in-memory store with the same contract.
type Store interface {
	// Load reads the ledger. A missing file is a first run, not an
	// error: the file is created with headerSize placeholder header
	// lines and an empty record set is returned.
	Load(headerSize int) (header []string, records []Record, err error)

	// Rebuild truncates the ledger to one zero sentinel record per
	// repository, in listing order, preserving the header. Returns the
	// sentinel records it wrote.
	Rebuild(header []string, repos []Repository) ([]Record, error)

	// Save overwrites the ledger with header followed by records.
	Save(header []string, records []Record) error

	// Path names the backing file for diagnostics.
	Path() string
}

// FileStore is the on-disk Store. One file per account, named by the
// account fingerprint so the ledger survives account display changes.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by <dir>/<fingerprint(account)>.txt.
func NewFileStore(dir, account string) *FileStore {
	return &FileStore{path: filepath.Join(dir, Fingerprint(account)+".txt")}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store. A record line that fails to parse is kept as a
// zero record: its hash will match no live repository, so reconciliation
// re-walks that position instead of failing the run.
func (s *FileStore) Load(headerSize int) ([]string, []Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("reading ledger: %w", err)
		}
		header := placeholderHeader(headerSize)
		if err := s.write(header, nil); err != nil {
			return nil, nil, fmt.Errorf("creating ledger: %w", err)
		}
		return header, nil, nil
	}

	lines := splitLines(string(data))

	header := make([]string, 0, headerSize)
	for i := 0; i < headerSize; i++ {
		if i < len(lines) {
			header = append(header, lines[i])
		} else {
			header = append(header, PlaceholderHeaderLine)
		}
	}

	var records []Record
	if len(lines) > headerSize {
		records = make([]Record, 0, len(lines)-headerSize)
		for _, line := range lines[headerSize:] {
			rec, err := parseRecord(line)
			if err != nil {
				rec = Record{}
			}
			records = append(records, rec)
		}
	}

	return header, records, nil
}

// Rebuild implements Store.
func (s *FileStore) Rebuild(header []string, repos []Repository) ([]Record, error) {
	records := SentinelRecords(repos)
	if err := s.Save(header, records); err != nil {
		return nil, fmt.Errorf("rebuilding ledger: %w", err)
	}
	return records, nil
}

// Save implements Store. The rewrite goes through a temp file and a
// rename so a crash mid-write cannot leave a truncated ledger.
func (s *FileStore) Save(header []string, records []Record) error {
	return s.write(header, records)
}

func (s *FileStore) write(header []string, records []Record) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	var b strings.Builder
	for _, line := range header {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, rec := range records {
		b.WriteString(rec.String())
		b.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(b.String()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing ledger: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing ledger: %w", err)
	}

	return nil
}

// SentinelRecords returns one zero record per repository, in order.
func SentinelRecords(repos []Repository) []Record {
	records := make([]Record, len(repos))
	for i, repo := range repos {
		records[i] = Record{Hash: Fingerprint(repo.NameWithOwner)}
	}
	return records
}

func placeholderHeader(headerSize int) []string {
	header := make([]string, headerSize)
	for i := range header {
		header[i] = PlaceholderHeaderLine
	}
	return header
}

// splitLines splits file content into lines without terminators. A
// trailing newline does not produce an empty final line.
func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
