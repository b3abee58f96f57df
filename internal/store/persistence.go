package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Eien0503/AudioDeviceSwitcherDaemon/internal/model"
)

// SchemaVersion is the current persistence schema version.
const SchemaVersion = 1

// Persistence defines the interface for switch history storage.
type Persistence interface {
	// Load reads all events from storage.
	Load() ([]model.SwitchEvent, error)

	// Append adds an event to storage.
	Append(e model.SwitchEvent) error

	// Rewrite replaces the entire storage file (used after trimming).
	Rewrite(es []model.SwitchEvent) error

	// Clear removes all stored events.
	Clear() error

	// Close releases file handles and resources.
	Close() error
}

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	SchemaVersion int   `json:"audioswitch_schema_version"`
	CreatedAt     int64 `json:"created_at"`
}

// JSONLPersistence implements Persistence using JSONL files. No handle is
// kept between calls: the daemon and short-lived CLI runs write the same file,
// and a rewrite by one replaces the inode the other would still hold.
type JSONLPersistence struct {
	mu     sync.Mutex
	path   string
	closed bool
}

// ErrPersistenceClosed is returned when operations are attempted on a closed persistence.
var ErrPersistenceClosed = errors.New("persistence is closed")

// NewJSONLPersistence creates a new JSONLPersistence.
// Creates the file if it doesn't exist.
func NewJSONLPersistence(path string) (*JSONLPersistence, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	p := &JSONLPersistence{path: path}

	file, err := p.openAppend()
	if err != nil {
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, err
	}
	return p, nil
}

// Path returns the file path.
func (p *JSONLPersistence) Path() string {
	return p.path
}

// openAppend opens the file for appending, writing the header when it is new.
func (p *JSONLPersistence) openAppend() (*os.File, error) {
	file, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", p.path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := writeHeader(file); err != nil {
			file.Close()
			return nil, err
		}
	}
	return file, nil
}

func writeHeader(w io.Writer) error {
	header := schemaHeader{
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().Unix(),
	}

	data, err := json.Marshal(header)
	if err != nil {
		return err
	}

	_, err = w.Write(append(data, '\n'))
	return err
}

// Load reads all events from storage. Malformed lines are skipped.
func (p *JSONLPersistence) Load() ([]model.SwitchEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPersistenceClosed
	}

	file, err := os.Open(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open file %s: %w", p.path, err)
	}
	defer file.Close()

	var events []model.SwitchEvent
	scanner := bufio.NewScanner(file)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.SchemaVersion > 0 {
				if header.SchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.SchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var e model.SwitchEvent
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		if e.Validate() == nil {
			events = append(events, e)
		}
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading file: %w", err)
	}

	return events, nil
}

// Append adds an event to storage.
func (p *JSONLPersistence) Append(e model.SwitchEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	file, err := p.openAppend()
	if err != nil {
		return err
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Rewrite replaces the entire storage file.
func (p *JSONLPersistence) Rewrite(es []model.SwitchEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}

	return p.replace(es)
}

// Clear removes all stored events.
func (p *JSONLPersistence) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}

	return p.replace(nil)
}

// replace writes es to a temp file and renames it over the original.
func (p *JSONLPersistence) replace(es []model.SwitchEvent) error {
	tmpPath := p.path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create new file: %w", err)
	}

	if err := writeEvents(file, es); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, p.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", p.path, err)
	}
	return nil
}

func writeEvents(file *os.File, es []model.SwitchEvent) error {
	if err := writeHeader(file); err != nil {
		return err
	}
	for _, e := range es {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return file.Sync()
}

// Close marks the persistence closed.
func (p *JSONLPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	return nil
}
