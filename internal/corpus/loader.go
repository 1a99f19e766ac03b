package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader reads one corpus file, in JSONL or Parquet form.
type Loader struct {
	path string
}

// NewLoader creates a loader for the given corpus file.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// LoadStats reports how a load went. Loaded plus Skipped can be lower
// than Lines because blank lines are ignored outright.
type LoadStats struct {
	Lines   int
	Loaded  int
	Skipped int
}

// Kind sniffs which corpus the file holds. Parquet files are always
// literary; for JSONL the first record's keys decide, defaulting to
// literary when the file is empty or the first line is unreadable.
func (l *Loader) Kind() (Kind, error) {
	if strings.ToLower(filepath.Ext(l.path)) == ".parquet" {
		return KindLiterary, nil
	}

	file, err := os.Open(l.path)
	if err != nil {
		return "", fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, maxLineBytes), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(line, &probe); err != nil {
			break
		}
		if _, hasID := probe["sample_id"]; hasID {
			if _, hasWords := probe["words"]; hasWords {
				return KindLiterary, nil
			}
		}
		if _, ok := probe["utterance"]; ok {
			return KindDialogue, nil
		}
		break
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("error reading corpus file: %w", err)
	}

	return KindLiterary, nil
}

// Items detects the corpus kind and loads every record as an Item.
func (l *Loader) Items() ([]Item, LoadStats, error) {
	kind, err := l.Kind()
	if err != nil {
		return nil, LoadStats{}, err
	}

	switch kind {
	case KindDialogue:
		dialogue, stats, err := l.Dialogue()
		if err != nil {
			return nil, stats, err
		}
		items := make([]Item, len(dialogue))
		for i, it := range dialogue {
			items[i] = it
		}
		return items, stats, nil
	default:
		literary, stats, err := l.Literary()
		if err != nil {
			return nil, stats, err
		}
		items := make([]Item, len(literary))
		for i, it := range literary {
			items[i] = it
		}
		return items, stats, nil
	}
}

// Literary loads literary excerpts from a JSONL or Parquet file.
// Malformed JSONL records are logged and skipped, not fatal.
func (l *Loader) Literary() ([]*LiteraryItem, LoadStats, error) {
	ext := strings.ToLower(filepath.Ext(l.path))

	switch ext {
	case ".parquet":
		return l.literaryParquet()
	case ".jsonl", ".json":
		return l.literaryJSONL()
	default:
		return nil, LoadStats{}, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

// Dialogue loads dialogue utterances from a JSONL file. Records missing
// an utterance, or with a blank one, are logged and skipped.
func (l *Loader) Dialogue() ([]*DialogueItem, LoadStats, error) {
	ext := strings.ToLower(filepath.Ext(l.path))
	if ext != ".jsonl" && ext != ".json" {
		return nil, LoadStats{}, fmt.Errorf("unsupported file format for dialogue: %s (supported: .jsonl)", ext)
	}

	slog.Debug("Opening dialogue JSONL file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer file.Close()

	var items []*DialogueItem
	var stats LoadStats

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, maxLineBytes), maxLineBytes)

	for scanner.Scan() {
		stats.Lines++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var item DialogueItem
		if err := json.Unmarshal(line, &item); err != nil {
			slog.Warn("Skipping malformed dialogue record", "path", l.path, "line", stats.Lines, "error", err)
			stats.Skipped++
			continue
		}

		item.SourceFile = filepath.Base(l.path)
		items = append(items, &item)
		stats.Loaded++
	}

	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("error reading corpus file: %w", err)
	}

	slog.Debug("Finished reading dialogue JSONL", "loaded", stats.Loaded, "skipped", stats.Skipped, "lines", stats.Lines)

	return items, stats, nil
}

// maxLineBytes bounds a single JSONL line; literary excerpts with large
// words maps can run long.
const maxLineBytes = 10 * 1024 * 1024

func (l *Loader) literaryJSONL() ([]*LiteraryItem, LoadStats, error) {
	slog.Debug("Opening literary JSONL file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer file.Close()

	var items []*LiteraryItem
	var stats LoadStats

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, maxLineBytes), maxLineBytes)

	for scanner.Scan() {
		stats.Lines++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var item LiteraryItem
		if err := json.Unmarshal(line, &item); err != nil {
			slog.Warn("Skipping malformed literary record", "path", l.path, "line", stats.Lines, "error", err)
			stats.Skipped++
			continue
		}

		items = append(items, &item)
		stats.Loaded++

		if stats.Lines%1000 == 0 {
			slog.Debug("Reading literary JSONL", "lines_read", stats.Lines)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("error reading corpus file: %w", err)
	}

	slog.Debug("Finished reading literary JSONL", "loaded", stats.Loaded, "skipped", stats.Skipped, "lines", stats.Lines)

	return items, stats, nil
}

// literaryRow is the Parquet row shape; word order inside the map is not
// defined by the format, so surfaces are sorted during conversion.
type literaryRow struct {
	SampleID int64                  `parquet:"sample_id"`
	SourceID string                 `parquet:"g_id"`
	Author   string                 `parquet:"author"`
	Title    string                 `parquet:"title"`
	Sample   string                 `parquet:"sample"`
	Words    map[string]WordVariant `parquet:"words"`
}

func (l *Loader) literaryParquet() ([]*LiteraryItem, LoadStats, error) {
	slog.Debug("Opening literary Parquet file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[literaryRow](pf)
	defer reader.Close()

	var items []*LiteraryItem
	var stats LoadStats
	rows := make([]literaryRow, 128)

	for {
		n, err := reader.Read(rows)
		for i := 0; i < n; i++ {
			items = append(items, rows[i].toItem())
		}
		stats.Lines += n
		stats.Loaded += n
		if err != nil {
			break
		}
	}

	slog.Debug("Finished reading literary Parquet", "loaded", stats.Loaded)

	return items, stats, nil
}

func (r *literaryRow) toItem() *LiteraryItem {
	item := &LiteraryItem{
		ID:       int(r.SampleID),
		SourceID: r.SourceID,
		Author:   r.Author,
		Title:    r.Title,
		Text:     r.Sample,
	}

	surfaces := make([]string, 0, len(r.Words))
	for surface := range r.Words {
		surfaces = append(surfaces, surface)
	}
	sort.Strings(surfaces)
	for _, surface := range surfaces {
		item.Words.Set(surface, r.Words[surface])
	}

	return item
}

// LoadDialogueDir loads every *.jsonl file in a directory as dialogue,
// in lexical filename order, and merges their stats.
func LoadDialogueDir(dir string) ([]*DialogueItem, LoadStats, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to list dialogue dir: %w", err)
	}
	if len(paths) == 0 {
		return nil, LoadStats{}, fmt.Errorf("no .jsonl files in %s", dir)
	}

	var items []*DialogueItem
	var stats LoadStats
	for _, path := range paths {
		fileItems, fileStats, err := NewLoader(path).Dialogue()
		if err != nil {
			return nil, stats, err
		}
		items = append(items, fileItems...)
		stats.Lines += fileStats.Lines
		stats.Loaded += fileStats.Loaded
		stats.Skipped += fileStats.Skipped
	}

	return items, stats, nil
}
