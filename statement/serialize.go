package statement

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/model"
)

// Format names a statement serialization.
type Format string

const (
	// FormatJSON is one JSON object per line.
	FormatJSON Format = "json"
	// FormatCSV is a CSV table with a header row of CSVColumns.
	FormatCSV Format = "csv"
	// FormatPack is a headerless ten-column CSV with packed "schema:prop" names.
	FormatPack Format = "pack"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatCSV, FormatPack}

// CSVColumns is the header of the csv format.
var CSVColumns = []string{
	"canonical_id",
	"entity_id",
	"prop",
	"prop_type",
	"schema",
	"value",
	"dataset",
	"lang",
	"original_value",
	"external",
	"first_seen",
	"last_seen",
	"origin",
	"id",
}

const packColumns = 10

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", errors.NewInvalidArgument("unknown statement format %q", name)
}

// record is the json form of a statement. Absent optional values are null.
type record struct {
	CanonicalID   string  `json:"canonical_id"`
	EntityID      string  `json:"entity_id"`
	Prop          string  `json:"prop"`
	Schema        string  `json:"schema"`
	Value         string  `json:"value"`
	Dataset       string  `json:"dataset"`
	Lang          *string `json:"lang"`
	OriginalValue *string `json:"original_value"`
	FirstSeen     *string `json:"first_seen"`
	LastSeen      *string `json:"last_seen"`
	External      bool    `json:"external"`
	Origin        *string `json:"origin"`
	ID            string  `json:"id"`
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatSeen(epoch int64) string {
	if epoch == 0 {
		return ""
	}
	return model.FormatTimestamp(epoch)
}

func parseSeen(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	return model.ParseTimestamp(value)
}

// MarshalJSON renders the json format of a statement.
func (s *Statement) MarshalJSON() ([]byte, error) {
	return json.Marshal(record{
		CanonicalID:   s.canonicalID,
		EntityID:      s.entityID,
		Prop:          s.prop,
		Schema:        s.schema.Name(),
		Value:         s.value,
		Dataset:       s.dataset,
		Lang:          nullable(s.lang),
		OriginalValue: nullable(s.originalValue),
		FirstSeen:     nullable(formatSeen(s.firstSeen)),
		LastSeen:      nullable(formatSeen(s.lastSeen)),
		External:      s.external,
		Origin:        nullable(s.origin),
		ID:            s.id,
	})
}

func (r record) statement(m *model.Model) (*Statement, error) {
	schema, err := m.GetSchema(r.Schema)
	if err != nil {
		return nil, err
	}
	firstSeen, err := parseSeen(deref(r.FirstSeen))
	if err != nil {
		return nil, err
	}
	lastSeen, err := parseSeen(deref(r.LastSeen))
	if err != nil {
		return nil, err
	}
	return New(Fields{
		ID:            r.ID,
		EntityID:      r.EntityID,
		CanonicalID:   r.CanonicalID,
		Schema:        schema,
		Property:      r.Prop,
		Value:         r.Value,
		Dataset:       r.Dataset,
		Lang:          deref(r.Lang),
		OriginalValue: deref(r.OriginalValue),
		External:      r.External,
		FirstSeen:     firstSeen,
		LastSeen:      lastSeen,
		Origin:        deref(r.Origin),
	})
}

func boolText(value bool) string {
	if value {
		return "t"
	}
	return "f"
}

func textBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "t", "true", "1", "y", "yes", "on":
		return true
	}
	return false
}

// Reader decodes a stream of statements, resolving schema names against a model.
type Reader struct {
	format  Format
	model   *model.Model
	json    *json.Decoder
	csv     *csv.Reader
	columns map[string]int
	line    int
}

// NewReader opens a statement stream. For the csv format the header row is
// read immediately.
func NewReader(r io.Reader, format Format, m *model.Model) (*Reader, error) {
	rd := &Reader{format: format, model: m}
	switch format {
	case FormatJSON:
		rd.json = json.NewDecoder(r)
	case FormatCSV, FormatPack:
		rd.csv = csv.NewReader(r)
		rd.csv.FieldsPerRecord = -1
		rd.csv.ReuseRecord = true
	default:
		return nil, errors.NewInvalidArgument("unknown statement format %q", format)
	}
	if format == FormatCSV {
		header, err := rd.csv.Read()
		if err == io.EOF {
			return rd, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read csv header")
		}
		rd.columns = make(map[string]int, len(header))
		for i, name := range header {
			rd.columns[name] = i
		}
		for _, required := range []string{"entity_id", "prop", "schema", "value", "dataset"} {
			if _, ok := rd.columns[required]; !ok {
				return nil, errors.NewInvalidArgument("csv header is missing column %q", required)
			}
		}
		rd.line = 1
	}
	return rd, nil
}

// Read returns the next statement, or io.EOF at the end of the stream.
func (r *Reader) Read() (*Statement, error) {
	r.line++
	switch r.format {
	case FormatJSON:
		var rec record
		if err := r.json.Decode(&rec); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, errors.Wrapf(err, "failed to decode statement %d", r.line)
		}
		return r.wrap(rec.statement(r.model))
	case FormatCSV:
		if r.columns == nil {
			return nil, io.EOF
		}
		row, err := r.csv.Read()
		if err != nil {
			return nil, r.csvError(err)
		}
		return r.wrap(r.fromCSV(row))
	default:
		row, err := r.csv.Read()
		if err != nil {
			return nil, r.csvError(err)
		}
		return r.wrap(r.fromPack(row))
	}
}

// All reads the remaining statements.
func (r *Reader) All() ([]*Statement, error) {
	var out []*Statement
	for {
		s, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
}

func (r *Reader) wrap(s *Statement, err error) (*Statement, error) {
	if err != nil {
		return nil, errors.Wrapf(err, "statement %d", r.line)
	}
	return s, nil
}

func (r *Reader) csvError(err error) error {
	if err == io.EOF {
		return io.EOF
	}
	return errors.Wrapf(err, "failed to read statement %d", r.line)
}

func (r *Reader) column(row []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (r *Reader) fromCSV(row []string) (*Statement, error) {
	rec := record{
		CanonicalID:   r.column(row, "canonical_id"),
		EntityID:      r.column(row, "entity_id"),
		Prop:          r.column(row, "prop"),
		Schema:        r.column(row, "schema"),
		Value:         r.column(row, "value"),
		Dataset:       r.column(row, "dataset"),
		Lang:          nullable(r.column(row, "lang")),
		OriginalValue: nullable(r.column(row, "original_value")),
		FirstSeen:     nullable(r.column(row, "first_seen")),
		LastSeen:      nullable(r.column(row, "last_seen")),
		External:      textBool(r.column(row, "external")),
		Origin:        nullable(r.column(row, "origin")),
		ID:            r.column(row, "id"),
	}
	return rec.statement(r.model)
}

func (r *Reader) fromPack(row []string) (*Statement, error) {
	if len(row) < packColumns {
		return nil, errors.NewInvalidArgument("pack row has %d columns, expected %d", len(row), packColumns)
	}
	schema, prop, ok := strings.Cut(row[1], ":")
	if !ok {
		return nil, errors.NewInvalidArgument("packed property %q has no schema", row[1])
	}
	rec := record{
		EntityID:      row[0],
		Prop:          prop,
		Schema:        schema,
		Value:         row[2],
		Dataset:       row[3],
		Lang:          nullable(row[4]),
		OriginalValue: nullable(row[5]),
		External:      row[7] == "t",
		FirstSeen:     nullable(row[8]),
		LastSeen:      nullable(row[9]),
	}
	return rec.statement(r.model)
}

// Writer encodes statements in one of the Formats. Call Flush when done.
type Writer struct {
	format Format
	json   *json.Encoder
	csv    *csv.Writer
}

// NewWriter starts a statement stream. The csv header is written immediately.
func NewWriter(w io.Writer, format Format) (*Writer, error) {
	wr := &Writer{format: format}
	switch format {
	case FormatJSON:
		wr.json = json.NewEncoder(w)
		wr.json.SetEscapeHTML(false)
	case FormatCSV:
		wr.csv = csv.NewWriter(w)
		if err := wr.csv.Write(CSVColumns); err != nil {
			return nil, errors.Wrap(err, "failed to write csv header")
		}
	case FormatPack:
		wr.csv = csv.NewWriter(w)
	default:
		return nil, errors.NewInvalidArgument("unknown statement format %q", format)
	}
	return wr, nil
}

// Write encodes one statement.
func (w *Writer) Write(s *Statement) error {
	switch w.format {
	case FormatJSON:
		return errors.Wrap(w.json.Encode(s), "failed to write statement")
	case FormatCSV:
		row := []string{
			s.canonicalID,
			s.entityID,
			s.prop,
			s.PropType(),
			s.schema.Name(),
			s.value,
			s.dataset,
			s.lang,
			s.originalValue,
			boolText(s.external),
			formatSeen(s.firstSeen),
			formatSeen(s.lastSeen),
			s.origin,
			s.id,
		}
		return errors.Wrap(w.csv.Write(row), "failed to write statement")
	default:
		external := ""
		if s.external {
			external = "t"
		}
		row := []string{
			s.entityID,
			s.schema.Name() + ":" + s.prop,
			s.value,
			s.dataset,
			s.lang,
			s.originalValue,
			"",
			external,
			formatSeen(s.firstSeen),
			formatSeen(s.lastSeen),
		}
		return errors.Wrap(w.csv.Write(row), "failed to write statement")
	}
}

// Flush writes any buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	if w.csv == nil {
		return nil
	}
	w.csv.Flush()
	return w.csv.Error()
}
