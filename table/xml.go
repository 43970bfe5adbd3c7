package table

import (
	"encoding/base64"
	"encoding/xml"
	"io"
	"unicode/utf8"

	"github.com/ovlad32/colstore/storage"
	"github.com/pkg/errors"
)

type xmlTable struct {
	XMLName xml.Name    `xml:"Table"`
	Name    string      `xml:"name,attr"`
	Columns []xmlColumn `xml:"Columns>Column"`
	Rows    []xmlRow    `xml:"Row"`
}

type xmlColumn struct {
	Name string `xml:"name,attr"`
	Kind string `xml:"kind,attr"`
}

type xmlRow struct {
	Values []xmlValue `xml:"Value"`
}

type xmlValue struct {
	Column   string `xml:"column,attr"`
	Encoding string `xml:"encoding,attr,omitempty"`
	Text     string `xml:",chardata"`
}

const base64Encoding = "base64"

// isXMLText reports whether every rune of s is in the XML Char production.
// encoding/xml writes U+FFFD for anything else.
func isXMLText(s string) bool {
	for i, r := range s {
		switch {
		case r == utf8.RuneError:
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return false
			}
		case r == 0x09 || r == 0x0A || r == 0x0D:
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}
	return true
}

func newXMLValue(column, text string) xmlValue {
	if isXMLText(text) {
		return xmlValue{Column: column, Text: text}
	}
	return xmlValue{
		Column:   column,
		Encoding: base64Encoding,
		Text:     base64.StdEncoding.EncodeToString([]byte(text)),
	}
}

func (v xmlValue) text() (string, error) {
	switch v.Encoding {
	case "":
		return v.Text, nil
	case base64Encoding:
		b, err := base64.StdEncoding.DecodeString(v.Text)
		if err != nil {
			return "", errors.Wrapf(storage.ErrConversion, "column %q: %v", v.Column, err)
		}
		return string(b), nil
	}
	return "", errors.Wrapf(storage.ErrConversion, "column %q: unknown encoding %q", v.Column, v.Encoding)
}

// WriteXML writes the table as a document with a column header and one
// Row element per row. Null values are omitted. A value holding characters
// XML cannot carry is written base64 encoded with encoding="base64".
func (t *Table) WriteXML(w io.Writer) error {
	doc := xmlTable{Name: t.name}
	for _, c := range t.columns {
		doc.Columns = append(doc.Columns, xmlColumn{Name: c.name, Kind: c.Kind().String()})
	}
	doc.Rows = make([]xmlRow, t.rowCount)
	for row := 0; row < t.rowCount; row++ {
		for _, c := range t.columns {
			if c.store.IsNull(row) {
				continue
			}
			text, err := c.store.ConvertObjectToXml(c.store.Get(row))
			if err != nil {
				return errors.Wrapf(err, "table %v: column %q row %v", t.name, c.name, row)
			}
			doc.Rows[row].Values = append(doc.Rows[row].Values, newXMLValue(c.name, text))
		}
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.WithStack(err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrapf(err, "table %v: encoding xml", t.name)
	}
	return errors.WithStack(enc.Flush())
}

// ReadXML builds a table from a document written by WriteXML.
func ReadXML(r io.Reader, opts ...Option) (*Table, error) {
	var doc xmlTable
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding table xml")
	}
	t := New(doc.Name, opts...)
	for _, c := range doc.Columns {
		kind, err := storage.ParseKind(c.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "table %v: column %q", doc.Name, c.Name)
		}
		if _, err = t.AddColumn(c.Name, kind); err != nil {
			return nil, err
		}
	}
	for i, row := range doc.Rows {
		values := make([]interface{}, len(t.columns))
		for _, v := range row.Values {
			c, err := t.Column(v.Column)
			if err != nil {
				return nil, errors.Wrapf(err, "row %v", i)
			}
			text, err := v.text()
			if err != nil {
				return nil, errors.Wrapf(err, "table %v: row %v", t.name, i)
			}
			if values[c.ordinal], err = c.store.ConvertXmlToObject(text); err != nil {
				return nil, errors.Wrapf(err, "table %v: column %q row %v", t.name, c.name, i)
			}
		}
		if _, err := t.NewRow(values...); err != nil {
			return nil, err
		}
	}
	logger.Debugf("table %v: read %v rows of %v columns from xml", t.name, t.rowCount, len(t.columns))
	return t, nil
}
