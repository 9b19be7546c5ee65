package keyvalues

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/beevik/etree"
	"github.com/gocarina/gocsv"
)

// XMLLoader reads and writes property lists in the XML layout used by
// Java's Properties class:
//
//	<properties>
//	  <entry key="name">value</entry>
//	</properties>
type XMLLoader struct{}

// Load replaces the content of target, which must be a *Table.
func (XMLLoader) Load(_ context.Context, target any, r io.Reader) error {
	t, err := table(target)
	if err != nil {
		return err
	}
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return fmt.Errorf("keyvalues: invalid XML: %w", err)
	}
	root := doc.SelectElement("properties")
	if root == nil {
		return errors.New("keyvalues: missing <properties> root element")
	}
	entries := make(map[string]string)
	for i, e := range root.SelectElements("entry") {
		key := e.SelectAttrValue("key", "")
		if key == "" {
			return fmt.Errorf("keyvalues: <entry> %d has no key", i+1)
		}
		entries[key] = e.Text()
	}
	t.Replace(entries)
	return nil
}

// Save writes target as an XML property list with sorted keys.
func (XMLLoader) Save(_ context.Context, target any, w io.Writer) error {
	t, err := table(target)
	if err != nil {
		return err
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("properties")
	entries := t.Entries()
	var keys []string
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		e := root.CreateElement("entry")
		e.CreateAttr("key", k)
		e.SetText(entries[k])
	}
	doc.Indent(2)
	_, err = doc.WriteTo(w)
	return err
}

type csvRow struct {
	Key   string `csv:"key"`
	Value string `csv:"value"`
}

// CSVLoader reads and writes two column CSV files with a `key,value`
// header row.
type CSVLoader struct{}

// Load replaces the content of target, which must be a *Table.
func (CSVLoader) Load(_ context.Context, target any, r io.Reader) error {
	t, err := table(target)
	if err != nil {
		return err
	}
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return fmt.Errorf("keyvalues: invalid CSV: %w", err)
	}
	entries := make(map[string]string, len(rows))
	for i, row := range rows {
		if row.Key == "" {
			return fmt.Errorf("keyvalues: CSV row %d has an empty key", i+2)
		}
		entries[row.Key] = row.Value
	}
	t.Replace(entries)
	return nil
}

// Save writes target as CSV rows sorted by key.
func (CSVLoader) Save(_ context.Context, target any, w io.Writer) error {
	t, err := table(target)
	if err != nil {
		return err
	}
	entries := t.Entries()
	rows := make([]*csvRow, 0, len(entries))
	var keys []string
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		rows = append(rows, &csvRow{Key: k, Value: entries[k]})
	}
	return gocsv.Marshal(rows, w)
}
