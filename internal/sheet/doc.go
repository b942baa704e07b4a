// Package sheet reads spreadsheet uploads into sheets of ordered rows.
//
// The first row of every sheet is the header row. Each following row becomes
// a Row keyed by header name, in column order, with every cell already
// converted to a cell.Value. Rows whose cells are all empty are dropped.
package sheet
