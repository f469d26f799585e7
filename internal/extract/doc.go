// Package extract turns listing rows into records.
//
// The Extractor is a pure function of a row tree and a schema variant: it
// keeps no state between calls and never touches the document provider.
// Rows that cannot yield a record are reported with ErrRowSkipped (header,
// footer and advertisement rows) or a *RowParseError (malformed input).
//
// # Cell encodings
//
// Quota-like cells multiplex several admission categories into one cell as
// colored spans:
//
//	<font color="red">8(6+0+1+0+1)</font><font color="blue">2</font>
//
// Slots are read in the variant's color order and always padded to the
// variant's slot count, so slot position keeps its meaning even when a
// category is missing.
//
// Qualifiers are packed into one marker-colored span as "(a)(b)(c)".
//
// # Usage
//
//	ex := extract.New(model.ScoreTypeSAY)
//	rec, err := ex.Extract(rowNode)
//	if errors.Is(err, extract.ErrRowSkipped) {
//	    // not a program row
//	}
package extract
