package card

import (
	"github.com/leapstack-labs/cardfile/pkg/schema"
	"github.com/leapstack-labs/cardfile/pkg/value"
)

// WordList is a named drop-down list of words offered while editing text.
type WordList struct {
	Name  string
	Words []value.Owned[*Word]
}

func (*WordList) TypeName() string { return "word_list" }

// Clone returns a deep copy of the list.
func (l *WordList) Clone() *WordList {
	return &WordList{Name: l.Name, Words: cloneWords(l.Words)}
}

// Word is an entry of a WordList. A word with sub words opens a submenu.
type Word struct {
	Name      string
	LineBelow bool
	IsPrefix  bool
	// Script generates words at runtime instead of Name.
	Script string
	Words  []value.Owned[*Word]
}

func (*Word) TypeName() string { return "word" }

// Clone returns a deep copy of the word and its sub words.
func (w *Word) Clone() *Word {
	c := *w
	c.Words = cloneWords(w.Words)
	return &c
}

func cloneWords(words []value.Owned[*Word]) []value.Owned[*Word] {
	if words == nil {
		return nil
	}
	out := make([]value.Owned[*Word], len(words))
	for i, w := range words {
		out[i] = w.Clone()
	}
	return out
}

var wordListType = schema.Declare[WordList]("word_list").
	Fields(
		schema.Field("name", func(l *WordList) *string { return &l.Name }, schema.String),
		schema.Field("words", func(l *WordList) *[]value.Owned[*Word] { return &l.Words }, schema.List(schema.OwnedOf[*Word]())),
	).
	Build()

var wordType = schema.Declare[Word]("word").
	Fields(
		schema.Field("name", func(w *Word) *string { return &w.Name }, schema.String),
		schema.Field("line_below", func(w *Word) *bool { return &w.LineBelow }, schema.Bool),
		schema.Field("is_prefix", func(w *Word) *bool { return &w.IsPrefix }, schema.Bool),
		schema.Field("script", func(w *Word) *string { return &w.Script }, schema.String),
		schema.Field("words", func(w *Word) *[]value.Owned[*Word] { return &w.Words }, schema.List(schema.OwnedOf[*Word]())),
	).
	Build()
