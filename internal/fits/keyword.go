package fits

import "fmt"

// Keyword is one non-mandatory header record, in file order.
//
// The set of implementations is closed: Value, History, Comment and
// Continue. Consumers should switch over all four; Row is the reference
// exhaustive consumer.
type Keyword interface {
	// keyword is a private method to restrict implementers
	keyword()
}

// Value is a named metadata entry ("KEY = value / comment").
type Value struct {
	Key     string
	Value   string
	Comment string
}

// History is a free-text provenance line.
type History struct {
	Text string
}

// Comment is a free-text annotation line (COMMENT or blank keyword).
type Comment struct {
	Text string
}

// Continue carries the continuation of a prior long string value.
type Continue struct {
	Key     string
	Value   string
	Comment string
}

func (Value) keyword()    {}
func (History) keyword()  {}
func (Comment) keyword()  {}
func (Continue) keyword() {}

// Names used for commentary rows.
const (
	NameHistory  = "HISTORY"
	NameComment  = "COMMENT"
	NameContinue = "CONTINUE"
)

// Row flattens a keyword into the (name, value, comment) triple shown in a
// keyword table. History and Comment rows have no comment.
func Row(kw Keyword) (name, value, comment string) {
	switch k := kw.(type) {
	case Value:
		return k.Key, k.Value, k.Comment
	case Continue:
		return k.Key, k.Value, k.Comment
	case History:
		return NameHistory, k.Text, ""
	case Comment:
		return NameComment, k.Text, ""
	default:
		panic(fmt.Sprintf("fits: unknown keyword type %T", kw))
	}
}

// Kind returns a short lowercase tag for the keyword variant.
func Kind(kw Keyword) string {
	switch kw.(type) {
	case Value:
		return "value"
	case Continue:
		return "continue"
	case History:
		return "history"
	case Comment:
		return "comment"
	default:
		panic(fmt.Sprintf("fits: unknown keyword type %T", kw))
	}
}
