package model

// Annotation is a side note attached to a half-open character range of the document.
// Offsets count characters (runes), not bytes.
type Annotation struct {
	ID    string `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Note  string `json:"note"`
}

// Len returns the number of characters covered by the annotation
func (a Annotation) Len() int {
	if a.End < a.Start {
		return 0
	}
	return a.End - a.Start
}

// StoredState is the durable snapshot of a document and its annotations
type StoredState struct {
	Text        string       `json:"text"`
	Annotations []Annotation `json:"annotations"`
}
