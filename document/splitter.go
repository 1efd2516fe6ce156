package document

// Splitter interface defines methods for splitting text into segments
type Splitter interface {
	Split(text string) ([]Segment, error)
}

// SplitDocument splits a document's text using a splitter. The returned
// segments carry byte offsets into the document text.
func SplitDocument(splitter Splitter, doc Document) (Corpus, error) {
	if doc.Text == "" {
		return nil, ErrEmptyDocument("split_document")
	}

	segments, err := splitter.Split(doc.Text)
	if err != nil {
		return nil, err
	}

	return Corpus(segments), nil
}
