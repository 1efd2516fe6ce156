package document

// Mode selects how a document is segmented.
type Mode string

const (
	// ModeFlat splits the whole text into fixed-size windows with no
	// semantic awareness.
	ModeFlat Mode = "flat"
	// ModeStructured partitions the text by section headings, keeps only
	// sections relevant to the target schema, and windows each section.
	ModeStructured Mode = "structured"
)

// Segmenter produces the corpus for one document in a given mode.
type Segmenter struct {
	flat       Splitter
	structured *SectionSplitter
}

func NewSegmenter(flat Splitter, structured *SectionSplitter) *Segmenter {
	return &Segmenter{
		flat:       flat,
		structured: structured,
	}
}

// Segment returns the ordered corpus for doc. Structured mode falls back
// to flat windowing over the whole document when no allow-listed section
// is found; extraction never operates on an empty corpus.
func (s *Segmenter) Segment(doc Document, mode Mode) (Corpus, error) {
	if doc.Text == "" {
		return nil, ErrEmptyDocument("segment")
	}

	switch mode {
	case ModeFlat:
		segments, err := s.flat.Split(doc.Text)
		if err != nil {
			return nil, err
		}
		return Corpus(segments), nil

	case ModeStructured:
		segments, err := s.structured.Split(doc.Text)
		if err != nil {
			return nil, err
		}
		if len(segments) == 0 {
			flat, err := s.flat.Split(doc.Text)
			if err != nil {
				return nil, err
			}
			return Corpus(flat), nil
		}
		return Corpus(segments), nil

	default:
		return nil, &IngestionError{
			Op:      "segment",
			Message: "unknown segmentation mode: " + string(mode),
		}
	}
}
