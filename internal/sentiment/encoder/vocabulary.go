package encoder

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/wonny/stogger/internal/contracts"
)

// Sentinel entries every word index must carry
const (
	PadToken     = "<PAD>"
	UnknownToken = "<UNK>"
	StartToken   = "<START>"

	DefaultStartIndex = 1
	DefaultMaxLen     = 100
)

var stripped = strings.NewReplacer(".", "", ",", "", ":", "")

// Vocabulary maps lower-cased words to the integer ids the classifier was trained on.
// It is read-only after construction and shared across runs.
type Vocabulary struct {
	tokenToIndex map[string]int
	PadIndex     int
	UnknownIndex int
	StartIndex   int
	MaxLen       int
}

// LoadVocabulary reads a JSON word index ({"word": id, ...}) from disk
func LoadVocabulary(path string, maxLen int) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &contracts.EncodingError{Reason: "open vocabulary", Err: err}
	}
	defer f.Close()

	return ParseVocabulary(f, maxLen)
}

// ParseVocabulary decodes a JSON word index
func ParseVocabulary(r io.Reader, maxLen int) (*Vocabulary, error) {
	var index map[string]int
	if err := json.NewDecoder(r).Decode(&index); err != nil {
		return nil, &contracts.EncodingError{Reason: "decode vocabulary", Err: err}
	}
	return NewVocabulary(index, maxLen)
}

// NewVocabulary validates the sentinels and fixes the sequence length
func NewVocabulary(index map[string]int, maxLen int) (*Vocabulary, error) {
	pad, ok := index[PadToken]
	if !ok {
		return nil, &contracts.EncodingError{Reason: "vocabulary has no " + PadToken + " entry"}
	}
	unk, ok := index[UnknownToken]
	if !ok {
		return nil, &contracts.EncodingError{Reason: "vocabulary has no " + UnknownToken + " entry"}
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	start := DefaultStartIndex
	if s, ok := index[StartToken]; ok {
		start = s
	}

	return &Vocabulary{
		tokenToIndex: index,
		PadIndex:     pad,
		UnknownIndex: unk,
		StartIndex:   start,
		MaxLen:       maxLen,
	}, nil
}

// Size returns the number of entries including sentinels
func (v *Vocabulary) Size() int {
	return len(v.tokenToIndex)
}

// Lookup returns the id for a word, or the unknown id
func (v *Vocabulary) Lookup(word string) int {
	if id, ok := v.tokenToIndex[strings.ToLower(word)]; ok {
		return id
	}
	return v.UnknownIndex
}

// Encode turns a title into a fixed-length id sequence.
// Only '.', ',' and ':' are removed before splitting; the sequence is
// start-prefixed, then padded or truncated at the end.
func (v *Vocabulary) Encode(title string) ([]int, error) {
	if v == nil || v.tokenToIndex == nil || v.MaxLen <= 0 {
		return nil, &contracts.EncodingError{Reason: "vocabulary is not initialised"}
	}

	words := strings.Fields(stripped.Replace(title))

	seq := make([]int, 0, v.MaxLen)
	seq = append(seq, v.StartIndex)
	for _, w := range words {
		if len(seq) == v.MaxLen {
			break
		}
		seq = append(seq, v.Lookup(w))
	}
	for len(seq) < v.MaxLen {
		seq = append(seq, v.PadIndex)
	}

	return seq, nil
}
