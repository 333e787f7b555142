package postag

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TaggedWord is one training observation
type TaggedWord struct {
	Word string
	Tag  Tag
}

// Sentence is a training sequence
type Sentence []TaggedWord

// ParseCorpus reads a tagged corpus: one sentence per line, tokens separated
// by spaces, each token written word/TAG. The word may itself contain '/';
// the tag follows the last one. Blank lines and lines starting with '#' are
// skipped.
func ParseCorpus(r io.Reader) ([]Sentence, error) {
	var out []Sentence
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		sent := make(Sentence, 0, len(fields))
		for _, f := range fields {
			slash := strings.LastIndexByte(f, '/')
			if slash <= 0 || slash == len(f)-1 {
				return nil, fmt.Errorf("line %d: malformed token %q", lineNo, f)
			}
			tag, err := ParseTag(f[slash+1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			sent = append(sent, TaggedWord{Word: f[:slash], Tag: tag})
		}
		out = append(out, sent)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
