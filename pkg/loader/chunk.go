package loader

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkoukk/tiktoken-go"

	"graphrag/pkg/common"
)

// DefaultEncoding is the tokenizer used for sizing chunks.
const DefaultEncoding = "cl100k_base"

// DefaultMaxTokens bounds a chunk when the file does not set its own
// limit.
const DefaultMaxTokens = 400

type tokenEncoder interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
}

// Chunker splits document text into sentence-aligned chunks bounded by a
// token budget. Sentences are packed greedily; a single sentence longer
// than the budget becomes its own chunk rather than being cut mid-word.
type Chunker struct {
	enc       tokenEncoder
	maxTokens int
}

// NewChunker creates a Chunker for the given tiktoken encoding name.
func NewChunker(encoding string, maxTokens int) (*Chunker, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Chunker{enc: enc, maxTokens: maxTokens}, nil
}

// ChunkFile loads the file's text and chunks it, tagging every chunk with
// the file id as its source.
func (c *Chunker) ChunkFile(ctx context.Context, file File) ([]common.DocumentChunk, error) {
	textBytes, err := file.GetText(ctx)
	if err != nil {
		return nil, err
	}

	maxTokens := file.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	return c.chunk(file.ID, string(textBytes), maxTokens)
}

// Chunk splits raw text under the chunker's default token budget.
func (c *Chunker) Chunk(source, text string) ([]common.DocumentChunk, error) {
	return c.chunk(source, text, c.maxTokens)
}

func (c *Chunker) chunk(source, text string, maxTokens int) ([]common.DocumentChunk, error) {
	sentences := splitIntoSentences(text)
	if len(sentences) == 0 {
		return nil, nil
	}

	var chunks []common.DocumentChunk
	var current []string
	currentTokens := 0

	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		chunkID, err := gonanoid.New()
		if err != nil {
			return err
		}
		chunks = append(chunks, common.DocumentChunk{
			Text: strings.Join(current, " "),
			Metadata: map[string]string{
				"source":   source,
				"chunk_id": chunkID,
				"index":    strconv.Itoa(len(chunks)),
			},
		})
		current = nil
		currentTokens = 0
		return nil
	}

	for _, sentence := range sentences {
		sentenceTokens := len(c.enc.Encode(sentence, nil, nil))

		if currentTokens+sentenceTokens > maxTokens && len(current) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}

		current = append(current, sentence)
		currentTokens += sentenceTokens
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return chunks, nil
}

// splitIntoSentences breaks text into sentences, treating blank lines as
// hard boundaries so headings and list items stay separate units.
func splitIntoSentences(text string) []string {
	lines := strings.Split(text, "\n")
	var sentences []string
	var current strings.Builder

	flushCurrent := func() {
		if current.Len() > 0 {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flushCurrent()
			continue
		}

		for _, sentence := range splitLineIntoSentences(trimmed) {
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(sentence)

			if endsSentence(sentence) {
				flushCurrent()
			}
		}
	}
	flushCurrent()

	var result []string
	for _, sentence := range sentences {
		if strings.TrimSpace(sentence) != "" {
			result = append(result, sentence)
		}
	}
	return result
}

func endsSentence(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// splitLineIntoSentences splits a single line on terminal punctuation,
// keeping trailing quotes and brackets with their sentence and leaving
// numeric listings like "1. item" intact.
func splitLineIntoSentences(line string) []string {
	var sentences []string
	var current strings.Builder

	for i := 0; i < len(line); i++ {
		current.WriteByte(line[i])

		if line[i] != '.' && line[i] != '!' && line[i] != '?' {
			continue
		}

		if i > 0 && unicode.IsDigit(rune(line[i-1])) && i+1 < len(line) && line[i+1] == ' ' {
			continue
		}

		j := i + 1
		for j < len(line) && (line[j] == '.' || line[j] == '!' || line[j] == '?') {
			current.WriteByte(line[j])
			j++
		}
		for j < len(line) && (line[j] == '"' || line[j] == '\'' || line[j] == ')' ||
			line[j] == ']' || line[j] == '}') {
			current.WriteByte(line[j])
			j++
		}

		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
		i = j - 1
	}

	remaining := strings.TrimSpace(current.String())
	if remaining != "" {
		sentences = append(sentences, remaining)
	}

	return sentences
}
