package chunker

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// TokenCounter estimates prompt tokens for a piece of text.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter loads the BPE encoding on first use and falls back to a
// word count when it cannot be loaded.
type TiktokenCounter struct {
	encoding string
	once     sync.Once
	tke      *tiktoken.Tiktoken
	logger   *slog.Logger
}

// NewTiktokenCounter constructs a counter for the named encoding.
func NewTiktokenCounter(encoding string, logger *slog.Logger) *TiktokenCounter {
	if encoding == "" {
		encoding = defaultEncoding
	}
	return &TiktokenCounter{encoding: encoding, logger: logger}
}

// Count returns the number of tokens in text.
func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.once.Do(c.load)
	if c.tke == nil {
		return WordCount(text)
	}
	return len(c.tke.Encode(text, nil, nil))
}

func (c *TiktokenCounter) load() {
	tke, err := tiktoken.GetEncoding(c.encoding)
	if err != nil {
		c.logger.Warn("tiktoken encoding unavailable, counting words instead", "encoding", c.encoding, "error", err)
		return
	}
	c.tke = tke
}

// WordCount approximates tokens by whitespace separated fields.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// WordCounter counts whitespace separated fields.
type WordCounter struct{}

// Count implements TokenCounter.
func (WordCounter) Count(text string) int { return WordCount(text) }
