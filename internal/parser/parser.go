package parser

import (
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/mcncl/jsonedit/internal/errors" // Custom errors package
	"github.com/mcncl/jsonedit/internal/log"
	"github.com/mcncl/jsonedit/internal/models"
)

var parserPool fastjson.ParserPool

// Load parses the document buffer into a Value. The whole text must be a
// single valid JSON value; there is no partial recovery.
func Load(text string) (*models.Value, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewInputError("document is empty", errors.ErrEmptyInput)
	}

	// Validate is stricter than Parse about string escapes.
	if err := fastjson.Validate(text); err != nil {
		return nil, errors.NewParsingError(
			fmt.Sprintf("invalid JSON: %v", err),
			errors.ErrInvalidJSON,
		)
	}

	p := parserPool.Get()
	defer parserPool.Put(p)

	parsed, err := p.Parse(text)
	if err != nil {
		return nil, errors.NewParsingError(
			fmt.Sprintf("invalid JSON: %v", err),
			errors.ErrInvalidJSON,
		)
	}

	// The result must be converted before p goes back to the pool.
	doc, err := models.FromFastjson(parsed)
	if err != nil {
		return nil, errors.NewParsingError(
			fmt.Sprintf("unsupported JSON value: %v", err),
			errors.ErrInvalidJSON,
		)
	}
	return doc, nil
}

// Parse reads a whole document from reader and loads it.
func Parse(reader io.Reader) (*models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read input", err)
	}
	return Load(string(data))
}

// ParseFile loads a document from a file path
func ParseFile(filePath string) (*models.Value, error) {
	text, err := ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return Load(text)
}

// ReadFile returns the text of the document at filePath without loading it.
func ReadFile(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		// Check if the file doesn't exist
		if stderrors.Is(err, os.ErrNotExist) {
			return "", errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return "", errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Named("parser").Warnf("error closing file %s: %v", filePath, err)
		}
	}()

	// Check for empty file before reading
	stat, err := file.Stat()
	if err != nil {
		return "", errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return "", errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", errors.NewInputError(fmt.Sprintf("failed to read file '%s'", filePath), err)
	}
	return string(data), nil
}
