package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in PDF")
	ErrEmptyInput        = errors.New("input is empty")
)
