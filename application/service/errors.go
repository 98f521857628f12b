package service

import (
	"errors"
	"fmt"

	"github.com/samber/oops"

	"github.com/helixml/moviesearch/domain/search"
	domainservice "github.com/helixml/moviesearch/domain/service"
	"github.com/helixml/moviesearch/internal/database"
)

// Code is the machine-readable identifier attached to application errors.
type Code string

// Error codes, one per failure class.
const (
	CodeStoreConnect   Code = "store.connect"
	CodeEmbeddingModel Code = "embedding.model"
	CodeStoreWrite     Code = "store.write"
	CodeDatasetRead    Code = "dataset.read"
)

// Failure classes. Each is fatal to the operation that hit it.
var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrModel            = errors.New("embedding model failure")
	ErrWrite            = errors.New("store write failed")
	ErrDataset          = errors.New("dataset read failed")
	ErrClientClosed     = errors.New("moviesearch: client is closed")
)

// Validation errors re-exported so callers need only this package.
var (
	ErrEmptyText         = domainservice.ErrEmptyText
	ErrInvalidLimit      = domainservice.ErrInvalidLimit
	ErrDimensionMismatch = search.ErrDimensionMismatch
	ErrInvalidBlob       = database.ErrInvalidBlob
)

var sentinels = map[Code]error{
	CodeStoreConnect:   ErrStoreUnavailable,
	CodeEmbeddingModel: ErrModel,
	CodeStoreWrite:     ErrWrite,
	CodeDatasetRead:    ErrDataset,
}

// Wrapf attaches code and its sentinel to err. Nil stays nil.
func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if sentinel, ok := sentinels[code]; ok && !errors.Is(err, sentinel) {
		err = fmt.Errorf("%w: %w", sentinel, err)
	}
	return oops.Code(code).Wrapf(err, format, args...)
}

// CodeOf returns the application code carried by err, or "".
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	switch c := oopsErr.Code().(type) {
	case Code:
		return c
	case string:
		return Code(c)
	case nil:
		return ""
	default:
		return Code(fmt.Sprintf("%v", c))
	}
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
