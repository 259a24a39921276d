package config

import (
	"errors"
	"fmt"

	"github.com/dshills/gridedit/internal/config/loader"
)

// Errors returned by configuration operations.
var (
	// ErrFileNotFound indicates a required file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrInvalidSetting indicates a setting with an unusable value.
	ErrInvalidSetting = errors.New("invalid setting")

	// ErrInvalidDataset indicates a dataset file that can't be turned into
	// columns and records.
	ErrInvalidDataset = errors.New("invalid dataset")
)

// ParseError represents an error while parsing a configuration file.
type ParseError = loader.ParseError

// SettingError describes a setting that failed validation.
type SettingError struct {
	// Path is the dotted setting path, such as "grid.maxColumnWidth".
	Path string
	// Value is the rejected value.
	Value any
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *SettingError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is matches ErrInvalidSetting.
func (e *SettingError) Is(target error) bool {
	return target == ErrInvalidSetting
}
