package models

import (
	"errors"
	"fmt"
	"strings"
)

// Stage identifies where a ConversionError originated.
type Stage string

const (
	StageParse      Stage = "parse"
	StageConfig     Stage = "config"
	StageTransform  Stage = "transform"
	StageFilesystem Stage = "filesystem"
	StageImage      Stage = "image"
)

// ConversionError is the single error kind raised by conversion stages.
type ConversionError struct {
	Stage  Stage
	PostID string
	Field  string
	Msg    string
	Err    error
}

func (e *ConversionError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Stage))
	if e.PostID != "" {
		fmt.Fprintf(&b, " [post %s]", e.PostID)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " [field %s]", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NewError builds a ConversionError for stage.
func NewError(stage Stage, msg string, err error) *ConversionError {
	return &ConversionError{Stage: stage, Msg: msg, Err: err}
}

// IsStage reports whether err is a ConversionError raised in stage.
func IsStage(err error, stage Stage) bool {
	var ce *ConversionError
	return errors.As(err, &ce) && ce.Stage == stage
}
