// Package logger re-exports wellread/pkg/logger so internal packages share a
// single import path for logging.
package logger

import (
	pkglogger "wellread/pkg/logger"
)

type (
	Logger = pkglogger.Logger
	Config = pkglogger.Config
	Format = pkglogger.Format
)

const (
	DefaultTraceIDKey = pkglogger.DefaultTraceIDKey
	FormatJSON        = pkglogger.FormatJSON
	FormatText        = pkglogger.FormatText
)

var (
	New                = pkglogger.New
	NewWithConfig      = pkglogger.NewWithConfig
	ContextWithTraceID = pkglogger.ContextWithTraceID
	TraceIDFromContext = pkglogger.TraceIDFromContext
)
