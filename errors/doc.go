// Package errors provides standardized error handling patterns for convertd.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary), Invalid (bad input, non-retryable), and Fatal
// (unrecoverable, stop processing).
//
// Classification drives the HTTP boundary: the conversion gateway maps
// Invalid errors to client-error statuses and Fatal errors to server-error
// statuses without matching on error strings.
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")
//	errors.WrapInvalid(err, "Component", "Method", "action")
//	errors.WrapFatal(err, "Component", "Method", "action")
//
// The generic Wrap() function adds context without forcing a class:
//
//	errors.Wrap(err, "Component", "Method", "action")
//
// # Standard Error Variables
//
// Pre-defined error variables cover the common conditions: conversion
// failures (ErrUnknownFormat, ErrParseFailed, ErrEncodeFailed), registry
// misconfiguration (ErrDuplicateFormat), configuration problems
// (ErrInvalidConfig, ErrMissingConfig), and server lifecycle states
// (ErrAlreadyStarted, ErrNotStarted, ErrShuttingDown).
//
// Configuration and registry errors are fatal at startup: a process that
// fails to build its codec registry never begins serving.
package errors
