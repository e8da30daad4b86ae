package domain

import "fmt"

// DecodeErrorKind classifies failures while decoding a Mutation::*
// characteristic.
type DecodeErrorKind string

const (
	DecodeUnknownPolicy   DecodeErrorKind = "unknown_policy"
	DecodeMissingBound    DecodeErrorKind = "missing_bound"
	DecodeMalformedDomain DecodeErrorKind = "malformed_domain"
)

// DecodeError reports a malformed mutation characteristic. A decode error is
// local to one characteristic: the rule is skipped, other services are
// unaffected.
type DecodeError struct {
	Kind           DecodeErrorKind
	Characteristic string
	Detail         string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("decode %s: %s", e.Characteristic, e.Kind)
	}
	return fmt.Sprintf("decode %s: %s: %s", e.Characteristic, e.Kind, e.Detail)
}

// SyncErrorKind classifies Catalog synchronization failures.
type SyncErrorKind string

const (
	SyncUnreachable SyncErrorKind = "unreachable"
	SyncRejected    SyncErrorKind = "rejected"
)

// SyncError reports a failed characteristic push or lookup against the
// Catalog.
type SyncError struct {
	Kind SyncErrorKind
	Op   string
	Err  error
}

func (e *SyncError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("catalog %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("catalog %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// MatchError reports that no service instance matches a platform id.
type MatchError struct {
	CPE string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("no service instance matches platform id %q", e.CPE)
}

// TranslationErrorKind classifies security-policy translation failures.
type TranslationErrorKind string

const (
	TranslationUnsupportedCategory TranslationErrorKind = "unsupported_category"
	TranslationMalformedPolicy     TranslationErrorKind = "malformed_policy"
)

// TranslationError rejects a single policy document. No partial
// configuration is ever pushed on a translation error.
type TranslationError struct {
	Kind     TranslationErrorKind
	Category string
	Detail   string
}

func (e *TranslationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("policy translation (%s): %s", e.Category, e.Kind)
	}
	return fmt.Sprintf("policy translation (%s): %s: %s", e.Category, e.Kind, e.Detail)
}
