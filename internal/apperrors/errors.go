package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPriceNotFound indicates no close price exists for a ticker/date combination.
	ErrPriceNotFound = errors.New("price not found")

	// ErrTickerMappingNotFound indicates that a fund name has no ticker mapping.
	ErrTickerMappingNotFound = errors.New("ticker mapping not found")

	// ErrAnalysisNotFound indicates that no analysis run has been performed yet.
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// Structural errors indicate the engine cannot establish baseline truth.
// These are the only errors considered fatal by the top-level analysis:
// everything else degrades confidence and annotates instead of aborting.
var (
	// ErrSnapshotUnreadable indicates the current-holdings snapshot file
	// could not be read or parsed.
	ErrSnapshotUnreadable = errors.New("holdings snapshot unreadable")

	// ErrLedgerUnavailable indicates the transaction ledger could not be queried.
	ErrLedgerUnavailable = errors.New("transaction ledger unavailable")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrAnalysisRunning indicates an analysis run is already in progress.
	ErrAnalysisRunning = errors.New("analysis already running")
)
