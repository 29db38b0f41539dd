package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type journalMode int

const (
	journalBestEffort journalMode = iota
	journalOff
	journalRequired
)

type application struct {
	config    *Config
	logOutput io.Writer
	journal   journalMode
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput sets where structured logs are written. Defaults to stderr so
// that stdout carries only command output.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithoutJournal skips opening the journal, for commands that never record.
func WithoutJournal() Option {
	return func(a *application) {
		a.journal = journalOff
	}
}

// WithJournalRequired makes Open fail when the journal cannot be opened,
// for commands that read it.
func WithJournalRequired() Option {
	return func(a *application) {
		a.journal = journalRequired
	}
}
