package dbmove

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/arikos/dbmove/dialect"
)

// Executor is the interface both *sql.DB and *sql.Tx satisfy. Native
// migrations receive one of these bound to whatever is currently active
// (the run's transaction), so a migration's apply routine cannot tell
// whether it was handed a bare connection or a transaction — it always
// gets a transaction in practice, since the Processor always begins one
// before invoking a job.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// goBatchSeparator matches a line containing only the SQL Server batch
// separator "GO", case-insensitive, with optional surrounding whitespace.
var goBatchSeparator = regexp.MustCompile(`(?im)^[ \t]*GO[ \t]*$`)

// Processor owns the single logical connection and transaction for a run.
// Nesting is not supported: Begin must be followed by Commit or Rollback
// before Begin is called again.
type Processor struct {
	db      *sql.DB
	dialect dialect.Dialect
	tx      *sql.Tx
}

// NewProcessor returns a Processor bound to db. d is consulted only to
// decide whether script text needs batch-separator splitting before
// submission.
func NewProcessor(db *sql.DB, d dialect.Dialect) *Processor {
	return &Processor{db: db, dialect: d}
}

// Begin starts the run's single-level transaction.
func (p *Processor) Begin(ctx context.Context) error {
	if p.tx != nil {
		return fmt.Errorf("processor: transaction already open")
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	p.tx = tx
	return nil
}

// Commit commits the active transaction.
func (p *Processor) Commit() error {
	if p.tx == nil {
		return fmt.Errorf("processor: no transaction open")
	}
	err := p.tx.Commit()
	p.tx = nil
	return err
}

// Rollback rolls back the active transaction.
func (p *Processor) Rollback() error {
	if p.tx == nil {
		return fmt.Errorf("processor: no transaction open")
	}
	err := p.tx.Rollback()
	p.tx = nil
	return err
}

// Executor returns the Executor the active transaction presents to jobs.
func (p *Processor) Executor() Executor {
	if p.tx == nil {
		return p.db
	}
	return p.tx
}

// Execute submits a SQL script as one or more statements inside the active
// transaction. For the SqlServer dialect, text is split on GO batch
// separator lines first, since the driver does not understand them; other
// dialects accept multi-statement text directly.
func (p *Processor) Execute(ctx context.Context, scriptText string) error {
	exec := p.Executor()
	for _, stmt := range p.splitBatches(scriptText) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := exec.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteNative invokes a native migration's apply routine bound to the
// active connection/transaction.
func (p *Processor) ExecuteNative(ctx context.Context, apply func(ctx context.Context, exec Executor) error) error {
	return apply(ctx, p.Executor())
}

func (p *Processor) splitBatches(scriptText string) []string {
	if !p.dialect.SplitsBatches() {
		return []string{scriptText}
	}
	return goBatchSeparator.Split(scriptText, -1)
}
