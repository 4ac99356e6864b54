package sportsfeed

import (
	"context"
	"io"
	"sync"

	"golang.org/x/text/message"
)

// Console prints feed events as localized lines. Handlers share one writer, so lines
// from concurrent subscriptions never interleave.
type Console struct {
	mu sync.Mutex
	w  io.Writer
	p  *message.Printer
}

// NewConsole returns a console writing to w in the given locale ("en", "es", ...).
func NewConsole(w io.Writer, locale string) (*Console, error) {
	if w == nil {
		return nil, ErrNilOutput
	}
	p, err := newPrinter(locale)
	if err != nil {
		return nil, err
	}
	return &Console{w: w, p: p}, nil
}

// PrintSuccess prints the sport code and type of a successful result.
func (c *Console) PrintSuccess(ctx context.Context, e ResultSuccess) error {
	return c.println(ctx, msgSuccess, e.SportKey, e.SportType)
}

// PrintError prints the error code and type.
func (c *Console) PrintError(ctx context.Context, e ResultError) error {
	return c.println(ctx, msgError, e.ErrorKey, e.ErrorType)
}

// PrintAd reports an ad click.
func (c *Console) PrintAd(ctx context.Context, _ AdEvent) error {
	return c.println(ctx, msgAd)
}

// PrintResult prints the sport type of a legacy result.
func (c *Console) PrintResult(ctx context.Context, r Result) error {
	return c.println(ctx, msgResult, r.SportType)
}

// PrintWarning prints a warning line for legacy results flagged as warnings and
// ignores the rest.
func (c *Console) PrintWarning(ctx context.Context, r Result) error {
	if !r.IsWarning {
		return nil
	}
	return c.println(ctx, msgWarning, r.SportType)
}

// HandleResult is the legacy subscription handler: the result line, then the warning line
// when flagged.
func (c *Console) HandleResult(ctx context.Context, r Result) error {
	if err := c.PrintResult(ctx, r); err != nil {
		return err
	}
	return c.PrintWarning(ctx, r)
}

// println skips output once ctx is done, so a superseded invocation prints nothing.
func (c *Console) println(ctx context.Context, key string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.p.Fprintf(c.w, key, args...); err != nil {
		return err
	}
	_, err := io.WriteString(c.w, "\n")
	return err
}
