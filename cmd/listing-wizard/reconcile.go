package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/goliatone/go-wizard/reconcile"
)

type ReconcileCmd struct {
	List    ReconcileListCmd    `cmd:"" help:"List recorded partial submissions."`
	Retry   ReconcileRetryCmd   `cmd:"" help:"Resume pending stages, for the given entries or all pending ones."`
	Resolve ReconcileResolveCmd `cmd:"" help:"Mark entries as reconciled by hand."`
	Watch   ReconcileWatchCmd   `cmd:"" help:"Retry pending entries on a cron schedule until interrupted."`
}

type ReconcileListCmd struct {
	Status []string `short:"s" help:"Only show entries in these states (pending, resolved, failed)."`
}

func (c *ReconcileListCmd) Run(a *app) error {
	ledger, err := a.openLedger()
	if err != nil {
		return err
	}
	statuses := make([]reconcile.Status, 0, len(c.Status))
	for _, s := range c.Status {
		statuses = append(statuses, reconcile.Status(s))
	}
	entries := ledger.Entries(statuses...)
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "no entries")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tENTITY\tSTATUS\tPENDING\tATTEMPTS\tLAST ERROR")
	for _, e := range entries {
		last := e.LastError
		if last == "" {
			last = e.Cause
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%d\t%s\n", e.ID, e.Kind, e.EntityID, e.Status, e.Pending, e.Attempts, last)
	}
	return w.Flush()
}

type ReconcileRetryCmd struct {
	IDs []string `arg:"" optional:"" name:"id" help:"Ledger entry ids. All pending entries when omitted."`
}

func (c *ReconcileRetryCmd) Run(a *app) error {
	ledger, err := a.openLedger()
	if err != nil {
		return err
	}
	rc := a.reconciler(ledger)

	if len(c.IDs) == 0 {
		report, err := rc.Sweep(a.ctx)
		printReport(a, report)
		return err
	}

	var firstErr error
	for _, id := range c.IDs {
		entry, err := rc.Retry(a.ctx, id)
		if err != nil {
			fmt.Fprintf(a.out, "%s: %s (attempt %d, %s)\n", id, entry.LastError, entry.Attempts, entry.Status)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Fprintf(a.out, "%s: resolved %s %s\n", id, entry.Kind, entry.EntityID)
	}
	return firstErr
}

type ReconcileResolveCmd struct {
	IDs []string `arg:"" name:"id" help:"Ledger entry ids."`
}

func (c *ReconcileResolveCmd) Run(a *app) error {
	ledger, err := a.openLedger()
	if err != nil {
		return err
	}
	for _, id := range c.IDs {
		if _, err := ledger.Resolve(id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s: resolved\n", id)
	}
	return nil
}

type ReconcileWatchCmd struct {
	Schedule string `help:"Cron expression. Defaults to the configured schedule."`
}

func (c *ReconcileWatchCmd) Run(a *app) error {
	expr := c.Schedule
	if expr == "" {
		expr = a.cfg.Reconcile.Schedule
	}
	ledger, err := a.openLedger()
	if err != nil {
		return err
	}
	rc := a.reconciler(ledger)

	scheduler := reconcile.NewScheduler(
		reconcile.WithSchedulerLogger(a.logger),
		reconcile.WithLogLevel(reconcile.LogLevelInfo),
	)
	if _, err := rc.Watch(scheduler, expr); err != nil {
		return err
	}
	if err := scheduler.Start(a.ctx); err != nil {
		return err
	}
	a.logger.Info("watching %s on %q", ledger.Path(), expr)

	<-a.ctx.Done()
	return scheduler.Stop(context.WithoutCancel(a.ctx))
}

func printReport(a *app, r reconcile.Report) {
	fmt.Fprintf(a.out, "attempted %d, resolved %d, failed %d, skipped %d\n",
		r.Attempted, len(r.Resolved), len(r.Failed), len(r.Skipped))
	for _, id := range sortedKeys(r.Failed) {
		fmt.Fprintf(a.out, "  %s: %s\n", id, r.Failed[id])
	}
}
