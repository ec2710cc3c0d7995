package addinsync

import (
	"context"
	"time"

	"github.com/jdtower/addin-sync/internal/directory"
	"github.com/jdtower/addin-sync/internal/mailplatform"
	"github.com/jdtower/addin-sync/internal/snapshot"
	"github.com/jdtower/addin-sync/tools"
)

// Options tune one reconciliation run.
type Options struct {
	GroupPrefix  string
	GroupPattern string
	DryRun       bool
}

// Engine drives a full run: discover targets, attach the prior snapshot,
// apply the membership delta per target, rewrite the snapshot, report.
type Engine struct {
	discovery *Discovery
	operator  *Operator
	store     *snapshot.Store
	pattern   string
	dryRun    bool
	stats     *RunStats
}

func NewEngine(dir directory.Client, platform mailplatform.Client, store *snapshot.Store, opts Options, stats *RunStats) *Engine {
	return &Engine{
		discovery: NewDiscovery(dir, opts.GroupPrefix, stats),
		operator:  NewOperator(platform, opts.DryRun, stats),
		store:     store,
		pattern:   opts.GroupPattern,
		dryRun:    opts.DryRun,
		stats:     stats,
	}
}

// Run executes one reconciliation pass. Per-target and per-user failures are
// absorbed into the error tally; only faults outside those guards surface to
// the caller.
func (e *Engine) Run(ctx context.Context) error {
	start := time.Now()

	targets := e.discovery.Discover(e.pattern)

	previous := e.store.Load()
	for i := range targets {
		if members, ok := previous[targets[i].GroupName]; ok {
			targets[i].Previous = MemberSet(members)
		}
	}

	// Targets apply strictly in discovery order.
	for _, t := range targets {
		e.reconcile(ctx, t)
	}

	// A dry run applied nothing, so persisting the new membership would make
	// the next real run believe the work already happened.
	if e.dryRun {
		tools.Log.Info("Dry run, leaving snapshot untouched")
	} else if err := e.store.Save(e.snapshotEntries(targets)); err != nil {
		tools.Log.WithError(err).Error("Failed to save snapshot")
		e.stats.Errors.Add(1)
	}

	tools.LogRunSummary(
		e.stats.GroupsFound.Load(),
		e.stats.UsersToAdd.Load(),
		e.stats.UsersToRemove.Load(),
		e.stats.Installs.Load(),
		e.stats.Removes.Load(),
		e.stats.Errors.Load(),
	)
	tools.Log.Infof("Finished reconciliation in %s", time.Since(start))
	return nil
}

// reconcile applies one target's delta, additions before removals.
func (e *Engine) reconcile(ctx context.Context, target Target) {
	toAdd, toRemove := Diff(target.Current, target.Previous)
	e.stats.UsersToAdd.Add(int64(len(toAdd)))
	e.stats.UsersToRemove.Add(int64(len(toRemove)))

	if len(toAdd) == 0 && len(toRemove) == 0 {
		tools.Log.Debugf("Group %s unchanged, nothing to do", target.GroupName)
		return
	}

	tools.Log.WithFields(map[string]interface{}{
		"group":  target.GroupName,
		"addin":  target.AddInID,
		"env":    target.Environment,
		"add":    len(toAdd),
		"remove": len(toRemove),
	}).Info("Applying membership delta")

	for _, user := range toAdd {
		e.operator.Install(ctx, user, target)
	}
	for _, user := range toRemove {
		e.operator.Remove(ctx, user, target)
	}
}

// snapshotEntries renders this run's targets as the next snapshot. The file
// is replaced wholesale: groups that vanished from discovery drop out (last
// full discovery wins).
func (e *Engine) snapshotEntries(targets []Target) []snapshot.Entry {
	now := time.Now().UTC()
	entries := make([]snapshot.Entry, 0, len(targets))
	for _, t := range targets {
		entries = append(entries, snapshot.Entry{
			GroupName:   t.GroupName,
			AddInID:     t.AddInID,
			Environment: t.Environment,
			ManifestURL: t.ManifestURL,
			Members:     SortedMembers(t.Current),
			LastUpdated: now,
		})
	}
	return entries
}
