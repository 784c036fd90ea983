package worktreeops

import (
	"context"

	"github.com/daft-dev/daft/internal/daerr"
)

// Carry stashes uncommitted changes (including
// untracked files) in the source worktree, then apply or pop that
// stash into each target worktree. Copy mode is forced whenever more
// than one target is given, since a pop would only be meaningful for
// exactly one destination.
func (o *Ops) Carry(ctx context.Context, p CarryParams) (CarryResult, error) {
	const op = "carry"
	o.newRun(op)
	if p.Source == "" {
		return CarryResult{}, daerr.New(daerr.KindValidation, op, "no source worktree resolved")
	}
	if len(p.Targets) == 0 {
		return CarryResult{}, daerr.New(daerr.KindValidation, op, "no target worktree given")
	}

	mode := p.Mode
	if len(p.Targets) > 1 {
		mode = CarryCopy
	}

	if err := o.facade.StashPushWithUntracked(ctx, p.Source, carryStashMessage); err != nil {
		return CarryResult{}, daerr.Wrap(daerr.KindBackend, op, err, "stashing changes to carry")
	}

	result := CarryResult{CDTarget: p.Source}
	var lastApplyErr error
	for _, target := range p.Targets {
		var err error
		if mode == CarryMove {
			err = o.facade.StashPop(ctx, target)
		} else {
			err = o.facade.StashApply(ctx, target)
		}
		if err != nil {
			lastApplyErr = err
			result.Failed = append(result.Failed, target)
			o.warn("could not carry changes into %s: %v", target, err)
			continue
		}
		result.Applied = append(result.Applied, target)
		result.CDTarget = target
	}

	if lastApplyErr != nil || mode == CarryCopy {
		result.StashPreserved = true
	} else if err := o.facade.StashDrop(ctx, p.Source); err != nil {
		o.warn("could not drop the carried stash: %v", err)
		result.StashPreserved = true
	}

	return result, nil
}
