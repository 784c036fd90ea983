// Package worktreeops implements the worktree lifecycle operations:
// clone, init, checkout, checkout-branch, branch-delete,
// prune, rename, carry, fetch, flow-adopt, flow-eject. Every op
// accepts typed parameters and a combined progress.Sink +
// hookrunner.Runner, returns a typed result, and never prints; a
// partial failure always leaves the repository in the most salvageable
// state the operation ordering can manage.
package worktreeops

import (
	"github.com/google/uuid"

	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/gitfacade"
	"github.com/daft-dev/daft/internal/hookrunner"
	"github.com/daft-dev/daft/internal/progress"
)

// Deps bundles the collaborators every op needs. It is built once per
// process and passed to each op's constructor.
type Deps struct {
	Facade gitfacade.Facade
	Hooks hookrunner.Runner
	Sink progress.Sink
	Settings daftmodel.Settings
}

// Ops exposes one method per worktree operation, constructed from Deps.
type Ops struct {
	facade gitfacade.Facade
	hooks hookrunner.Runner
	sink progress.Sink
	settings daftmodel.Settings
}

// New builds an Ops from its dependencies.
func New(d Deps) *Ops {
	return &Ops{facade: d.Facade, hooks: d.Hooks, sink: d.Sink, settings: d.Settings}
}

func (o *Ops) step(format string, args ...interface{})  { o.sink.Step(format, args...) }
func (o *Ops) warn(format string, args ...interface{})  { o.sink.Warn(format, args...) }
func (o *Ops) debug(format string, args ...interface{}) { o.sink.Debug(format, args...) }

// newRun mints a correlation ID for one op invocation and logs it at
// debug level as "<op> run <id>". The ID is not attached to the op's
// other log lines or to its hook runs.
func (o *Ops) newRun(op string) string {
	id := uuid.NewString()
	o.debug("%s run %s", op, id)
	return id
}
