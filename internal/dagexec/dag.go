package dagexec

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/daft-dev/daft/internal/condition"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/hookconfig"
	"github.com/daft-dev/daft/internal/progress"
	"github.com/daft-dev/daft/internal/template"
)

// node is one job's scheduling bookkeeping within a DAG run.
type node struct {
	job hookconfig.JobDef
	index int // definition order, used as the heap tie-break
	inDegree int
	dependents []int // indices of jobs that list this job's name in `needs`
	state JobState
	failedNeed string
}

// readyHeap is a min-heap ordered by ascending priority, then by
// definition order — lowest priority number (and earliest definition)
// comes out first.
type readyHeap struct {
	nodes []*node
	idx []int
}

func (h readyHeap) Len() int { return len(h.idx) }
func (h readyHeap) Less(i, j int) bool {
	a, b := h.nodes[h.idx[i]], h.nodes[h.idx[j]]
	if a.job.Priority != b.job.Priority {
		return a.job.Priority < b.job.Priority
	}
	return a.index < b.index
}
func (h readyHeap) Swap(i, j int) { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }
func (h *readyHeap) Push(x any) { h.idx = append(h.idx, x.(int)) }
func (h *readyHeap) Pop() any {
	old := h.idx
	n := len(old)
	x := old[n-1]
	h.idx = old[:n-1]
	return x
}

// buildGraph wires name→index, in-degrees, and the dependents list,
// then verifies the result is acyclic. hookconfig.Validate already
// rejects a `needs` cycle before a config is accepted, but buildGraph
// checks again here rather than trust that every caller validated
// first — a silent cycle would otherwise leave the affected jobs
// Pending forever with runDAG still returning a nil error.
func buildGraph(jobs []hookconfig.JobDef) ([]*node, error) {
	byName := make(map[string]int, len(jobs))
	for i, j := range jobs {
		if j.Name != "" {
			byName[j.Name] = i
		}
	}

	nodes := make([]*node, len(jobs))
	for i, j := range jobs {
		nodes[i] = &node{job: j, index: i}
	}
	for i, j := range jobs {
		for _, need := range j.Needs {
			depIdx, ok := byName[need]
			if !ok {
				return nil, fmt.Errorf("job %q needs unknown job %q", j.Name, need)
			}
			nodes[i].inDegree++
			nodes[depIdx].dependents = append(nodes[depIdx].dependents, i)
		}
	}

	if cyclic := unresolvedAfterTopologicalPass(nodes); len(cyclic) > 0 {
		return nil, fmt.Errorf("dagexec: needs cycle among jobs %v", cyclic)
	}
	return nodes, nil
}

// unresolvedAfterTopologicalPass simulates Kahn's algorithm without
// running any job: it returns the names of every node still holding a
// positive in-degree once no more zero-in-degree nodes remain to
// process, i.e. the jobs a cycle (or a chain hanging off one) leaves
// unreachable. An empty result means the graph is acyclic.
func unresolvedAfterTopologicalPass(nodes []*node) []string {
	inDegree := make([]int, len(nodes))
	for i, n := range nodes {
		inDegree[i] = n.inDegree
	}

	queue := make([]int, 0, len(nodes))
	for i, d := range inDegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	visited := 0
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range nodes[i].dependents {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if visited == len(nodes) {
		return nil
	}

	var cyclic []string
	for i, d := range inDegree {
		if d > 0 {
			name := nodes[i].job.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			cyclic = append(cyclic, name)
		}
	}
	return cyclic
}

// runDAG schedules jobs whose dependency graph has at least one
// `needs` edge, using Kahn's algorithm with a priority-ordered ready
// queue and a bounded worker pool.
//
// A plain semaphore-gated goroutine per dispatched job — rather than
// an errgroup — is deliberate: a job's completion handler dispatches
// its newly-ready dependents, and if that dispatch itself had to wait
// for a pool slot while still occupying one, every worker could end
// up blocked waiting for a slot no one will ever release. The
// dispatch loop here stays on one goroutine; only the job's own
// `sh -c` invocation is gated by the semaphore.
func (e *Executor) runDAG(ctx context.Context, jobs []hookconfig.JobDef, vars template.Vars, condCtx condition.Context, hctx daftmodel.HookContext, sink progress.Sink) ([]JobReport, error) {
	nodes, err := buildGraph(jobs)
	if err != nil {
		return nil, err
	}

	h := &readyHeap{nodes: nodes}
	heap.Init(h)
	for i, n := range nodes {
		if n.inDegree == 0 {
			heap.Push(h, i)
		}
	}

	sem := make(chan struct{}, e.workerCount())
	done := make(chan int)

	launch := func(idx int) {
		nodes[idx].state = Running
		go func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			state, _ := e.runOneJob(ctx, nodes[idx].job, vars, condCtx, hctx, sink)
			nodes[idx].state = state
			done <- idx
		}()
	}

	launched := 0
	for h.Len() > 0 {
		launch(heap.Pop(h).(int))
		launched++
	}

	for completed := 0; completed < launched; completed++ {
		idx := <-done
		if nodes[idx].state == Failed {
			cascadeDepFailed(nodes, idx)
		} else {
			for _, depIdx := range nodes[idx].dependents {
				nodes[depIdx].inDegree--
				if nodes[depIdx].inDegree == 0 && nodes[depIdx].state == Pending {
					heap.Push(h, depIdx)
				}
			}
		}
		for h.Len() > 0 {
			launch(heap.Pop(h).(int))
			launched++
		}
	}

	reports := make([]JobReport, len(nodes))
	for i, n := range nodes {
		reports[i] = JobReport{Name: n.job.Name, State: n.state, FailedNeed: n.failedNeed}
	}
	return reports, nil
}

// cascadeDepFailed transitively marks every downstream dependent of a
// failed job as DepFailed, recording which upstream job caused it.
func cascadeDepFailed(nodes []*node, failedIdx int) {
	queue := append([]int{}, nodes[failedIdx].dependents...)
	failedName := nodes[failedIdx].job.Name
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if nodes[i].state != Pending && nodes[i].state != Running {
			continue
		}
		nodes[i].state = DepFailed
		nodes[i].failedNeed = failedName
		queue = append(queue, nodes[i].dependents...)
	}
}
