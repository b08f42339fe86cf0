package provisioning

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidGraph is wrapped by every step graph validation failure.
var ErrInvalidGraph = errors.New("invalid step graph")

// Pipeline is a validated step graph with its execution order.
type Pipeline struct {
	steps []Step
	order []Step
}

// NewPipeline validates the graph formed by steps and fixes the order they
// will run in. Steps run after all their dependencies; among steps that are
// ready at the same time, the one declared first runs first.
func NewPipeline(steps ...Step) (*Pipeline, error) {
	index := make(map[string]int, len(steps))
	for i, s := range steps {
		if s.Name() == "" {
			return nil, fmt.Errorf("%w: step %d has no name", ErrInvalidGraph, i)
		}
		if _, dup := index[s.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate step %q", ErrInvalidGraph, s.Name())
		}
		index[s.Name()] = i
	}

	indegree := make([]int, len(steps))
	dependents := make([][]int, len(steps))
	for i, s := range steps {
		seen := make(map[string]bool)
		for _, dep := range s.DependsOn() {
			j, ok := index[dep]
			if !ok {
				return nil, fmt.Errorf("%w: step %q depends on unknown step %q", ErrInvalidGraph, s.Name(), dep)
			}
			if seen[dep] {
				continue
			}
			seen[dep] = true
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	order := make([]Step, 0, len(steps))
	done := make([]bool, len(steps))
	for len(order) < len(steps) {
		next := -1
		for i := range steps {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i, s := range steps {
				if !done[i] {
					stuck = append(stuck, s.Name())
				}
			}
			return nil, fmt.Errorf("%w: dependency cycle among %s", ErrInvalidGraph, strings.Join(stuck, ", "))
		}
		done[next] = true
		order = append(order, steps[next])
		for _, d := range dependents[next] {
			indegree[d]--
		}
	}

	return &Pipeline{steps: steps, order: order}, nil
}

// Order returns the step names in execution order.
func (p *Pipeline) Order() []string {
	names := make([]string, len(p.order))
	for i, s := range p.order {
		names[i] = s.Name()
	}
	return names
}

// Steps returns the steps in execution order.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.order...)
}

// Run executes every step in order. It stops at the first failure, which is
// returned as "<step> step failed: <cause>"; later steps never start.
func (p *Pipeline) Run(ctx *Context) error {
	start := time.Now()
	total := len(p.order)
	ctx.Observer.Printf("Starting run %s with %d steps", ctx.RunID, total)

	for i, step := range p.order {
		if err := ctx.Err(); err != nil {
			LogStepFailed(ctx.Observer, step.Name(), err)
			ctx.Metrics.ObserveStep(step.Name(), ResultFailed, 0)
			return fmt.Errorf("%s step failed: %w", step.Name(), err)
		}

		stepStart := time.Now()
		LogStepStart(ctx.Observer, step.Name())

		if err := step.Run(ctx); err != nil {
			elapsed := time.Since(stepStart)
			LogStepFailed(ctx.Observer, step.Name(), err)
			ctx.Metrics.ObserveStep(step.Name(), ResultFailed, elapsed)
			return fmt.Errorf("%s step failed: %w", step.Name(), err)
		}

		elapsed := time.Since(stepStart)
		LogStepComplete(ctx.Observer, step.Name(), elapsed)
		ctx.Metrics.ObserveStep(step.Name(), ResultSucceeded, elapsed)
		ctx.Observer.Progress(step.Name(), i+1, total)
	}

	ctx.Observer.Printf("Run %s completed in %v", ctx.RunID, time.Since(start).Round(time.Millisecond))
	return nil
}
