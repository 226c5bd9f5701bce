package predicate

import (
	"context"
	"fmt"
	"time"

	"triage/internal/asana"
)

// Predicate reports whether a task satisfies some condition. Evaluation may
// reach out to the API through the client; any failure doing so is returned
// so the caller can contain it at the per-task boundary.
type Predicate interface {
	Matches(ctx context.Context, task *asana.Task, client asana.Client) (bool, error)
	fmt.Stringer
}

// now is the clock used by time-sensitive predicates. Tests override it.
var now = func() time.Time { return time.Now().UTC() }

// And combines two predicates so both must match. The second predicate is
// not evaluated when the first fails.
func And(first, second Predicate) Predicate {
	return andPredicate{first, second}
}

// Or combines two predicates so either may match. The second predicate is
// not evaluated when the first succeeds.
func Or(first, second Predicate) Predicate {
	return orPredicate{first, second}
}

// Not negates a predicate.
func Not(inner Predicate) Predicate {
	return notPredicate{inner}
}

type andPredicate struct {
	first  Predicate
	second Predicate
}

func (p andPredicate) Matches(ctx context.Context, task *asana.Task, client asana.Client) (bool, error) {
	ok, err := p.first.Matches(ctx, task, client)
	if err != nil || !ok {
		return false, err
	}
	return p.second.Matches(ctx, task, client)
}

func (p andPredicate) String() string {
	return fmt.Sprintf("(%s and %s)", p.first, p.second)
}

type orPredicate struct {
	first  Predicate
	second Predicate
}

func (p orPredicate) Matches(ctx context.Context, task *asana.Task, client asana.Client) (bool, error) {
	ok, err := p.first.Matches(ctx, task, client)
	if err != nil || ok {
		return ok, err
	}
	return p.second.Matches(ctx, task, client)
}

func (p orPredicate) String() string {
	return fmt.Sprintf("(%s or %s)", p.first, p.second)
}

type notPredicate struct {
	inner Predicate
}

func (p notPredicate) Matches(ctx context.Context, task *asana.Task, client asana.Client) (bool, error) {
	ok, err := p.inner.Matches(ctx, task, client)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (p notPredicate) String() string {
	return fmt.Sprintf("(not %s)", p.inner)
}

// AlwaysTrue matches every task. Useful as the entry condition of a
// workflow's first stage.
func AlwaysTrue() Predicate {
	return alwaysTrue{}
}

type alwaysTrue struct{}

func (alwaysTrue) Matches(context.Context, *asana.Task, asana.Client) (bool, error) {
	return true, nil
}

func (alwaysTrue) String() string { return "AlwaysTrue" }

func durationSuffix(d time.Duration) string {
	if d > 0 && d < 1<<62 {
		return fmt.Sprintf(" for at least %s", d)
	}
	return ""
}
