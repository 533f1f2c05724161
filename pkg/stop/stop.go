// Package stop implements a pattern for shutting down the long running parts
// of the server: the HTTP frontend, the metrics server and the state store.
package stop

import (
	"sync"
)

// Channel carries zero or more errors from a stopping component. Call Done
// exactly once.
type Channel chan []error

// Result is the receiving end of a Channel. Call Wait exactly once.
type Result <-chan []error

// Done sends errs, if any, and closes the Channel.
func (ch Channel) Done(errs ...error) {
	if len(errs) > 0 && errs[0] != nil {
		ch <- errs
	}
	close(ch)
}

// Result converts a Channel to a Result.
func (ch Channel) Result() Result {
	return Result((chan []error)(ch))
}

// Wait blocks until Done is called on the underlying Channel and returns the
// errors it received.
func (r Result) Wait() []error {
	return <-r
}

// AlreadyStopped is a closed Result, for components that have nothing left
// to stop.
var AlreadyStopped Result

func init() {
	closeMe := make(Channel)
	close(closeMe)
	AlreadyStopped = closeMe.Result()
}

// Stopper is an interface that allows a clean shutdown.
type Stopper interface {
	// Stop returns immediately and shuts down in the background.
	// The Result delivers the errors encountered, or is closed on a clean
	// shutdown.
	Stop() Result
}

// Func is a function that can be used to provide a clean shutdown.
type Func func() Result

// Group is a collection of Stoppers that can be stopped all at once.
type Group struct {
	stoppables []Func
	sync.Mutex
}

// NewGroup allocates a new Group.
func NewGroup() *Group {
	return &Group{}
}

// Add appends a Stopper to the Group.
func (g *Group) Add(toAdd Stopper) {
	g.AddFunc(toAdd.Stop)
}

// AddFunc appends a Func to the Group.
func (g *Group) AddFunc(toAdd Func) {
	g.Lock()
	defer g.Unlock()

	g.stoppables = append(g.stoppables, toAdd)
}

// Stop stops all members of the Group concurrently and collects every error
// they return.
func (g *Group) Stop() Result {
	g.Lock()
	defer g.Unlock()

	waitFor := make([]Result, 0, len(g.stoppables))
	for _, toStop := range g.stoppables {
		r := toStop()
		if r == nil {
			panic("stop: received a nil Result from Stop")
		}
		waitFor = append(waitFor, r)
	}

	whenDone := make(Channel)
	go func() {
		var errs []error
		for _, r := range waitFor {
			errs = append(errs, r.Wait()...)
		}
		whenDone.Done(errs...)
	}()

	return whenDone.Result()
}
