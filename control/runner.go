package control

import (
	"fmt"
	"log"
	"sync"
)

// Runner executes mutating commands off the calling goroutine so the invoking
// context never blocks on resolution or queue work. Each command runs on its
// own goroutine; messages it writes to its source stay in the order it wrote
// them, but nothing is ordered across commands. There is no cancellation:
// once dispatched a command runs to completion or failure.
type Runner struct {
	wg sync.WaitGroup
}

func NewRunner() *Runner {
	return &Runner{}
}

// Go dispatches a command body. Errors and panics are caught here and turned
// into a single failure message on the source; they never reach the caller.
func (r *Runner) Go(src Source, name string, fn func() error) {
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				log.Printf("[control] command %s panicked: %v", name, p)
				src.SendMessage(fmt.Sprintf("command %s failed, check the console for details", name))
			}
		}()

		if err := fn(); err != nil {
			log.Printf("[control] command %s failed: %v", name, err)
			src.SendMessage(err.Error())
		}
	}()
}

// Wait blocks until every dispatched command has finished. Used on shutdown
// and by one-shot invocations.
func (r *Runner) Wait() {
	r.wg.Wait()
}
